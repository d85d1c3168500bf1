package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/export"
	"github.com/yigit/placementhub/internal/pkg/search"
)

func newExportService(f *fixture) *exportService {
	svc := NewExportService(f.students, f.companies, f.applications, f.certs, f.authz, f.logger).(*exportService)
	svc.now = f.clock()
	return svc
}

func TestExportStudents_FiltersWithoutPaging(t *testing.T) {
	f := newFixture()
	f.addStudent(10, "Alice", "CS", 8.2)
	f.addStudent(11, "Bob", "EE", 6.1)
	for i := 0; i < 12; i++ {
		f.addStudent(int64(100+i), "Student"+string(rune('A'+i)), "CS", 7)
	}

	art, err := newExportService(f).Students(context.Background(), export.FormatCSV, search.Options{
		Criteria: search.Criteria{Equals: map[string]string{"department": "cs"}},
		SortBy:   "cgpa",
		Page:     1,
		Size:     5,
	})
	require.NoError(t, err)
	assert.Equal(t, "students-20250310.csv", art.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", art.ContentType)

	records, err := csv.NewReader(bytes.NewReader(art.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 14, "header plus every CS student")
	assert.Equal(t, "Roll No.", records[0][0])
	for _, r := range records[1:] {
		assert.Equal(t, "CS", r[3])
		assert.NotEqual(t, "Bob", r[1])
	}
}

func TestExportApplications_ScopedPDF(t *testing.T) {
	f := newFixture()
	company, recruiter := f.addCompany(20, "Initech")
	job := f.addJob(company.ID, "Backend Engineer", 0)
	student, _ := f.addStudent(10, "Asha", "CSE", 8.2)
	f.addApplication(student.ID, job.ID, models.ApplicationApplied)

	art, err := newExportService(f).Applications(context.Background(), recruiter, export.FormatPDF, searchAll())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", art.ContentType)
	assert.True(t, bytes.HasPrefix(art.Body, []byte("%PDF-")))
}

func TestExportResume(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	student, owner := f.addStudent(10, "Asha", "CSE", 8.2)
	_, other := f.addStudent(11, "Bob", "EE", 7)
	_, recruiter := f.addCompany(20, "Initech")
	require.NoError(t, f.certs.Create(ctx, &models.Certificate{StudentID: student.ID, Title: "Cloud", Issuer: "Acme", IssueDate: time.Now()}))
	svc := newExportService(f)

	art, err := svc.Resume(ctx, owner, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "cseasha-resume.pdf", art.Filename)
	assert.True(t, bytes.HasPrefix(art.Body, []byte("%PDF-")))

	_, err = svc.Resume(ctx, other, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = svc.Resume(ctx, recruiter, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = svc.Resume(ctx, adminActor, 999)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}
