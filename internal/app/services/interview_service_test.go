package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/notify"
)

func newInterviewService(f *fixture, capacity int) *interviewService {
	svc := NewInterviewService(f.interviews, f.applications, f.jobs, f.students, f.authz, f.notifier, f.email,
		InterviewConfig{DailyCapacity: capacity}, f.logger).(*interviewService)
	svc.now = f.clock()
	return svc
}

func TestSchedule_EnforcesDailyCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	company, recruiter := f.addCompany(20, "Initech")
	job := f.addJob(company.ID, "Backend Engineer", 0)
	svc := newInterviewService(f, 2)

	day := f.now.Add(48 * time.Hour)
	var apps []*models.Application
	for i, name := range []string{"Asha", "Bob", "Chen"} {
		s, _ := f.addStudent(int64(10+i), name, "CSE", 8)
		apps = append(apps, f.addApplication(s.ID, job.ID, models.ApplicationShortlisted))
	}

	for i, app := range apps[:2] {
		iv, err := svc.Schedule(ctx, recruiter, &dto.ScheduleInterviewRequest{
			ApplicationID: app.ID,
			ScheduledAt:   day.Add(time.Duration(i) * time.Hour),
			Mode:          "online",
		})
		require.NoError(t, err)
		assert.Equal(t, 45, iv.DurationMinutes, "default duration")
		assert.Equal(t, models.InterviewScheduled, iv.Status)
	}

	_, err := svc.Schedule(ctx, recruiter, &dto.ScheduleInterviewRequest{ApplicationID: apps[2].ID, ScheduledAt: day.Add(3 * time.Hour), Mode: "online"})
	assert.ErrorIs(t, err, apperrors.ErrSlotFull)

	next, err := svc.Schedule(ctx, recruiter, &dto.ScheduleInterviewRequest{ApplicationID: apps[2].ID, ScheduledAt: day.Add(24 * time.Hour), Mode: "phone"})
	require.NoError(t, err)

	avail, err := svc.Availability(ctx, recruiter, job.ID, day)
	require.NoError(t, err)
	assert.Equal(t, 2, avail.Booked)
	assert.Zero(t, avail.Remaining)

	// Moving into the full day is refused, cancelling frees a slot.
	_, err = svc.Update(ctx, recruiter, next.ID, &dto.UpdateInterviewRequest{ScheduledAt: ptr(day.Add(5 * time.Hour))})
	assert.ErrorIs(t, err, apperrors.ErrSlotFull)

	first, _ := f.interviews.List(ctx, repositories.InterviewFilter{JobID: &job.ID})
	_, err = svc.Update(ctx, recruiter, first[0].ID, &dto.UpdateInterviewRequest{Status: ptr("cancelled")})
	require.NoError(t, err)

	moved, err := svc.Update(ctx, recruiter, next.ID, &dto.UpdateInterviewRequest{ScheduledAt: ptr(day.Add(5 * time.Hour))})
	require.NoError(t, err)
	assert.True(t, moved.ScheduledAt.Equal(day.Add(5*time.Hour)))

	var titles []string
	for _, n := range f.notifier.all() {
		assert.Equal(t, notify.TypeInterview, n.Type)
		titles = append(titles, n.Title)
	}
	assert.Contains(t, titles, "Interview cancelled")
	assert.Contains(t, titles, "Interview rescheduled")
}

func TestSchedule_Rules(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	company, recruiter := f.addCompany(20, "Initech")
	_, other := f.addCompany(21, "Globex")
	job := f.addJob(company.ID, "Backend Engineer", 0)
	student, studentActor := f.addStudent(10, "Asha", "CSE", 8)
	applied := f.addApplication(student.ID, job.ID, models.ApplicationApplied)
	svc := newInterviewService(f, 8)
	later := f.now.Add(24 * time.Hour)

	_, err := svc.Schedule(ctx, studentActor, &dto.ScheduleInterviewRequest{ApplicationID: applied.ID, ScheduledAt: later, Mode: "online"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.Schedule(ctx, recruiter, &dto.ScheduleInterviewRequest{ApplicationID: applied.ID, ScheduledAt: later, Mode: "online"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)

	f.db.apps[applied.ID].Status = models.ApplicationShortlisted
	_, err = svc.Schedule(ctx, other, &dto.ScheduleInterviewRequest{ApplicationID: applied.ID, ScheduledAt: later, Mode: "online"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.Schedule(ctx, recruiter, &dto.ScheduleInterviewRequest{ApplicationID: applied.ID, ScheduledAt: f.now.Add(-time.Hour), Mode: "online"})
	assert.ErrorIs(t, err, apperrors.ErrInterviewInPast)

	iv, err := svc.Schedule(ctx, recruiter, &dto.ScheduleInterviewRequest{ApplicationID: applied.ID, ScheduledAt: later, Mode: "onsite", Location: " Block A "})
	require.NoError(t, err)
	assert.Equal(t, "Block A", *iv.Location)
	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "interview", f.email.sent[0].Kind)

	page, err := svc.List(ctx, studentActor, searchAll())
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	page, err = svc.List(ctx, other, searchAll())
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

// bookingInterviewRepo books a competing interview right after each read.
type bookingInterviewRepo struct {
	fakeInterviewRepo
	book func()
}

func (r bookingInterviewRepo) GetByID(ctx context.Context, id int64) (*models.Interview, error) {
	iv, err := r.fakeInterviewRepo.GetByID(ctx, id)
	if err == nil {
		r.book()
	}
	return iv, err
}

func TestUpdate_RescheduleRechecksCapacityAtWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	company, recruiter := f.addCompany(20, "Initech")
	job := f.addJob(company.ID, "Backend Engineer", 0)
	a, _ := f.addStudent(10, "Asha", "CSE", 8)
	b, _ := f.addStudent(11, "Bob", "CSE", 8)
	appA := f.addApplication(a.ID, job.ID, models.ApplicationShortlisted)
	appB := f.addApplication(b.ID, job.ID, models.ApplicationShortlisted)

	day := f.now.Add(48 * time.Hour)
	target := day.Add(24 * time.Hour)
	iv, err := newInterviewService(f, 1).Schedule(ctx, recruiter,
		&dto.ScheduleInterviewRequest{ApplicationID: appA.ID, ScheduledAt: day, Mode: "online"})
	require.NoError(t, err)

	repo := bookingInterviewRepo{fakeInterviewRepo: f.interviews, book: func() {
		competing := &models.Interview{ApplicationID: appB.ID, JobID: job.ID, ScheduledAt: target, Mode: models.InterviewOnline}
		require.NoError(t, f.interviews.Create(ctx, competing, 1))
	}}
	svc := NewInterviewService(repo, f.applications, f.jobs, f.students, f.authz, f.notifier, f.email,
		InterviewConfig{DailyCapacity: 1}, f.logger).(*interviewService)
	svc.now = f.clock()

	_, err = svc.Update(ctx, recruiter, iv.ID, &dto.UpdateInterviewRequest{ScheduledAt: ptr(target.Add(time.Hour))})
	assert.ErrorIs(t, err, apperrors.ErrSlotFull)

	stored, err := f.interviews.GetByID(ctx, iv.ID)
	require.NoError(t, err)
	assert.True(t, stored.ScheduledAt.Equal(day), "interview keeps its original slot")

	// A move within the same day does not need a free slot.
	svc.interviewRepo = f.interviews
	moved, err := svc.Update(ctx, recruiter, iv.ID, &dto.UpdateInterviewRequest{ScheduledAt: ptr(day.Add(time.Hour))})
	require.NoError(t, err)
	assert.True(t, moved.ScheduledAt.Equal(day.Add(time.Hour)))
}
