package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item map[string]any

func (i item) Value(field string) (any, bool) {
	v, ok := i[field]
	return v, ok
}

var cols = []Column{
	{Key: "name", Header: "Name", Width: 2},
	{Key: "skills", Header: "Skills"},
	{Key: "cgpa", Header: "CGPA"},
	{Key: "joined", Header: "Joined"},
}

func TestWriteCSV_QuotesSpecialCharacters(t *testing.T) {
	rows := Rows([]item{{"name": `a,"b"`}}, cols[:1])

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cols[:1], rows))
	assert.Equal(t, "Name\n\"a,\"\"b\"\"\"\n", buf.String())

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `a,"b"`, records[1][0])
}

func TestWriteCSV_RoundTripsRows(t *testing.T) {
	joined := time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)
	cgpa := 8.25
	items := []item{
		{"name": "Asha", "skills": []string{"Go", "SQL"}, "cgpa": &cgpa, "joined": joined},
		{"name": "Line\nBreak", "cgpa": (*float64)(nil)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cols, Rows(items, cols)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "Skills", "CGPA", "Joined"},
		{"Asha", "Go; SQL", "8.25", "2024-07-01"},
		{"Line\nBreak", "", "", ""},
	}, records)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "Yes", FormatValue(true))
	assert.Equal(t, "12", FormatValue(int64(12)))
	assert.Equal(t, "7", FormatValue(7))
	assert.Equal(t, "", FormatValue(time.Time{}))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Excel")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, "students.csv", f.Filename("students"))

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestWritePDF(t *testing.T) {
	rows := make([]Row, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, Row{"Student with a rather long name that will not fit", "Go", "8.1", "2024-01-01"})
	}

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, "Students", cols, rows))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteResumePDF(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResumePDF(&buf, Resume{
		Name:           "Asha Rao",
		Email:          "asha@example.edu",
		RollNumber:     "CS21001",
		Department:     "CSE",
		CGPA:           8.9,
		GraduationYear: 2025,
		Skills:         []string{"Go", "PostgreSQL"},
		Certificates:   []ResumeCertificate{{Title: "Cloud Fundamentals", Issuer: "Acme", Year: 2024, Verified: true}},
		Placement:      "Placed at Initech (12 LPA)",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
