package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Resume is the content of a generated student resume.
type Resume struct {
	Name           string
	Email          string
	Phone          string
	RollNumber     string
	Department     string
	CGPA           float64
	GraduationYear int
	Skills         []string
	Certificates   []ResumeCertificate
	Placement      string
}

// ResumeCertificate is one line of the certifications section.
type ResumeCertificate struct {
	Title    string
	Issuer   string
	Year     int
	Verified bool
}

// WriteResumePDF renders a one-page resume.
func WriteResumePDF(w io.Writer, r Resume) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.Name+" - Resume", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 20)
	pdf.CellFormat(0, 12, tr(r.Name), "", 1, "L", false, 0, "")

	contact := []string{r.Email}
	if r.Phone != "" {
		contact = append(contact, r.Phone)
	}
	pdf.SetFont(pdfFont, "", 10)
	pdf.CellFormat(0, 6, tr(strings.Join(contact, " | ")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(name string) {
		pdf.SetFont(pdfFont, "B", 12)
		pdf.CellFormat(0, 8, name, "B", 1, "L", false, 0, "")
		pdf.Ln(1)
		pdf.SetFont(pdfFont, "", 10)
	}

	section("Education")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s | Roll No. %s", r.Department, r.RollNumber)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("CGPA %.2f | Class of %d", r.CGPA, r.GraduationYear), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if len(r.Skills) > 0 {
		section("Skills")
		pdf.MultiCell(0, 6, tr(strings.Join(r.Skills, ", ")), "", "L", false)
		pdf.Ln(3)
	}

	if len(r.Certificates) > 0 {
		section("Certifications")
		for _, c := range r.Certificates {
			line := fmt.Sprintf("%s - %s (%d)", c.Title, c.Issuer, c.Year)
			if c.Verified {
				line += " [verified]"
			}
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	if r.Placement != "" {
		section("Placement")
		pdf.CellFormat(0, 6, tr(r.Placement), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render resume: %w", err)
	}
	return pdf.Output(w)
}
