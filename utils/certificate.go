package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"eduflow/config"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// CertificateSerial builds the human-readable certificate identifier from the
// enrollment id and the issue date. Deterministic, so a lost file can always
// be regenerated with the same serial.
func CertificateSerial(enrollmentID uint, issueDate string) string {
	return fmt.Sprintf("EDU-%06d-%s", enrollmentID, issueDate)
}

// CertificatePath is where the rendered PDF for a serial lives on disk.
func CertificatePath(serialNumber string) string {
	return filepath.Join(config.AppConfig.CertificateDir, serialNumber+".pdf")
}

// RenderCertificatePDF draws the certificate and writes it next to the other
// issued PDFs. The QR code encodes the public verification URL for the serial.
func RenderCertificatePDF(serialNumber, studentName, courseTitle, issuedOn string) (string, error) {
	if err := os.MkdirAll(config.AppConfig.CertificateDir, 0755); err != nil {
		return "", err
	}

	verifyURL := fmt.Sprintf("%s/certificate/verify/%s", config.AppConfig.FrontendURL, serialNumber)

	qrPNG, err := qrcode.Encode(verifyURL, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate of Completion", false)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	// Border
	pdf.SetLineWidth(1.2)
	pdf.SetDrawColor(26, 35, 126)
	pdf.Rect(8, 8, pageW-16, pageH-16, "D")

	pdf.SetFont("Helvetica", "B", 34)
	pdf.SetTextColor(26, 35, 126)
	pdf.SetY(32)
	pdf.CellFormat(0, 16, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(80, 80, 80)
	pdf.Ln(8)
	pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(34, 188, 102)
	pdf.Ln(4)
	pdf.CellFormat(0, 12, studentName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(80, 80, 80)
	pdf.Ln(4)
	pdf.CellFormat(0, 8, "has successfully completed the course", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(26, 35, 126)
	pdf.Ln(4)
	pdf.CellFormat(0, 10, courseTitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(80, 80, 80)
	pdf.Ln(8)
	pdf.CellFormat(0, 8, fmt.Sprintf("Issued on %s", issuedOn), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Certificate ID: %s", serialNumber), "", 1, "C", false, 0, "")

	// Verification QR in the bottom-right corner
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("verify-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("verify-qr", pageW-48, pageH-48, 32, 32, false, opts, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(pageW-52, pageH-15)
	pdf.CellFormat(40, 4, "Scan to verify", "", 0, "C", false, 0, "")

	path := CertificatePath(serialNumber)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}
