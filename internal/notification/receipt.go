package notification

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// ReceiptData holds everything printed on the PDF receipt.
type ReceiptData struct {
	RegistrationID  string
	Name            string
	Email           string
	Mobile          string
	CompetitionName string
	City            string
	Amount          float64
	PaymentID       string
	Date            time.Time
}

// RenderReceipt renders the registration receipt as a PDF. The QR code encodes
// the registration id so the code can be scanned at check-in.
func RenderReceipt(data ReceiptData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(107, 45, 31)
	pdf.CellFormat(0, 12, "Competition Registration Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6, "Date: "+data.Date.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(107, 45, 31)
	pdf.CellFormat(0, 8, "Participant Details", "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	rows := [][2]string{
		{"Registration ID", data.RegistrationID},
		{"Name", data.Name},
		{"Email", data.Email},
		{"Mobile", data.Mobile},
		{"Competition", data.CompetitionName},
		{"City", data.City},
		{"Amount Paid", fmt.Sprintf("INR %.2f", data.Amount)},
		{"Payment ID", data.PaymentID},
	}
	for _, row := range rows {
		pdf.CellFormat(50, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	if data.RegistrationID != "" {
		png, err := qrcode.Encode(data.RegistrationID, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("encode qr: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("receipt-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("receipt-qr", 20, pdf.GetY(), 40, 40, false, opts, 0, "")
		pdf.SetY(pdf.GetY() + 44)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 5, "Present this QR code at the venue for check-in.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
