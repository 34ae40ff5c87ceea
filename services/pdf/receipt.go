package pdfsvc

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/tshiala/kampus/core/finance"
)

const (
	labelColWidth = 50
	valueColWidth = 110
	rowHeight     = 9
)

// ReceiptRenderer produces the fixed-layout fee receipt document.
// The layout depends only on the input data, so equal data renders
// identical output.
type ReceiptRenderer struct{}

var _ finance.Renderer = (*ReceiptRenderer)(nil)

func NewReceiptRenderer() *ReceiptRenderer { return &ReceiptRenderer{} }

func (r *ReceiptRenderer) Render(data finance.ReceiptData) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	// pin the metadata dates so equal data yields identical bytes
	pdf.SetCreationDate(data.Receipt.GeneratedAt)
	pdf.SetModificationDate(data.Receipt.GeneratedAt)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "UNIVERSITY FEE RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Receipt Number: "+data.Receipt.ReceiptNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Date: "+data.Payment.PaymentDate.Format("02-01-2006 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	r.section(pdf, "Student Information", [][2]string{
		{"Name:", data.Student.FullName},
		{"Email:", data.Student.Email},
		{"Student ID:", strconv.Itoa(data.Student.ID)},
	})

	r.section(pdf, "Payment Information", [][2]string{
		{"Payment ID:", strconv.Itoa(data.Payment.ID)},
		{"Payment Method:", data.Payment.Method},
		{"Transaction ID:", data.TransactionID()},
		{"Semester:", data.SemesterName},
		{"Fee Description:", data.FeeDescription()},
		{"Amount Paid:", fmt.Sprintf("$%.2f", data.Payment.Amount)},
	})

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Thank you for your payment.", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "This is a computer-generated receipt and does not require a signature.", "", 1, "L", false, 0, "")

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buf, nil
}

func (r *ReceiptRenderer) section(pdf *gofpdf.Fpdf, title string, rows [][2]string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.SetFillColor(211, 211, 211)
		pdf.CellFormat(labelColWidth, rowHeight, row[0], "1", 0, "L", true, 0, "")
		pdf.CellFormat(valueColWidth, rowHeight, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}
