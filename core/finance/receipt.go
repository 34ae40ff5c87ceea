package finance

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/tshiala/kampus/core/user"
)

const receiptNumberPrefix = "RCPT"

// BuildReceiptNumber derives the human-readable receipt number from the
// payment id, the course code (upper-cased), the semester name (whitespace
// stripped, upper-cased) and the creation time truncated to the second.
func BuildReceiptNumber(paymentID int, courseCode, semesterName string, at time.Time) string {
	code := strings.ToUpper(courseCode)
	sem := strings.ToUpper(strings.Join(strings.Fields(semesterName), ""))
	return fmt.Sprintf("%s-%d-%s-%s-%s", receiptNumberPrefix, paymentID, code, sem, at.Format("20060102150405"))
}

// ReceiptData is everything the renderer needs to produce a receipt
// document. Given equal data the rendered content is identical.
type ReceiptData struct {
	Receipt      Receipt
	Payment      Payment
	Student      user.User
	StudentFee   StudentFee
	SemesterName string
}

// FeeDescription returns the fee description to print, defaulting to
// "Tuition Fee" when the student fee carries none.
func (d ReceiptData) FeeDescription() string {
	if d.StudentFee.Description.Valid && d.StudentFee.Description.String != "" {
		return d.StudentFee.Description.String
	}
	return "Tuition Fee"
}

// TransactionID returns the external transaction identifier or "N/A".
func (d ReceiptData) TransactionID() string {
	if d.Payment.TransactionID.Valid && d.Payment.TransactionID.String != "" {
		return d.Payment.TransactionID.String
	}
	return "N/A"
}

// Filename returns the download filename for the rendered document.
func (d ReceiptData) Filename() string {
	return fmt.Sprintf("receipt-%s.pdf", d.Receipt.ReceiptNumber)
}

// Renderer turns receipt data into a fixed-layout document.
type Renderer interface {
	Render(data ReceiptData) (*bytes.Buffer, error)
}
