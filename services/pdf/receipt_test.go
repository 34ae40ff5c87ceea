package pdfsvc

import (
	"bytes"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tshiala/kampus/core/finance"
	"github.com/tshiala/kampus/core/user"
)

func testReceiptData() finance.ReceiptData {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return finance.ReceiptData{
		Receipt: finance.Receipt{
			ID:            1,
			PaymentID:     42,
			ReceiptNumber: finance.BuildReceiptNumber(42, "cs101", "Fall 2025", at),
			GeneratedAt:   at,
		},
		Payment: finance.Payment{
			ID:            42,
			StudentID:     7,
			StudentFeeID:  3,
			Amount:        499.99,
			PaymentDate:   at,
			Method:        "bank_transfer",
			TransactionID: null.StringFrom("TXN-001"),
		},
		Student: user.User{
			ID:       7,
			Email:    "ada@test.cd",
			FullName: "Ada L",
		},
		StudentFee: finance.StudentFee{
			ID:         3,
			StudentID:  7,
			Amount:     1500,
			CourseID:   1,
			SemesterID: 2,
		},
		SemesterName: "Fall 2025",
	}
}

func TestReceiptRenderer_Render(t *testing.T) {
	renderer := NewReceiptRenderer()

	doc, err := renderer.Render(testReceiptData())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(doc.Bytes(), []byte("%PDF")) {
		t.Errorf("Render() output is not a PDF document")
	}
	if doc.Len() < 1024 {
		t.Errorf("Render() output suspiciously small: %d bytes", doc.Len())
	}
}

func TestReceiptRenderer_Render_deterministic(t *testing.T) {
	renderer := NewReceiptRenderer()

	doc1, err := renderer.Render(testReceiptData())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	doc2, err := renderer.Render(testReceiptData())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.Equal(doc1.Bytes(), doc2.Bytes()) {
		t.Errorf("Render() produced different bytes for equal data")
	}
}
