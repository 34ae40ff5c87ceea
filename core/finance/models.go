package finance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/tshiala/kampus/core"
	"github.com/tshiala/kampus/core/catalog"
	"github.com/tshiala/kampus/core/user"
)

// StandardFee is the default fee amount for a (course, semester) pair.
// At most one StandardFee exists per pair at any time.
type StandardFee struct {
	ID          int         `json:"id" db:"id"`
	CourseID    int         `json:"course_id" db:"course_id"`
	SemesterID  int         `json:"semester_id" db:"semester_id"`
	Name        string      `json:"name" db:"name"`
	Amount      float64     `json:"amount" db:"amount"`
	Description null.String `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"` // UTC

	Course   *catalog.Course   `json:"course,omitempty"`
	Semester *catalog.Semester `json:"semester,omitempty"`
}

// StudentFee is one student's fee obligation for a course+semester.
type StudentFee struct {
	ID          int         `json:"id" db:"id"`
	StudentID   int         `json:"student_id" db:"student_id"`
	CourseID    int         `json:"course_id" db:"course_id"`
	SemesterID  int         `json:"semester_id" db:"semester_id"`
	Amount      float64     `json:"amount" db:"amount"`
	Description null.String `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"` // UTC

	Student  *user.User        `json:"student,omitempty"`
	Course   *catalog.Course   `json:"course,omitempty"`
	Semester *catalog.Semester `json:"semester,omitempty"`
}

// Payment is a monetary transaction against exactly one StudentFee.
// Every Payment owns exactly one Receipt, created in the same transaction.
type Payment struct {
	ID            int         `json:"id" db:"id"`
	StudentID     int         `json:"student_id" db:"student_id"`
	StudentFeeID  int         `json:"student_fee_id" db:"student_fee_id"`
	Amount        float64     `json:"amount" db:"amount"`
	PaymentDate   time.Time   `json:"payment_date" db:"payment_date"` // UTC
	Method        string      `json:"payment_method" db:"payment_method"`
	TransactionID null.String `json:"transaction_id,omitempty" db:"transaction_id"`
	Notes         null.String `json:"notes,omitempty" db:"notes"`

	Receipt    *Receipt    `json:"receipt,omitempty"`
	StudentFee *StudentFee `json:"student_fee,omitempty"`
}

// Receipt is the immutable proof-of-payment record. ReceiptNumber is derived
// from the payment id, course code, semester name and creation time; PdfPath
// is the only field populated after creation, and only as a render cache.
type Receipt struct {
	ID            int         `json:"id" db:"id"`
	PaymentID     int         `json:"payment_id" db:"payment_id"`
	ReceiptNumber string      `json:"receipt_number" db:"receipt_number"`
	GeneratedAt   time.Time   `json:"generated_at" db:"generated_at"` // UTC
	PdfPath       null.String `json:"-" db:"pdf_path"`
}

// Summary aggregates fees and payments over two independently filtered scans.
// TotalPending is only coherent when the fee and payment filters target the
// same cohort; see Service.Summarize.
type Summary struct {
	TotalFees    float64 `json:"total_fees"`
	TotalPaid    float64 `json:"total_paid"`
	TotalPending float64 `json:"total_pending"`
	StudentCount int     `json:"student_count"`
	PaymentCount int     `json:"payment_count"`
}

// NewStandardFee contains information needed to create a new StandardFee.
type NewStandardFee struct {
	CourseID    int         `json:"course_id" validate:"required"`
	SemesterID  int         `json:"semester_id" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Amount      float64     `json:"amount" validate:"required"`
	Description null.String `json:"description"`
}

func (nf *NewStandardFee) Validate(validate *validator.Validate) error {
	nf.Name = core.CleanString(nf.Name)
	return validate.Struct(nf)
}

// UpdateStandardFee defines what may be provided to modify a StandardFee.
type UpdateStandardFee struct {
	CourseID    int         `json:"course_id" validate:"required"`
	SemesterID  int         `json:"semester_id" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Amount      float64     `json:"amount" validate:"required"`
	Description null.String `json:"description"`
}

func (uf *UpdateStandardFee) Validate(validate *validator.Validate) error {
	uf.Name = core.CleanString(uf.Name)
	return validate.Struct(uf)
}

// NewStudentFee contains information needed to create a new StudentFee.
// Amount is optional; when absent it is resolved from the matching
// StandardFee (see ResolveAmount).
type NewStudentFee struct {
	StudentID   int         `json:"student_id" validate:"required"`
	CourseID    int         `json:"course_id" validate:"required"`
	SemesterID  int         `json:"semester_id" validate:"required"`
	Amount      *float64    `json:"amount"`
	Description null.String `json:"description"`
}

func (nf *NewStudentFee) Validate(validate *validator.Validate) error {
	return validate.Struct(nf)
}

// NewPayment contains information needed to record a new Payment.
type NewPayment struct {
	StudentID     int         `json:"student_id" validate:"required"`
	StudentFeeID  int         `json:"student_fee_id" validate:"required"`
	Amount        float64     `json:"amount" validate:"required"`
	Method        string      `json:"payment_method" validate:"required"`
	TransactionID null.String `json:"transaction_id"`
	Notes         null.String `json:"notes"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Method = core.CleanString(np.Method)
	return validate.Struct(np)
}

type StandardFeeFilter struct {
	CourseID   int `query:"course_id"`
	SemesterID int `query:"semester_id"`
}

type StudentFeeFilter struct {
	StudentID  int `query:"student_id"`
	SemesterID int `query:"semester_id"`
}

type PaymentFilter struct {
	StudentID    int       `query:"student_id"`
	StudentFeeID int       `query:"student_fee_id"`
	StartDate    time.Time `query:"start_date"`
	EndDate      time.Time `query:"end_date"`
}

// SummaryFilter feeds both summary scans: StudentID applies to both,
// SemesterID only to fees, the date range only to payments.
type SummaryFilter struct {
	StudentID  int       `query:"student_id"`
	SemesterID int       `query:"semester_id"`
	StartDate  time.Time `query:"start_date"`
	EndDate    time.Time `query:"end_date"`
}
