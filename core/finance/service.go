package finance

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/tshiala/kampus/core"
	"github.com/tshiala/kampus/core/catalog"
	"github.com/tshiala/kampus/core/user"
)

var (
	ErrStandardFeeNotFound = core.NewNotFoundError("standard fee not found")
	ErrStudentFeeNotFound  = core.NewNotFoundError("student fee not found")
	ErrPaymentNotFound     = core.NewNotFoundError("payment not found")
	ErrReceiptNotFound     = core.NewNotFoundError("receipt not found")
	ErrStudentNotFound     = core.NewNotFoundError("student not found")

	ErrStandardFeeExists   = core.NewConflictError("a standard fee already exists for this course-semester combination")
	ErrTransactionIDExists = core.NewConflictError("a payment with this transaction id already exists")

	ErrSemesterCourseMismatch = core.NewValidationError(nil,
		core.FieldError{Field: "semester_id", Error: "the semester does not belong to the specified course"})
	ErrStudentNotEnrolled = core.NewValidationError(nil,
		core.FieldError{Field: "student_id", Error: "the student is not enrolled in this course"})
	ErrNoAmountNoStandardFee = core.NewValidationError(nil,
		core.FieldError{Field: "amount", Error: "no amount provided and no standard fee found for this course-semester combination"})

	ErrReceiptAccessDenied = core.NewForbiddenError("not enough permissions to access this receipt")
)

type (
	Repository interface {
		// CheckStandardFeeUniqueness returns ErrStandardFeeExists when a
		// standard fee other than excludedIDs exists for (courseID, semesterID).
		// The backing store must also carry a unique constraint on the pair;
		// this pre-check alone does not close the race.
		CheckStandardFeeUniqueness(ctx context.Context, courseID, semesterID int, excludedIDs ...int) error
		CreateStandardFee(ctx context.Context, fee StandardFee) (StandardFee, error)
		GetStandardFeeByID(ctx context.Context, id int) (StandardFee, error)
		// GetStandardFeeForPair returns ErrStandardFeeNotFound when the pair
		// has no standard fee.
		GetStandardFeeForPair(ctx context.Context, courseID, semesterID int) (StandardFee, error)
		QueryStandardFees(ctx context.Context, filter *StandardFeeFilter) ([]StandardFee, error)
		UpdateStandardFee(ctx context.Context, fee StandardFee) (StandardFee, error)
		DeleteStandardFee(ctx context.Context, id int) error

		CreateStudentFee(ctx context.Context, fee StudentFee) (StudentFee, error)
		GetStudentFeeByID(ctx context.Context, id int) (StudentFee, error)
		QueryStudentFees(ctx context.Context, filter *StudentFeeFilter) ([]StudentFee, error)

		// CreatePayment inserts the payment and its receipt in one store
		// transaction; the receipt number is derived with BuildReceiptNumber
		// from the generated payment id. Neither row is visible without the
		// other.
		CreatePayment(ctx context.Context, pmt Payment, courseCode, semesterName string) (Payment, error)
		GetPaymentByID(ctx context.Context, id int) (Payment, error)
		// QueryPayments returns payments with their receipts, newest first.
		QueryPayments(ctx context.Context, filter *PaymentFilter) ([]Payment, error)

		GetReceiptByID(ctx context.Context, id int) (Receipt, error)
		QueryReceiptIDsByStudent(ctx context.Context, studentID int) ([]int, error)

		// SummarizeStudentFees returns the filtered fee total and the count
		// of distinct students among the filtered fees.
		SummarizeStudentFees(ctx context.Context, filter *StudentFeeFilter) (total float64, studentCount int, err error)
		// SummarizePayments returns the filtered payment total and count.
		SummarizePayments(ctx context.Context, filter *PaymentFilter) (total float64, paymentCount int, err error)
	}

	ServiceInterface interface {
		CreateStandardFee(ctx context.Context, nf NewStandardFee) (StandardFee, error)
		QueryStandardFees(ctx context.Context, filter *StandardFeeFilter) ([]StandardFee, error)
		UpdateStandardFee(ctx context.Context, id int, uf UpdateStandardFee) (StandardFee, error)
		DeleteStandardFee(ctx context.Context, id int) error
		CreateStudentFee(ctx context.Context, nf NewStudentFee) (StudentFee, error)
		QueryStudentFees(ctx context.Context, filter *StudentFeeFilter) ([]StudentFee, error)
		CreatePayment(ctx context.Context, np NewPayment) (Payment, error)
		QueryPayments(ctx context.Context, filter *PaymentFilter) ([]Payment, error)
		RenderReceipt(ctx context.Context, receiptID int, caller user.User) (ReceiptData, []byte, error)
		StudentReceiptIDs(ctx context.Context, studentID int, caller user.User) ([]int, error)
		Summarize(ctx context.Context, filter *SummaryFilter) (Summary, error)
	}

	Service struct {
		conf     *core.Config
		repo     Repository
		catSvc   catalog.ServiceInterface
		usrSvc   user.ServiceInterface
		renderer Renderer
		mail     core.EmailService
		log      core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	conf *core.Config,
	repo Repository,
	catSvc catalog.ServiceInterface,
	usrSvc user.ServiceInterface,
	renderer Renderer,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		conf:     conf,
		repo:     repo,
		catSvc:   catSvc,
		usrSvc:   usrSvc,
		renderer: renderer,
		mail:     mailSvc,
		log:      logger,
	}
}

// checkPair verifies that both course and semester exist and that the
// semester belongs to the course.
func (svc *Service) checkPair(ctx context.Context, courseID, semesterID int) (catalog.Course, catalog.Semester, error) {
	crs, err := svc.catSvc.GetCourseByID(ctx, courseID)
	if err != nil {
		return catalog.Course{}, catalog.Semester{}, err
	}
	sem, err := svc.catSvc.GetSemesterByID(ctx, semesterID)
	if err != nil {
		return catalog.Course{}, catalog.Semester{}, err
	}
	if sem.CourseID != crs.ID {
		return catalog.Course{}, catalog.Semester{}, ErrSemesterCourseMismatch
	}
	return crs, sem, nil
}

func (svc *Service) CreateStandardFee(ctx context.Context, nf NewStandardFee) (StandardFee, error) {
	if _, _, err := svc.checkPair(ctx, nf.CourseID, nf.SemesterID); err != nil {
		return StandardFee{}, err
	}
	if err := svc.repo.CheckStandardFeeUniqueness(ctx, nf.CourseID, nf.SemesterID); err != nil {
		return StandardFee{}, err
	}

	now := time.Now().UTC()
	fee := StandardFee{
		CourseID:    nf.CourseID,
		SemesterID:  nf.SemesterID,
		Name:        nf.Name,
		Amount:      nf.Amount,
		Description: nf.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateStandardFee(ctx, fee)
}

func (svc *Service) QueryStandardFees(ctx context.Context, filter *StandardFeeFilter) ([]StandardFee, error) {
	return svc.repo.QueryStandardFees(ctx, filter)
}

func (svc *Service) UpdateStandardFee(ctx context.Context, id int, uf UpdateStandardFee) (StandardFee, error) {
	fee, err := svc.repo.GetStandardFeeByID(ctx, id)
	if err != nil {
		return StandardFee{}, err
	}
	if _, _, err := svc.checkPair(ctx, uf.CourseID, uf.SemesterID); err != nil {
		return StandardFee{}, err
	}
	// on update the uniqueness check excludes the record being updated
	if fee.CourseID != uf.CourseID || fee.SemesterID != uf.SemesterID {
		if err := svc.repo.CheckStandardFeeUniqueness(ctx, uf.CourseID, uf.SemesterID, fee.ID); err != nil {
			return StandardFee{}, err
		}
	}

	fee.CourseID = uf.CourseID
	fee.SemesterID = uf.SemesterID
	fee.Name = uf.Name
	fee.Amount = uf.Amount
	fee.Description = uf.Description
	fee.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStandardFee(ctx, fee)
}

func (svc *Service) DeleteStandardFee(ctx context.Context, id int) error {
	if _, err := svc.repo.GetStandardFeeByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteStandardFee(ctx, id)
}

func (svc *Service) CreateStudentFee(ctx context.Context, nf NewStudentFee) (StudentFee, error) {
	student, err := svc.usrSvc.GetByID(ctx, nf.StudentID)
	if err != nil {
		if err == user.ErrNotFound {
			return StudentFee{}, ErrStudentNotFound
		}
		return StudentFee{}, err
	}
	if _, _, err := svc.checkPair(ctx, nf.CourseID, nf.SemesterID); err != nil {
		return StudentFee{}, err
	}
	enrolled, err := svc.catSvc.IsStudentEnrolled(ctx, student.ID, nf.CourseID)
	if err != nil {
		return StudentFee{}, err
	}
	if !enrolled {
		return StudentFee{}, ErrStudentNotEnrolled
	}

	var std *StandardFee
	if nf.Amount == nil {
		if fee, err := svc.repo.GetStandardFeeForPair(ctx, nf.CourseID, nf.SemesterID); err == nil {
			std = &fee
		} else if err != ErrStandardFeeNotFound {
			return StudentFee{}, err
		}
	}
	resolved := ResolveAmount(nf.Amount, nf.Description, std)
	if !resolved.Resolved() {
		return StudentFee{}, ErrNoAmountNoStandardFee
	}

	now := time.Now().UTC()
	fee := StudentFee{
		StudentID:   nf.StudentID,
		CourseID:    nf.CourseID,
		SemesterID:  nf.SemesterID,
		Amount:      resolved.Amount,
		Description: resolved.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateStudentFee(ctx, fee)
}

func (svc *Service) QueryStudentFees(ctx context.Context, filter *StudentFeeFilter) ([]StudentFee, error) {
	return svc.repo.QueryStudentFees(ctx, filter)
}

// CreatePayment records a payment against a student fee and derives its
// receipt in one store transaction. Partial and over-payments are allowed;
// the domain permits settlement across multiple payments.
func (svc *Service) CreatePayment(ctx context.Context, np NewPayment) (Payment, error) {
	student, err := svc.usrSvc.GetByID(ctx, np.StudentID)
	if err != nil {
		if err == user.ErrNotFound {
			return Payment{}, ErrStudentNotFound
		}
		return Payment{}, err
	}
	fee, err := svc.repo.GetStudentFeeByID(ctx, np.StudentFeeID)
	if err != nil {
		return Payment{}, err
	}
	crs, err := svc.catSvc.GetCourseByID(ctx, fee.CourseID)
	if err != nil {
		return Payment{}, err
	}
	sem, err := svc.catSvc.GetSemesterByID(ctx, fee.SemesterID)
	if err != nil {
		return Payment{}, err
	}

	pmt := Payment{
		StudentID:     np.StudentID,
		StudentFeeID:  np.StudentFeeID,
		Amount:        np.Amount,
		PaymentDate:   time.Now().UTC(),
		Method:        np.Method,
		TransactionID: np.TransactionID,
		Notes:         np.Notes,
	}
	pmt, err = svc.repo.CreatePayment(ctx, pmt, crs.Code, sem.Name)
	if err != nil {
		return Payment{}, err
	}

	svc.sendPaymentConfirmation(pmt, student, fee, sem.Name)
	return pmt, nil
}

// sendPaymentConfirmation emails the student their receipt. Failures are
// logged and never affect the committed payment.
func (svc *Service) sendPaymentConfirmation(pmt Payment, student user.User, fee StudentFee, semesterName string) {
	if svc.mail == nil || pmt.Receipt == nil || student.Email == "" {
		return
	}

	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: student.FullName, Address: student.Email}},
		Subject: fmt.Sprintf("Payment received: receipt %s", pmt.Receipt.ReceiptNumber),
		BodyStr: fmt.Sprintf(
			"Dear %s,\r\n\r\nWe received your payment of %.2f (%s). Your receipt %s is attached.\r\n\r\nThank you.",
			student.FullName, pmt.Amount, pmt.Method, pmt.Receipt.ReceiptNumber,
		),
	}

	data := ReceiptData{
		Receipt:      *pmt.Receipt,
		Payment:      pmt,
		Student:      student,
		StudentFee:   fee,
		SemesterName: semesterName,
	}
	if svc.renderer != nil {
		if doc, err := svc.renderer.Render(data); err == nil {
			if err := msg.Attach(doc, data.Filename(), "application/pdf"); err != nil && svc.log != nil {
				svc.log.Warn("attaching receipt to confirmation email", errors.Wrap(err, "attaching receipt"))
			}
		} else if svc.log != nil {
			svc.log.Warn("rendering receipt for confirmation email", errors.Wrap(err, "rendering receipt"))
		}
	}

	svc.mail.SendMessages(msg)
}

func (svc *Service) QueryPayments(ctx context.Context, filter *PaymentFilter) ([]Payment, error) {
	return svc.repo.QueryPayments(ctx, filter)
}

// RenderReceipt renders the receipt document on demand. The caller must be
// admin or faculty, or the student who owns the underlying payment. Given
// the same stored data the rendered content is identical across calls.
func (svc *Service) RenderReceipt(ctx context.Context, receiptID int, caller user.User) (ReceiptData, []byte, error) {
	rcpt, err := svc.repo.GetReceiptByID(ctx, receiptID)
	if err != nil {
		return ReceiptData{}, nil, err
	}
	pmt, err := svc.repo.GetPaymentByID(ctx, rcpt.PaymentID)
	if err != nil {
		return ReceiptData{}, nil, err
	}

	if !(caller.HasAnyRole(user.RoleAdmin, user.RoleFaculty) || caller.ID == pmt.StudentID) {
		return ReceiptData{}, nil, ErrReceiptAccessDenied
	}

	student, err := svc.usrSvc.GetByID(ctx, pmt.StudentID)
	if err != nil {
		return ReceiptData{}, nil, err
	}
	fee, err := svc.repo.GetStudentFeeByID(ctx, pmt.StudentFeeID)
	if err != nil {
		return ReceiptData{}, nil, err
	}
	sem, err := svc.catSvc.GetSemesterByID(ctx, fee.SemesterID)
	if err != nil {
		return ReceiptData{}, nil, err
	}

	data := ReceiptData{
		Receipt:      rcpt,
		Payment:      pmt,
		Student:      student,
		StudentFee:   fee,
		SemesterName: sem.Name,
	}
	doc, err := svc.renderer.Render(data)
	if err != nil {
		return ReceiptData{}, nil, errors.Wrap(err, "rendering receipt")
	}
	return data, doc.Bytes(), nil
}

// StudentReceiptIDs lists the receipt ids of all of a student's payments.
func (svc *Service) StudentReceiptIDs(ctx context.Context, studentID int, caller user.User) ([]int, error) {
	if !(caller.HasAnyRole(user.RoleAdmin, user.RoleFaculty) || caller.ID == studentID) {
		return nil, ErrReceiptAccessDenied
	}
	return svc.repo.QueryReceiptIDsByStudent(ctx, studentID)
}

// Summarize runs the two independent filtered scans: student fees filtered
// by student/semester, payments filtered by student/date range. TotalPending
// is TotalFees minus TotalPaid over those two sets; callers must apply matching
// filters to get a coherent pending figure.
func (svc *Service) Summarize(ctx context.Context, filter *SummaryFilter) (Summary, error) {
	if filter == nil {
		filter = &SummaryFilter{}
	}

	feeFilter := &StudentFeeFilter{StudentID: filter.StudentID, SemesterID: filter.SemesterID}
	totalFees, studentCount, err := svc.repo.SummarizeStudentFees(ctx, feeFilter)
	if err != nil {
		return Summary{}, err
	}

	pmtFilter := &PaymentFilter{StudentID: filter.StudentID, StartDate: filter.StartDate, EndDate: filter.EndDate}
	totalPaid, paymentCount, err := svc.repo.SummarizePayments(ctx, pmtFilter)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalFees:    totalFees,
		TotalPaid:    totalPaid,
		TotalPending: totalFees - totalPaid,
		StudentCount: studentCount,
		PaymentCount: paymentCount,
	}, nil
}
