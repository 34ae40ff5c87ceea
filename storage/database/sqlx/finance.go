package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tshiala/kampus/core/finance"
)

type financeRepository struct {
	db *sqlx.DB
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(db *sqlx.DB) *financeRepository {
	return &financeRepository{db: db}
}

func (repo financeRepository) CheckStandardFeeUniqueness(ctx context.Context, courseID, semesterID int, excludedIDs ...int) error {
	ids := make(pq.Int64Array, 0, len(excludedIDs))
	for _, id := range excludedIDs {
		ids = append(ids, int64(id))
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM standard_fee WHERE course_id = $1 AND semester_id = $2 AND NOT (id = ANY($3)))`
	if err := repo.db.QueryRowContext(ctx, query, courseID, semesterID, ids).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking standard fee uniqueness")
	}
	if exists {
		return finance.ErrStandardFeeExists
	}
	return nil
}

func (repo financeRepository) CreateStandardFee(ctx context.Context, fee finance.StandardFee) (finance.StandardFee, error) {
	query := `
INSERT INTO standard_fee (course_id, semester_id, name, amount, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		fee.CourseID, fee.SemesterID, fee.Name, fee.Amount, fee.Description, fee.CreatedAt, fee.UpdatedAt,
	).Scan(&fee.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return finance.StandardFee{}, finance.ErrStandardFeeExists
		}
		return finance.StandardFee{}, errors.Wrap(err, "inserting standard fee")
	}
	return fee, nil
}

func (repo financeRepository) GetStandardFeeByID(ctx context.Context, id int) (finance.StandardFee, error) {
	var fee finance.StandardFee
	query := `
SELECT id, course_id, semester_id, name, amount, description, created_at, updated_at
FROM standard_fee WHERE id = $1`
	if err := repo.db.QueryRowxContext(ctx, query, id).StructScan(&fee); err != nil {
		if err == sql.ErrNoRows {
			return finance.StandardFee{}, finance.ErrStandardFeeNotFound
		}
		return finance.StandardFee{}, errors.Wrap(err, "finding standard fee")
	}
	return fee, nil
}

func (repo financeRepository) GetStandardFeeForPair(ctx context.Context, courseID, semesterID int) (finance.StandardFee, error) {
	var fee finance.StandardFee
	query := `
SELECT id, course_id, semester_id, name, amount, description, created_at, updated_at
FROM standard_fee WHERE course_id = $1 AND semester_id = $2`
	if err := repo.db.QueryRowxContext(ctx, query, courseID, semesterID).StructScan(&fee); err != nil {
		if err == sql.ErrNoRows {
			return finance.StandardFee{}, finance.ErrStandardFeeNotFound
		}
		return finance.StandardFee{}, errors.Wrap(err, "finding standard fee for pair")
	}
	return fee, nil
}

func (repo financeRepository) QueryStandardFees(ctx context.Context, filter *finance.StandardFeeFilter) ([]finance.StandardFee, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter != nil {
		if filter.CourseID != 0 {
			conds = append(conds, "course_id = "+arg(filter.CourseID))
		}
		if filter.SemesterID != 0 {
			conds = append(conds, "semester_id = "+arg(filter.SemesterID))
		}
	}

	query := `
SELECT id, course_id, semester_id, name, amount, description, created_at, updated_at
FROM standard_fee`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	fees := make([]finance.StandardFee, 0)
	if err := repo.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying standard fees")
	}
	return fees, nil
}

func (repo financeRepository) UpdateStandardFee(ctx context.Context, fee finance.StandardFee) (finance.StandardFee, error) {
	query := `
UPDATE standard_fee
SET course_id = $1, semester_id = $2, name = $3, amount = $4, description = $5, updated_at = $6
WHERE id = $7`
	res, err := repo.db.ExecContext(ctx, query,
		fee.CourseID, fee.SemesterID, fee.Name, fee.Amount, fee.Description, fee.UpdatedAt, fee.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return finance.StandardFee{}, finance.ErrStandardFeeExists
		}
		return finance.StandardFee{}, errors.Wrap(err, "updating standard fee")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return finance.StandardFee{}, finance.ErrStandardFeeNotFound
	}
	return fee, nil
}

func (repo financeRepository) DeleteStandardFee(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM standard_fee WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting standard fee")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return finance.ErrStandardFeeNotFound
	}
	return nil
}

func (repo financeRepository) CreateStudentFee(ctx context.Context, fee finance.StudentFee) (finance.StudentFee, error) {
	query := `
INSERT INTO student_fee (student_id, course_id, semester_id, amount, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		fee.StudentID, fee.CourseID, fee.SemesterID, fee.Amount, fee.Description, fee.CreatedAt, fee.UpdatedAt,
	).Scan(&fee.ID)
	if err != nil {
		return finance.StudentFee{}, errors.Wrap(err, "inserting student fee")
	}
	return fee, nil
}

func (repo financeRepository) GetStudentFeeByID(ctx context.Context, id int) (finance.StudentFee, error) {
	var fee finance.StudentFee
	query := `
SELECT id, student_id, course_id, semester_id, amount, description, created_at, updated_at
FROM student_fee WHERE id = $1`
	if err := repo.db.QueryRowxContext(ctx, query, id).StructScan(&fee); err != nil {
		if err == sql.ErrNoRows {
			return finance.StudentFee{}, finance.ErrStudentFeeNotFound
		}
		return finance.StudentFee{}, errors.Wrap(err, "finding student fee")
	}
	return fee, nil
}

func (repo financeRepository) QueryStudentFees(ctx context.Context, filter *finance.StudentFeeFilter) ([]finance.StudentFee, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter != nil {
		if filter.StudentID != 0 {
			conds = append(conds, "student_id = "+arg(filter.StudentID))
		}
		if filter.SemesterID != 0 {
			conds = append(conds, "semester_id = "+arg(filter.SemesterID))
		}
	}

	query := `
SELECT id, student_id, course_id, semester_id, amount, description, created_at, updated_at
FROM student_fee`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	fees := make([]finance.StudentFee, 0)
	if err := repo.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying student fees")
	}
	return fees, nil
}

// CreatePayment inserts the payment then derives and inserts its receipt,
// all in one transaction.
func (repo financeRepository) CreatePayment(ctx context.Context, pmt finance.Payment, courseCode, semesterName string) (finance.Payment, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return finance.Payment{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
INSERT INTO payment (student_id, student_fee_id, amount, payment_date, payment_method, transaction_id, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err = tx.QueryRowContext(ctx, query,
		pmt.StudentID, pmt.StudentFeeID, pmt.Amount, pmt.PaymentDate, pmt.Method, pmt.TransactionID, pmt.Notes,
	).Scan(&pmt.ID)
	if err != nil {
		// transaction_id is the only unique column on payment
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return finance.Payment{}, finance.ErrTransactionIDExists
		}
		return finance.Payment{}, errors.Wrap(err, "inserting payment")
	}

	rcpt := finance.Receipt{
		PaymentID:     pmt.ID,
		ReceiptNumber: finance.BuildReceiptNumber(pmt.ID, courseCode, semesterName, pmt.PaymentDate),
		GeneratedAt:   pmt.PaymentDate,
	}
	query = `
INSERT INTO receipt (payment_id, receipt_number, generated_at)
VALUES ($1, $2, $3)
RETURNING id`
	err = tx.QueryRowContext(ctx, query, rcpt.PaymentID, rcpt.ReceiptNumber, rcpt.GeneratedAt).Scan(&rcpt.ID)
	if err != nil {
		return finance.Payment{}, errors.Wrap(err, "inserting receipt")
	}

	if err = tx.Commit(); err != nil {
		return finance.Payment{}, errors.Wrap(err, "committing payment")
	}
	pmt.Receipt = &rcpt
	return pmt, nil
}

func (repo financeRepository) GetPaymentByID(ctx context.Context, id int) (finance.Payment, error) {
	var pmt finance.Payment
	query := `
SELECT id, student_id, student_fee_id, amount, payment_date, payment_method, transaction_id, notes
FROM payment WHERE id = $1`
	if err := repo.db.QueryRowxContext(ctx, query, id).StructScan(&pmt); err != nil {
		if err == sql.ErrNoRows {
			return finance.Payment{}, finance.ErrPaymentNotFound
		}
		return finance.Payment{}, errors.Wrap(err, "finding payment")
	}

	var rcpt finance.Receipt
	query = `SELECT id, payment_id, receipt_number, generated_at, pdf_path FROM receipt WHERE payment_id = $1`
	if err := repo.db.QueryRowxContext(ctx, query, id).StructScan(&rcpt); err == nil {
		pmt.Receipt = &rcpt
	} else if err != sql.ErrNoRows {
		return finance.Payment{}, errors.Wrap(err, "finding payment receipt")
	}
	return pmt, nil
}

func (repo financeRepository) QueryPayments(ctx context.Context, filter *finance.PaymentFilter) ([]finance.Payment, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter != nil {
		if filter.StudentID != 0 {
			conds = append(conds, "p.student_id = "+arg(filter.StudentID))
		}
		if filter.StudentFeeID != 0 {
			conds = append(conds, "p.student_fee_id = "+arg(filter.StudentFeeID))
		}
		if !filter.StartDate.IsZero() {
			conds = append(conds, "p.payment_date >= "+arg(filter.StartDate.UTC()))
		}
		if !filter.EndDate.IsZero() {
			conds = append(conds, "p.payment_date <= "+arg(filter.EndDate.UTC()))
		}
	}

	query := `
SELECT p.id, p.student_id, p.student_fee_id, p.amount, p.payment_date, p.payment_method, p.transaction_id, p.notes,
       r.id AS receipt_id, r.receipt_number, r.generated_at
FROM payment p
JOIN receipt r ON r.payment_id = p.id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.payment_date DESC"

	rows, err := repo.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	defer func() { _ = rows.Close() }()

	payments := make([]finance.Payment, 0)
	for rows.Next() {
		var (
			pmt  finance.Payment
			rcpt finance.Receipt
		)
		err = rows.Scan(
			&pmt.ID, &pmt.StudentID, &pmt.StudentFeeID, &pmt.Amount, &pmt.PaymentDate, &pmt.Method,
			&pmt.TransactionID, &pmt.Notes,
			&rcpt.ID, &rcpt.ReceiptNumber, &rcpt.GeneratedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scanning payment")
		}
		rcpt.PaymentID = pmt.ID
		pmt.Receipt = &rcpt
		payments = append(payments, pmt)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	return payments, nil
}

func (repo financeRepository) GetReceiptByID(ctx context.Context, id int) (finance.Receipt, error) {
	var rcpt finance.Receipt
	query := `SELECT id, payment_id, receipt_number, generated_at, pdf_path FROM receipt WHERE id = $1`
	if err := repo.db.QueryRowxContext(ctx, query, id).StructScan(&rcpt); err != nil {
		if err == sql.ErrNoRows {
			return finance.Receipt{}, finance.ErrReceiptNotFound
		}
		return finance.Receipt{}, errors.Wrap(err, "finding receipt")
	}
	return rcpt, nil
}

func (repo financeRepository) QueryReceiptIDsByStudent(ctx context.Context, studentID int) ([]int, error) {
	ids := make([]int, 0)
	query := `
SELECT r.id FROM receipt r
JOIN payment p ON p.id = r.payment_id
WHERE p.student_id = $1
ORDER BY r.id`
	if err := repo.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student receipts")
	}
	return ids, nil
}

func (repo financeRepository) SummarizeStudentFees(ctx context.Context, filter *finance.StudentFeeFilter) (float64, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter != nil {
		if filter.StudentID != 0 {
			conds = append(conds, "student_id = "+arg(filter.StudentID))
		}
		if filter.SemesterID != 0 {
			conds = append(conds, "semester_id = "+arg(filter.SemesterID))
		}
	}

	query := `SELECT COALESCE(SUM(amount), 0), COUNT(DISTINCT student_id) FROM student_fee`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var (
		total        float64
		studentCount int
	)
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&total, &studentCount); err != nil {
		return 0, 0, errors.Wrap(err, "summarizing student fees")
	}
	return total, studentCount, nil
}

func (repo financeRepository) SummarizePayments(ctx context.Context, filter *finance.PaymentFilter) (float64, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter != nil {
		if filter.StudentID != 0 {
			conds = append(conds, "student_id = "+arg(filter.StudentID))
		}
		if !filter.StartDate.IsZero() {
			conds = append(conds, "payment_date >= "+arg(filter.StartDate.UTC()))
		}
		if !filter.EndDate.IsZero() {
			conds = append(conds, "payment_date <= "+arg(filter.EndDate.UTC()))
		}
	}

	query := `SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM payment`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var (
		total        float64
		paymentCount int
	)
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&total, &paymentCount); err != nil {
		return 0, 0, errors.Wrap(err, "summarizing payments")
	}
	return total, paymentCount, nil
}
