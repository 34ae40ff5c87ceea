package dummydb

import (
	"context"
	"sort"

	"github.com/tshiala/kampus/core/finance"
)

type financeRepository struct {
	db *DB
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(db *DB) finance.Repository {
	return &financeRepository{db: db}
}

func (repo *financeRepository) CheckStandardFeeUniqueness(ctx context.Context, courseID, semesterID int, excludedIDs ...int) error {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.checkStandardFeeUniqueness(courseID, semesterID, excludedIDs)
}

// checkStandardFeeUniqueness must be called with at least the read lock held.
func (repo *financeRepository) checkStandardFeeUniqueness(courseID, semesterID int, excludedIDs []int) error {
	for _, fee := range repo.db.standardFees {
		if fee.CourseID != courseID || fee.SemesterID != semesterID {
			continue
		}
		excluded := false
		for _, id := range excludedIDs {
			if fee.ID == id {
				excluded = true
				break
			}
		}
		if !excluded {
			return finance.ErrStandardFeeExists
		}
	}
	return nil
}

func (repo *financeRepository) CreateStandardFee(ctx context.Context, fee finance.StandardFee) (finance.StandardFee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// the store-level pair constraint
	if err := repo.checkStandardFeeUniqueness(fee.CourseID, fee.SemesterID, nil); err != nil {
		return finance.StandardFee{}, err
	}

	fee.ID = repo.db.nextID("standard_fee")
	repo.db.standardFees[fee.ID] = &fee
	return fee, nil
}

func (repo *financeRepository) GetStandardFeeByID(ctx context.Context, id int) (finance.StandardFee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if fee, ok := repo.db.standardFees[id]; ok {
		return *fee, nil
	}
	return finance.StandardFee{}, finance.ErrStandardFeeNotFound
}

func (repo *financeRepository) GetStandardFeeForPair(ctx context.Context, courseID, semesterID int) (finance.StandardFee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, fee := range repo.db.standardFees {
		if fee.CourseID == courseID && fee.SemesterID == semesterID {
			return *fee, nil
		}
	}
	return finance.StandardFee{}, finance.ErrStandardFeeNotFound
}

func (repo *financeRepository) QueryStandardFees(ctx context.Context, filter *finance.StandardFeeFilter) ([]finance.StandardFee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	fees := make([]finance.StandardFee, 0)
	for _, fee := range repo.db.standardFees {
		if filter != nil {
			if filter.CourseID != 0 && fee.CourseID != filter.CourseID {
				continue
			}
			if filter.SemesterID != 0 && fee.SemesterID != filter.SemesterID {
				continue
			}
		}
		fees = append(fees, *fee)
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i].ID < fees[j].ID })
	return fees, nil
}

func (repo *financeRepository) UpdateStandardFee(ctx context.Context, fee finance.StandardFee) (finance.StandardFee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.standardFees[fee.ID]; !ok {
		return finance.StandardFee{}, finance.ErrStandardFeeNotFound
	}
	if err := repo.checkStandardFeeUniqueness(fee.CourseID, fee.SemesterID, []int{fee.ID}); err != nil {
		return finance.StandardFee{}, err
	}
	repo.db.standardFees[fee.ID] = &fee
	return fee, nil
}

func (repo *financeRepository) DeleteStandardFee(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.standardFees[id]; !ok {
		return finance.ErrStandardFeeNotFound
	}
	delete(repo.db.standardFees, id)
	return nil
}

func (repo *financeRepository) CreateStudentFee(ctx context.Context, fee finance.StudentFee) (finance.StudentFee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	fee.ID = repo.db.nextID("student_fee")
	repo.db.studentFees[fee.ID] = &fee
	return fee, nil
}

func (repo *financeRepository) GetStudentFeeByID(ctx context.Context, id int) (finance.StudentFee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if fee, ok := repo.db.studentFees[id]; ok {
		return *fee, nil
	}
	return finance.StudentFee{}, finance.ErrStudentFeeNotFound
}

func (repo *financeRepository) QueryStudentFees(ctx context.Context, filter *finance.StudentFeeFilter) ([]finance.StudentFee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.filterStudentFees(filter), nil
}

// filterStudentFees must be called with at least the read lock held.
func (repo *financeRepository) filterStudentFees(filter *finance.StudentFeeFilter) []finance.StudentFee {
	fees := make([]finance.StudentFee, 0)
	for _, fee := range repo.db.studentFees {
		if filter != nil {
			if filter.StudentID != 0 && fee.StudentID != filter.StudentID {
				continue
			}
			if filter.SemesterID != 0 && fee.SemesterID != filter.SemesterID {
				continue
			}
		}
		fees = append(fees, *fee)
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i].ID < fees[j].ID })
	return fees
}

func (repo *financeRepository) CreatePayment(ctx context.Context, pmt finance.Payment, courseCode, semesterName string) (finance.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// transaction ids are unique when present
	if pmt.TransactionID.Valid {
		for _, p := range repo.db.payments {
			if p.TransactionID.Valid && p.TransactionID.String == pmt.TransactionID.String {
				return finance.Payment{}, finance.ErrTransactionIDExists
			}
		}
	}

	pmt.ID = repo.db.nextID("payment")
	rcpt := finance.Receipt{
		ID:            repo.db.nextID("receipt"),
		PaymentID:     pmt.ID,
		ReceiptNumber: finance.BuildReceiptNumber(pmt.ID, courseCode, semesterName, pmt.PaymentDate),
		GeneratedAt:   pmt.PaymentDate,
	}
	pmt.Receipt = &rcpt

	repo.db.payments[pmt.ID] = &pmt
	repo.db.receipts[rcpt.ID] = &rcpt
	return pmt, nil
}

func (repo *financeRepository) GetPaymentByID(ctx context.Context, id int) (finance.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if pmt, ok := repo.db.payments[id]; ok {
		return *pmt, nil
	}
	return finance.Payment{}, finance.ErrPaymentNotFound
}

func (repo *financeRepository) QueryPayments(ctx context.Context, filter *finance.PaymentFilter) ([]finance.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.filterPayments(filter), nil
}

// filterPayments must be called with at least the read lock held.
func (repo *financeRepository) filterPayments(filter *finance.PaymentFilter) []finance.Payment {
	payments := make([]finance.Payment, 0)
	for _, pmt := range repo.db.payments {
		if filter != nil {
			if filter.StudentID != 0 && pmt.StudentID != filter.StudentID {
				continue
			}
			if filter.StudentFeeID != 0 && pmt.StudentFeeID != filter.StudentFeeID {
				continue
			}
			if !filter.StartDate.IsZero() && pmt.PaymentDate.Before(filter.StartDate.UTC()) {
				continue
			}
			if !filter.EndDate.IsZero() && pmt.PaymentDate.After(filter.EndDate.UTC()) {
				continue
			}
		}
		payments = append(payments, *pmt)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].PaymentDate.After(payments[j].PaymentDate) })
	return payments
}

func (repo *financeRepository) GetReceiptByID(ctx context.Context, id int) (finance.Receipt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rcpt, ok := repo.db.receipts[id]; ok {
		return *rcpt, nil
	}
	return finance.Receipt{}, finance.ErrReceiptNotFound
}

func (repo *financeRepository) QueryReceiptIDsByStudent(ctx context.Context, studentID int) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]int, 0)
	for _, rcpt := range repo.db.receipts {
		if pmt, ok := repo.db.payments[rcpt.PaymentID]; ok && pmt.StudentID == studentID {
			ids = append(ids, rcpt.ID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (repo *financeRepository) SummarizeStudentFees(ctx context.Context, filter *finance.StudentFeeFilter) (float64, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var total float64
	students := make(map[int]bool)
	for _, fee := range repo.filterStudentFees(filter) {
		total += fee.Amount
		students[fee.StudentID] = true
	}
	return total, len(students), nil
}

func (repo *financeRepository) SummarizePayments(ctx context.Context, filter *finance.PaymentFilter) (float64, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var total float64
	payments := repo.filterPayments(filter)
	for _, pmt := range payments {
		total += pmt.Amount
	}
	return total, len(payments), nil
}
