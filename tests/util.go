package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tshiala/kampus/core/catalog"
	"github.com/tshiala/kampus/core/finance"
	"github.com/tshiala/kampus/core/user"
	dummydb "github.com/tshiala/kampus/storage/database/dummy"
)

func OpenDB(t *testing.T) *dummydb.DB {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func ResetDB(t *testing.T, db *dummydb.DB) {
	t.Helper()
	db.Reset()
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FullName:  name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateInstitute(t *testing.T, repo catalog.Repository, name, code string) catalog.Institute {
	t.Helper()

	now := time.Now().UTC()
	inst, err := repo.CreateInstitute(context.Background(), catalog.Institute{
		Name:      name,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateInstitute() failed: %v", err)
	}
	return inst
}

func CreateCourse(t *testing.T, repo catalog.Repository, instituteID int, name, code string, durationYears int) catalog.Course {
	t.Helper()

	now := time.Now().UTC()
	crs, err := repo.CreateCourse(context.Background(), catalog.Course{
		InstituteID:   instituteID,
		Name:          name,
		Code:          code,
		DurationYears: durationYears,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateSemester(t *testing.T, repo catalog.Repository, courseID int, name, semType string, order int) catalog.Semester {
	t.Helper()

	now := time.Now().UTC()
	sem, err := repo.CreateSemester(context.Background(), catalog.Semester{
		CourseID:      courseID,
		Name:          name,
		Type:          semType,
		OrderInCourse: order,
		StartDate:     now,
		EndDate:       now.AddDate(0, 6, 0),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateSemester() failed: %v", err)
	}
	return sem
}

func EnrollStudent(t *testing.T, repo catalog.Repository, studentID, courseID int) {
	t.Helper()

	if err := repo.EnrollStudent(context.Background(), studentID, courseID); err != nil {
		t.Fatalf("EnrollStudent() failed: %v", err)
	}
}

func CreateStandardFee(t *testing.T, repo finance.Repository, courseID, semesterID int, name string, amount float64, desc ...string) finance.StandardFee {
	t.Helper()

	now := time.Now().UTC()
	fee := finance.StandardFee{
		CourseID:   courseID,
		SemesterID: semesterID,
		Name:       name,
		Amount:     amount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(desc) > 0 {
		fee.Description = null.StringFrom(desc[0])
	}
	fee, err := repo.CreateStandardFee(context.Background(), fee)
	if err != nil {
		t.Fatalf("CreateStandardFee() failed: %v", err)
	}
	return fee
}

func CreateStudentFee(t *testing.T, repo finance.Repository, studentID, courseID, semesterID int, amount float64, desc ...string) finance.StudentFee {
	t.Helper()

	now := time.Now().UTC()
	fee := finance.StudentFee{
		StudentID:  studentID,
		CourseID:   courseID,
		SemesterID: semesterID,
		Amount:     amount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(desc) > 0 {
		fee.Description = null.StringFrom(desc[0])
	}
	fee, err := repo.CreateStudentFee(context.Background(), fee)
	if err != nil {
		t.Fatalf("CreateStudentFee() failed: %v", err)
	}
	return fee
}

func CreatePayment(
	t *testing.T,
	repo finance.Repository,
	studentID, studentFeeID int,
	amount float64,
	courseCode, semesterName string,
) finance.Payment {
	t.Helper()

	pmt := finance.Payment{
		StudentID:    studentID,
		StudentFeeID: studentFeeID,
		Amount:       amount,
		PaymentDate:  time.Now().UTC(),
		Method:       "cash",
	}
	pmt, err := repo.CreatePayment(context.Background(), pmt, courseCode, semesterName)
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return pmt
}
