package catalog

import (
	"context"
	"time"

	"github.com/tshiala/kampus/core"
	"github.com/tshiala/kampus/core/user"
)

var (
	ErrInstituteNotFound = core.NewNotFoundError("institute not found")
	ErrCourseNotFound    = core.NewNotFoundError("course not found")
	ErrSemesterNotFound  = core.NewNotFoundError("semester not found")
	ErrStudentNotFound   = core.NewNotFoundError("student not found")

	ErrInstituteNameExists = core.NewConflictError("an institute with this name already exists")
	ErrInstituteCodeExists = core.NewConflictError("an institute with this code already exists")
	ErrCourseCodeExists    = core.NewConflictError("a course with this code already exists")

	ErrNotAStudent     = core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "user is not a student"})
	ErrAlreadyEnrolled = core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "student already enrolled in this course"})
)

type (
	Repository interface {
		// CheckInstituteUniqueness returns ErrInstituteNameExists or
		// ErrInstituteCodeExists when another institute holds name or code.
		CheckInstituteUniqueness(ctx context.Context, name, code string) error
		CreateInstitute(ctx context.Context, inst Institute) (Institute, error)
		// GetInstituteByID loads the institute along with its courses.
		GetInstituteByID(ctx context.Context, id int) (Institute, error)
		QueryInstitutes(ctx context.Context) ([]Institute, error)

		CheckCourseCodeUniqueness(ctx context.Context, code string) error
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		QueryCourses(ctx context.Context, filter *CourseFilter) ([]Course, error)

		CreateSemester(ctx context.Context, sem Semester) (Semester, error)
		GetSemesterByID(ctx context.Context, id int) (Semester, error)
		QuerySemesters(ctx context.Context, filter *SemesterFilter) ([]Semester, error)

		// EnrollStudent records (student, course) membership; the relation
		// carries composite uniqueness, a duplicate returns ErrAlreadyEnrolled.
		EnrollStudent(ctx context.Context, studentID, courseID int) error
		IsStudentEnrolled(ctx context.Context, studentID, courseID int) (bool, error)
	}

	ServiceInterface interface {
		CreateInstitute(ctx context.Context, ni NewInstitute) (Institute, error)
		GetInstituteByID(ctx context.Context, id int) (Institute, error)
		QueryInstitutes(ctx context.Context) ([]Institute, error)
		CreateCourse(ctx context.Context, nc NewCourse) (Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		QueryCourses(ctx context.Context, filter *CourseFilter) ([]Course, error)
		CreateSemester(ctx context.Context, ns NewSemester) (Semester, error)
		GetSemesterByID(ctx context.Context, id int) (Semester, error)
		QuerySemesters(ctx context.Context, filter *SemesterFilter) ([]Semester, error)
		Enroll(ctx context.Context, courseID, studentID int) error
		IsStudentEnrolled(ctx context.Context, studentID, courseID int) (bool, error)
	}

	Service struct {
		repo   Repository
		usrSvc user.ServiceInterface
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, usrSvc user.ServiceInterface) *Service {
	return &Service{repo: repo, usrSvc: usrSvc}
}

func (svc *Service) CreateInstitute(ctx context.Context, ni NewInstitute) (Institute, error) {
	if err := svc.repo.CheckInstituteUniqueness(ctx, ni.Name, ni.Code); err != nil {
		return Institute{}, err
	}

	now := time.Now().UTC()
	inst := Institute{
		Name:        ni.Name,
		Code:        ni.Code,
		Description: ni.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateInstitute(ctx, inst)
}

func (svc *Service) GetInstituteByID(ctx context.Context, id int) (Institute, error) {
	return svc.repo.GetInstituteByID(ctx, id)
}

func (svc *Service) QueryInstitutes(ctx context.Context) ([]Institute, error) {
	return svc.repo.QueryInstitutes(ctx)
}

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	if _, err := svc.repo.GetInstituteByID(ctx, nc.InstituteID); err != nil {
		return Course{}, err
	}
	if err := svc.repo.CheckCourseCodeUniqueness(ctx, nc.Code); err != nil {
		return Course{}, err
	}

	isActive := true
	if nc.IsActive != nil {
		isActive = *nc.IsActive
	}
	now := time.Now().UTC()
	crs := Course{
		InstituteID:   nc.InstituteID,
		Name:          nc.Name,
		Code:          nc.Code,
		DurationYears: nc.DurationYears,
		Description:   nc.Description,
		IsActive:      isActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetCourseByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) QueryCourses(ctx context.Context, filter *CourseFilter) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter)
}

func (svc *Service) CreateSemester(ctx context.Context, ns NewSemester) (Semester, error) {
	if _, err := svc.repo.GetCourseByID(ctx, ns.CourseID); err != nil {
		return Semester{}, err
	}

	now := time.Now().UTC()
	sem := Semester{
		CourseID:      ns.CourseID,
		Name:          ns.Name,
		Type:          ns.Type,
		OrderInCourse: ns.OrderInCourse,
		StartDate:     ns.StartDate.UTC(),
		EndDate:       ns.EndDate.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateSemester(ctx, sem)
}

func (svc *Service) GetSemesterByID(ctx context.Context, id int) (Semester, error) {
	return svc.repo.GetSemesterByID(ctx, id)
}

func (svc *Service) QuerySemesters(ctx context.Context, filter *SemesterFilter) ([]Semester, error) {
	return svc.repo.QuerySemesters(ctx, filter)
}

// Enroll adds a student to a course's enrollment relation.
// The user must exist, hold the student role and not be enrolled already.
func (svc *Service) Enroll(ctx context.Context, courseID, studentID int) error {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return err
	}

	student, err := svc.usrSvc.GetByID(ctx, studentID)
	if err != nil {
		if err == user.ErrNotFound {
			return ErrStudentNotFound
		}
		return err
	}
	if !student.IsStudent() {
		return ErrNotAStudent
	}

	return svc.repo.EnrollStudent(ctx, studentID, courseID)
}

func (svc *Service) IsStudentEnrolled(ctx context.Context, studentID, courseID int) (bool, error) {
	return svc.repo.IsStudentEnrolled(ctx, studentID, courseID)
}
