package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/tshiala/kampus/core"
)

// Semester granularity tags.
const (
	TypeSemester = "semester"
	TypeYear     = "year"
)

type Institute struct {
	ID          int         `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Code        string      `json:"code" db:"code"`
	Description null.String `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"` // UTC

	Courses []Course `json:"courses,omitempty"`
}

type Course struct {
	ID            int         `json:"id" db:"id"`
	InstituteID   int         `json:"institute_id" db:"institute_id"`
	Name          string      `json:"name" db:"name"`
	Code          string      `json:"code" db:"code"`
	DurationYears int         `json:"duration_years" db:"duration_years"`
	Description   null.String `json:"description,omitempty" db:"description"`
	IsActive      bool        `json:"is_active" db:"is_active"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"` // UTC

	Institute *Institute `json:"institute,omitempty"`
}

type Semester struct {
	ID            int       `json:"id" db:"id"`
	CourseID      int       `json:"course_id" db:"course_id"`
	Name          string    `json:"name" db:"name"`
	Type          string    `json:"type" db:"type"` // semester | year
	OrderInCourse int       `json:"order_in_course" db:"order_in_course"`
	StartDate     time.Time `json:"start_date" db:"start_date"`
	EndDate       time.Time `json:"end_date" db:"end_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewInstitute contains information needed to create a new Institute.
type NewInstitute struct {
	Name        string      `json:"name" validate:"required"`
	Code        string      `json:"code" validate:"required,alphanum_"`
	Description null.String `json:"description"`
}

func (ni *NewInstitute) Validate(validate *validator.Validate) error {
	ni.Name = core.CleanString(ni.Name)
	ni.Code = core.CleanString(ni.Code, true /* lower */)
	return validate.Struct(ni)
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	InstituteID   int         `json:"institute_id" validate:"required"`
	Name          string      `json:"name" validate:"required"`
	Code          string      `json:"code" validate:"required,alphanum_"`
	DurationYears int         `json:"duration_years" validate:"required,min=1"`
	Description   null.String `json:"description"`
	IsActive      *bool       `json:"is_active"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code, true /* lower */)
	return validate.Struct(nc)
}

// NewSemester contains information needed to create a new Semester.
type NewSemester struct {
	CourseID      int       `json:"course_id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	Type          string    `json:"type" validate:"required,oneof=semester year"`
	OrderInCourse int       `json:"order_in_course" validate:"required,min=1"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" validate:"required"`
}

func (ns *NewSemester) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Type = core.CleanString(ns.Type, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	if ns.EndDate.Before(ns.StartDate) {
		return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "end date must not be before start date"})
	}
	return nil
}

type CourseFilter struct {
	InstituteID int `query:"institute_id"`
}

type SemesterFilter struct {
	CourseID int `query:"course_id"`
}
