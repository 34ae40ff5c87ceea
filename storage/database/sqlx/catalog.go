package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tshiala/kampus/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo catalogRepository) CheckInstituteUniqueness(ctx context.Context, name, code string) error {
	var nameTaken, codeTaken bool
	query := `
SELECT EXISTS (SELECT 1 FROM institute WHERE name = $1),
       EXISTS (SELECT 1 FROM institute WHERE code = $2)`
	if err := repo.db.QueryRowContext(ctx, query, name, code).Scan(&nameTaken, &codeTaken); err != nil {
		return errors.Wrap(err, "checking institute uniqueness")
	}
	if nameTaken {
		return catalog.ErrInstituteNameExists
	}
	if codeTaken {
		return catalog.ErrInstituteCodeExists
	}
	return nil
}

func (repo catalogRepository) CreateInstitute(ctx context.Context, inst catalog.Institute) (catalog.Institute, error) {
	query := `
INSERT INTO institute (name, code, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		inst.Name, inst.Code, inst.Description, inst.CreatedAt, inst.UpdatedAt,
	).Scan(&inst.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			if pqErr.Constraint == "institute_code_key" {
				return catalog.Institute{}, catalog.ErrInstituteCodeExists
			}
			return catalog.Institute{}, catalog.ErrInstituteNameExists
		}
		return catalog.Institute{}, errors.Wrap(err, "inserting institute")
	}
	return inst, nil
}

func (repo catalogRepository) GetInstituteByID(ctx context.Context, id int) (catalog.Institute, error) {
	var inst catalog.Institute
	query := `SELECT id, name, code, description, created_at, updated_at FROM institute WHERE id = $1`
	if err := repo.db.QueryRowxContext(ctx, query, id).StructScan(&inst); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Institute{}, catalog.ErrInstituteNotFound
		}
		return catalog.Institute{}, errors.Wrap(err, "finding institute")
	}

	courses, err := repo.QueryCourses(ctx, &catalog.CourseFilter{InstituteID: id})
	if err != nil {
		return catalog.Institute{}, err
	}
	inst.Courses = courses
	return inst, nil
}

func (repo catalogRepository) QueryInstitutes(ctx context.Context) ([]catalog.Institute, error) {
	insts := make([]catalog.Institute, 0)
	query := `SELECT id, name, code, description, created_at, updated_at FROM institute ORDER BY name`
	if err := repo.db.SelectContext(ctx, &insts, query); err != nil {
		return nil, errors.Wrap(err, "querying institutes")
	}
	return insts, nil
}

func (repo catalogRepository) CheckCourseCodeUniqueness(ctx context.Context, code string) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM course WHERE code = $1)`
	if err := repo.db.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking course code uniqueness")
	}
	if exists {
		return catalog.ErrCourseCodeExists
	}
	return nil
}

func (repo catalogRepository) CreateCourse(ctx context.Context, crs catalog.Course) (catalog.Course, error) {
	query := `
INSERT INTO course (institute_id, name, code, duration_years, description, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		crs.InstituteID, crs.Name, crs.Code, crs.DurationYears, crs.Description, crs.IsActive, crs.CreatedAt, crs.UpdatedAt,
	).Scan(&crs.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return catalog.Course{}, catalog.ErrCourseCodeExists
		}
		return catalog.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo catalogRepository) GetCourseByID(ctx context.Context, id int) (catalog.Course, error) {
	var crs catalog.Course
	query := `
SELECT id, institute_id, name, code, duration_years, description, is_active, created_at, updated_at
FROM course WHERE id = $1`
	if err := repo.db.QueryRowxContext(ctx, query, id).StructScan(&crs); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Course{}, catalog.ErrCourseNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "finding course")
	}
	return crs, nil
}

func (repo catalogRepository) QueryCourses(ctx context.Context, filter *catalog.CourseFilter) ([]catalog.Course, error) {
	query := `
SELECT id, institute_id, name, code, duration_years, description, is_active, created_at, updated_at
FROM course`
	var args []interface{}
	if filter != nil && filter.InstituteID != 0 {
		query += ` WHERE institute_id = $1`
		args = append(args, filter.InstituteID)
	}
	query += ` ORDER BY code`

	courses := make([]catalog.Course, 0)
	if err := repo.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo catalogRepository) CreateSemester(ctx context.Context, sem catalog.Semester) (catalog.Semester, error) {
	query := `
INSERT INTO semester (course_id, name, type, order_in_course, start_date, end_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		sem.CourseID, sem.Name, sem.Type, sem.OrderInCourse, sem.StartDate, sem.EndDate, sem.CreatedAt, sem.UpdatedAt,
	).Scan(&sem.ID)
	if err != nil {
		return catalog.Semester{}, errors.Wrap(err, "inserting semester")
	}
	return sem, nil
}

func (repo catalogRepository) GetSemesterByID(ctx context.Context, id int) (catalog.Semester, error) {
	var sem catalog.Semester
	query := `
SELECT id, course_id, name, type, order_in_course, start_date, end_date, created_at, updated_at
FROM semester WHERE id = $1`
	if err := repo.db.QueryRowxContext(ctx, query, id).StructScan(&sem); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Semester{}, catalog.ErrSemesterNotFound
		}
		return catalog.Semester{}, errors.Wrap(err, "finding semester")
	}
	return sem, nil
}

func (repo catalogRepository) QuerySemesters(ctx context.Context, filter *catalog.SemesterFilter) ([]catalog.Semester, error) {
	query := `
SELECT id, course_id, name, type, order_in_course, start_date, end_date, created_at, updated_at
FROM semester`
	var args []interface{}
	if filter != nil && filter.CourseID != 0 {
		query += ` WHERE course_id = $1`
		args = append(args, filter.CourseID)
	}
	query += ` ORDER BY course_id, order_in_course`

	sems := make([]catalog.Semester, 0)
	if err := repo.db.SelectContext(ctx, &sems, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying semesters")
	}
	return sems, nil
}

func (repo catalogRepository) EnrollStudent(ctx context.Context, studentID, courseID int) error {
	query := `INSERT INTO student_course (student_id, course_id) VALUES ($1, $2)`
	if _, err := repo.db.ExecContext(ctx, query, studentID, courseID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return catalog.ErrAlreadyEnrolled
		}
		return errors.Wrap(err, "enrolling student")
	}
	return nil
}

func (repo catalogRepository) IsStudentEnrolled(ctx context.Context, studentID, courseID int) (bool, error) {
	var enrolled bool
	query := `SELECT EXISTS (SELECT 1 FROM student_course WHERE student_id = $1 AND course_id = $2)`
	if err := repo.db.QueryRowContext(ctx, query, studentID, courseID).Scan(&enrolled); err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return enrolled, nil
}
