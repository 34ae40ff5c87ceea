package dummydb

import (
	"context"
	"sort"

	"github.com/tshiala/kampus/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CheckInstituteUniqueness(ctx context.Context, name, code string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, inst := range repo.db.institutes {
		if inst.Name == name {
			return catalog.ErrInstituteNameExists
		}
		if inst.Code == code {
			return catalog.ErrInstituteCodeExists
		}
	}
	return nil
}

func (repo *catalogRepository) CreateInstitute(ctx context.Context, inst catalog.Institute) (catalog.Institute, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inst.ID = repo.db.nextID("institute")
	repo.db.institutes[inst.ID] = &inst
	return inst, nil
}

// coursesFor must be called with at least the read lock held.
func (repo *catalogRepository) coursesFor(instituteID int) []catalog.Course {
	courses := make([]catalog.Course, 0)
	for _, crs := range repo.db.courses {
		if instituteID == 0 || crs.InstituteID == instituteID {
			courses = append(courses, *crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses
}

func (repo *catalogRepository) GetInstituteByID(ctx context.Context, id int) (catalog.Institute, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	inst, ok := repo.db.institutes[id]
	if !ok {
		return catalog.Institute{}, catalog.ErrInstituteNotFound
	}
	out := *inst
	out.Courses = repo.coursesFor(id)
	return out, nil
}

func (repo *catalogRepository) QueryInstitutes(ctx context.Context) ([]catalog.Institute, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	insts := make([]catalog.Institute, 0, len(repo.db.institutes))
	for _, inst := range repo.db.institutes {
		insts = append(insts, *inst)
	}
	sort.Slice(insts, func(i, j int) bool { return insts[i].Name < insts[j].Name })
	return insts, nil
}

func (repo *catalogRepository) CheckCourseCodeUniqueness(ctx context.Context, code string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.Code == code {
			return catalog.ErrCourseCodeExists
		}
	}
	return nil
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, crs catalog.Course) (catalog.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = repo.db.nextID("course")
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *catalogRepository) GetCourseByID(ctx context.Context, id int) (catalog.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}

func (repo *catalogRepository) QueryCourses(ctx context.Context, filter *catalog.CourseFilter) ([]catalog.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var instituteID int
	if filter != nil {
		instituteID = filter.InstituteID
	}
	return repo.coursesFor(instituteID), nil
}

func (repo *catalogRepository) CreateSemester(ctx context.Context, sem catalog.Semester) (catalog.Semester, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sem.ID = repo.db.nextID("semester")
	repo.db.semesters[sem.ID] = &sem
	return sem, nil
}

func (repo *catalogRepository) GetSemesterByID(ctx context.Context, id int) (catalog.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sem, ok := repo.db.semesters[id]; ok {
		return *sem, nil
	}
	return catalog.Semester{}, catalog.ErrSemesterNotFound
}

func (repo *catalogRepository) QuerySemesters(ctx context.Context, filter *catalog.SemesterFilter) ([]catalog.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sems := make([]catalog.Semester, 0)
	for _, sem := range repo.db.semesters {
		if filter != nil && filter.CourseID != 0 && sem.CourseID != filter.CourseID {
			continue
		}
		sems = append(sems, *sem)
	}
	sort.Slice(sems, func(i, j int) bool {
		if sems[i].CourseID != sems[j].CourseID {
			return sems[i].CourseID < sems[j].CourseID
		}
		return sems[i].OrderInCourse < sems[j].OrderInCourse
	})
	return sems, nil
}

func (repo *catalogRepository) EnrollStudent(ctx context.Context, studentID, courseID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := enrollmentKey{studentID: studentID, courseID: courseID}
	if repo.db.enrollments[key] {
		return catalog.ErrAlreadyEnrolled
	}
	repo.db.enrollments[key] = true
	return nil
}

func (repo *catalogRepository) IsStudentEnrolled(ctx context.Context, studentID, courseID int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.enrollments[enrollmentKey{studentID: studentID, courseID: courseID}], nil
}
