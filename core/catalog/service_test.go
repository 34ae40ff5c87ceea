package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/tshiala/kampus/core"
	"github.com/tshiala/kampus/core/catalog"
	"github.com/tshiala/kampus/core/user"
	emailsvc "github.com/tshiala/kampus/services/email"
	dummydb "github.com/tshiala/kampus/storage/database/dummy"
	testutil "github.com/tshiala/kampus/tests"
)

type testEnv struct {
	usrRepo user.Repository
	catRepo catalog.Repository
	svc     *catalog.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := core.NewTestConfig()
	db := testutil.OpenDB(t)
	usrRepo := dummydb.NewUserRepository(db)
	catRepo := dummydb.NewCatalogRepository(db)
	usrSvc := user.NewService(conf, usrRepo, emailsvc.NewConsoleServiceMock(conf))
	return &testEnv{
		usrRepo: usrRepo,
		catRepo: catRepo,
		svc:     catalog.NewService(catRepo, usrSvc),
	}
}

func TestService_CreateInstitute(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	testutil.CreateInstitute(t, env.catRepo, "Institute of Science", "sci")

	tests := []struct {
		name    string
		ni      catalog.NewInstitute
		wantErr error
	}{
		{name: "ok", ni: catalog.NewInstitute{Name: "Institute of Arts", Code: "arts"}},
		{name: "duplicate name", ni: catalog.NewInstitute{Name: "Institute of Science", Code: "sci2"}, wantErr: catalog.ErrInstituteNameExists},
		{name: "duplicate code", ni: catalog.NewInstitute{Name: "Other Science", Code: "sci"}, wantErr: catalog.ErrInstituteCodeExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := env.svc.CreateInstitute(ctx, tt.ni)
			if err != tt.wantErr {
				t.Fatalf("CreateInstitute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && inst.ID == 0 {
				t.Errorf("CreateInstitute() inst.ID not set")
			}
		})
	}
}

func TestService_CreateCourse(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	inst := testutil.CreateInstitute(t, env.catRepo, "Institute of Science", "sci")
	testutil.CreateCourse(t, env.catRepo, inst.ID, "Computer Science", "cs101", 3)

	tests := []struct {
		name    string
		nc      catalog.NewCourse
		wantErr error
	}{
		{name: "institute not found", nc: catalog.NewCourse{InstituteID: 404, Name: "Biology", Code: "bio", DurationYears: 3}, wantErr: catalog.ErrInstituteNotFound},
		{name: "duplicate code", nc: catalog.NewCourse{InstituteID: inst.ID, Name: "CS bis", Code: "cs101", DurationYears: 3}, wantErr: catalog.ErrCourseCodeExists},
		{name: "ok", nc: catalog.NewCourse{InstituteID: inst.ID, Name: "Biology", Code: "bio", DurationYears: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crs, err := env.svc.CreateCourse(ctx, tt.nc)
			if err != tt.wantErr {
				t.Fatalf("CreateCourse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if crs.ID == 0 {
					t.Errorf("CreateCourse() crs.ID not set")
				}
				if !crs.IsActive {
					t.Errorf("CreateCourse() new course should default to active")
				}
			}
		})
	}
}

func TestService_CreateSemester(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	inst := testutil.CreateInstitute(t, env.catRepo, "Institute of Science", "sci")
	crs := testutil.CreateCourse(t, env.catRepo, inst.ID, "Computer Science", "cs101", 3)

	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 4, 0)

	tests := []struct {
		name    string
		ns      catalog.NewSemester
		wantErr error
	}{
		{
			name:    "course not found",
			ns:      catalog.NewSemester{CourseID: 404, Name: "Fall 2025", Type: catalog.TypeSemester, OrderInCourse: 1, StartDate: start, EndDate: end},
			wantErr: catalog.ErrCourseNotFound,
		},
		{
			name: "ok",
			ns:   catalog.NewSemester{CourseID: crs.ID, Name: "Fall 2025", Type: catalog.TypeSemester, OrderInCourse: 1, StartDate: start, EndDate: end},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sem, err := env.svc.CreateSemester(ctx, tt.ns)
			if err != tt.wantErr {
				t.Fatalf("CreateSemester() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && sem.ID == 0 {
				t.Errorf("CreateSemester() sem.ID not set")
			}
		})
	}
}

func TestService_Enroll(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	inst := testutil.CreateInstitute(t, env.catRepo, "Institute of Science", "sci")
	crs := testutil.CreateCourse(t, env.catRepo, inst.ID, "Computer Science", "cs101", 3)
	student := testutil.CreateUser(t, env.usrRepo, "Ada L", "ada@test.cd", "", []string{user.RoleStudent}, true)
	prof := testutil.CreateUser(t, env.usrRepo, "Prof", "prof@test.cd", "", []string{user.RoleFaculty}, true)

	tests := []struct {
		name      string
		courseID  int
		studentID int
		wantErr   error
	}{
		{name: "course not found", courseID: 404, studentID: student.ID, wantErr: catalog.ErrCourseNotFound},
		{name: "student not found", courseID: crs.ID, studentID: 404, wantErr: catalog.ErrStudentNotFound},
		{name: "not a student", courseID: crs.ID, studentID: prof.ID, wantErr: catalog.ErrNotAStudent},
		{name: "ok", courseID: crs.ID, studentID: student.ID},
		{name: "already enrolled", courseID: crs.ID, studentID: student.ID, wantErr: catalog.ErrAlreadyEnrolled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := env.svc.Enroll(ctx, tt.courseID, tt.studentID); err != tt.wantErr {
				t.Fatalf("Enroll() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	enrolled, err := env.svc.IsStudentEnrolled(ctx, student.ID, crs.ID)
	if err != nil {
		t.Fatalf("IsStudentEnrolled() error = %v", err)
	}
	if !enrolled {
		t.Errorf("IsStudentEnrolled() = false, want true")
	}
}

func TestService_GetInstituteByID_withCourses(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	inst := testutil.CreateInstitute(t, env.catRepo, "Institute of Science", "sci")
	bio := testutil.CreateCourse(t, env.catRepo, inst.ID, "Biology", "bio", 3)
	cs := testutil.CreateCourse(t, env.catRepo, inst.ID, "Computer Science", "cs101", 3)

	got, err := env.svc.GetInstituteByID(ctx, inst.ID)
	if err != nil {
		t.Fatalf("GetInstituteByID() error = %v", err)
	}
	if len(got.Courses) != 2 {
		t.Fatalf("GetInstituteByID() loaded %d courses, want 2", len(got.Courses))
	}
	// ordered by code
	if got.Courses[0].ID != bio.ID || got.Courses[1].ID != cs.ID {
		t.Errorf("GetInstituteByID() courses = [%d %d], want [%d %d]", got.Courses[0].ID, got.Courses[1].ID, bio.ID, cs.ID)
	}

	if _, err := env.svc.GetInstituteByID(ctx, 404); err != catalog.ErrInstituteNotFound {
		t.Errorf("GetInstituteByID() error = %v, wantErr %v", err, catalog.ErrInstituteNotFound)
	}
}
