package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tshiala/kampus/core/catalog"
	"github.com/tshiala/kampus/core/user"
)

type catalogApi struct {
	svc      catalog.ServiceInterface
	validate *validator.Validate
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := catalogApi{
		svc:      deps.CatalogSvc,
		validate: deps.Validate,
	}

	staff := rolesRequired(user.RoleAdmin, user.RoleFaculty)

	ig := g.Group("/institutes", jwt)
	ig.POST("", api.createInstitute, staff)
	ig.GET("", api.queryInstitutes)
	ig.GET("/:id", api.retrieveInstitute)

	cg := g.Group("/courses", jwt)
	cg.POST("", api.createCourse, staff)
	cg.GET("", api.queryCourses)
	cg.GET("/:id", api.retrieveCourse)
	cg.POST("/:id/enroll", api.enroll, staff)

	sg := g.Group("/semesters", jwt)
	sg.POST("", api.createSemester, staff)
	sg.GET("", api.querySemesters)
	sg.GET("/:id", api.retrieveSemester)
}

// Handlers

func (api *catalogApi) createInstitute(ctx echo.Context) error {
	var data catalog.NewInstitute
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstitute")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inst, err := api.svc.CreateInstitute(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating institute")
	}
	return ctx.JSON(http.StatusCreated, inst)
}

func (api *catalogApi) queryInstitutes(ctx echo.Context) error {
	insts, err := api.svc.QueryInstitutes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying institutes")
	}
	return ctx.JSON(http.StatusOK, insts)
}

func (api *catalogApi) retrieveInstitute(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	inst, err := api.svc.GetInstituteByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding institute")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *catalogApi) createCourse(ctx echo.Context) error {
	var data catalog.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *catalogApi) queryCourses(ctx echo.Context) error {
	filter := new(catalog.CourseFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []catalog.Course{})
	}

	courses, err := api.svc.QueryCourses(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) retrieveCourse(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	crs, err := api.svc.GetCourseByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *catalogApi) enroll(ctx echo.Context) error {
	courseID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.Enroll(ctx.Request().Context(), courseID, data.StudentID); err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "student enrolled"})
}

func (api *catalogApi) createSemester(ctx echo.Context) error {
	var data catalog.NewSemester
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSemester")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sem, err := api.svc.CreateSemester(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating semester")
	}
	return ctx.JSON(http.StatusCreated, sem)
}

func (api *catalogApi) querySemesters(ctx echo.Context) error {
	filter := new(catalog.SemesterFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []catalog.Semester{})
	}

	sems, err := api.svc.QuerySemesters(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying semesters")
	}
	return ctx.JSON(http.StatusOK, sems)
}

func (api *catalogApi) retrieveSemester(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	sem, err := api.svc.GetSemesterByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding semester")
	}
	return ctx.JSON(http.StatusOK, sem)
}

type EnrollRequest struct {
	StudentID int `json:"student_id" validate:"required"`
}
