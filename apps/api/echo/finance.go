package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tshiala/kampus/core/finance"
	"github.com/tshiala/kampus/core/user"
)

type financeApi struct {
	svc      finance.ServiceInterface
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerFinanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := financeApi{
		svc:      deps.FinanceSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	staff := rolesRequired(user.RoleAdmin, user.RoleFaculty)

	fg := g.Group("/fees", jwt)
	fg.POST("/standard", api.createStandardFee, staff)
	fg.GET("/standard", api.queryStandardFees, staff)
	fg.PUT("/standard/:id", api.updateStandardFee, staff)
	fg.DELETE("/standard/:id", api.destroyStandardFee, staff)

	fg.POST("/student", api.createStudentFee, staff)
	fg.GET("/student", api.queryStudentFees)

	pg := g.Group("/payments", jwt)
	pg.POST("", api.createPayment, staff)
	pg.GET("", api.queryPayments)

	rg := g.Group("/receipts", jwt)
	rg.GET("/:id/download", api.downloadReceipt)
	rg.GET("/student/:id", api.studentReceipts)

	g.GET("/summary", api.summary, jwt, staff)
}

// Handlers

func (api *financeApi) createStandardFee(ctx echo.Context) error {
	var data finance.NewStandardFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStandardFee")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fee, err := api.svc.CreateStandardFee(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating standard fee")
	}
	return ctx.JSON(http.StatusCreated, fee)
}

func (api *financeApi) queryStandardFees(ctx echo.Context) error {
	filter := new(finance.StandardFeeFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []finance.StandardFee{})
	}

	fees, err := api.svc.QueryStandardFees(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying standard fees")
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *financeApi) updateStandardFee(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data finance.UpdateStandardFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStandardFee")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fee, err := api.svc.UpdateStandardFee(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating standard fee")
	}
	return ctx.JSON(http.StatusOK, fee)
}

func (api *financeApi) destroyStandardFee(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.DeleteStandardFee(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting standard fee")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *financeApi) createStudentFee(ctx echo.Context) error {
	var data finance.NewStudentFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudentFee")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fee, err := api.svc.CreateStudentFee(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student fee")
	}
	return ctx.JSON(http.StatusCreated, fee)
}

func (api *financeApi) queryStudentFees(ctx echo.Context) error {
	filter := new(finance.StudentFeeFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []finance.StudentFee{})
	}

	// students only ever see their own fees
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.HasAnyRole(user.RoleAdmin, user.RoleFaculty) {
		filter.StudentID = ctxUsr.ID
	}

	fees, err := api.svc.QueryStudentFees(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying student fees")
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *financeApi) createPayment(ctx echo.Context) error {
	var data finance.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pmt, err := api.svc.CreatePayment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *financeApi) queryPayments(ctx echo.Context) error {
	filter := new(finance.PaymentFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []finance.Payment{})
	}

	// students only ever see their own payments
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.HasAnyRole(user.RoleAdmin, user.RoleFaculty) {
		filter.StudentID = ctxUsr.ID
	}

	payments, err := api.svc.QueryPayments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *financeApi) downloadReceipt(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	data, doc, err := api.svc.RenderReceipt(ctx.Request().Context(), id, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "rendering receipt")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+data.Filename()+`"`)
	return ctx.Blob(http.StatusOK, "application/pdf", doc)
}

func (api *financeApi) studentReceipts(ctx echo.Context) error {
	studentID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ids, err := api.svc.StudentReceiptIDs(ctx.Request().Context(), studentID, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying student receipts")
	}
	return ctx.JSON(http.StatusOK, StudentReceiptsResponse{StudentID: studentID, ReceiptIDs: ids})
}

func (api *financeApi) summary(ctx echo.Context) error {
	filter := new(finance.SummaryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, finance.Summary{})
	}

	summary, err := api.svc.Summarize(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "summarizing finances")
	}
	return ctx.JSON(http.StatusOK, summary)
}

type StudentReceiptsResponse struct {
	StudentID  int   `json:"student_id"`
	ReceiptIDs []int `json:"receipt_ids"`
}
