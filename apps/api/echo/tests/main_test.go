package tests

import (
	"io"
	"log"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/tshiala/kampus/apps/api/echo"
	"github.com/tshiala/kampus/core"
	"github.com/tshiala/kampus/core/catalog"
	"github.com/tshiala/kampus/core/finance"
	"github.com/tshiala/kampus/core/user"
	emailsvc "github.com/tshiala/kampus/services/email"
	logsvc "github.com/tshiala/kampus/services/logger"
	pdfsvc "github.com/tshiala/kampus/services/pdf"
	dummydb "github.com/tshiala/kampus/storage/database/dummy"
)

var (
	conf    *core.Config
	db      *dummydb.DB
	app     *echoapi.Server
	usrRepo user.Repository
	catRepo catalog.Repository
	finRepo finance.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	conf = core.NewTestConfig()
	conf.Debug = false // render error responses the way production does

	// set up DB & repos
	var err error
	db, err = dummydb.Open()
	if err != nil {
		log.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	catRepo = dummydb.NewCatalogRepository(db)
	finRepo = dummydb.NewFinanceRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	catSvc := catalog.NewService(catRepo, usrSvc)

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	finSvc := finance.NewService(conf, finRepo, catSvc, usrSvc, pdfsvc.NewReceiptRenderer(), mailSvc, logger)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up server
	app = echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			CatalogSvc:     catSvc,
			FinanceSvc:     finSvc,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
