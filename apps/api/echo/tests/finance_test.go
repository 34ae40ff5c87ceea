package tests

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"

	echoapi "github.com/tshiala/kampus/apps/api/echo"
	"github.com/tshiala/kampus/core/finance"
	"github.com/tshiala/kampus/core/user"
	testutil "github.com/tshiala/kampus/tests"
)

func Test_financeApi_standardFees(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", []string{user.RoleStudent}, true)

	sci := testutil.CreateInstitute(t, catRepo, "Institute of Science", "sci")
	cs := testutil.CreateCourse(t, catRepo, sci.ID, "Computer Science", "cs101", 3)
	bio := testutil.CreateCourse(t, catRepo, sci.ID, "Biology", "bio", 3)
	sem := testutil.CreateSemester(t, catRepo, cs.ID, "Fall 2025", "semester", 1)
	bioSem := testutil.CreateSemester(t, catRepo, bio.ID, "Fall 2025", "semester", 1)

	newFee := finance.NewStandardFee{CourseID: cs.ID, SemesterID: sem.ID, Name: "Tuition", Amount: 1000}

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/v1/fees/standard",
			body:     marchallObj(t, newFee),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Staff required", method: http.MethodPost, path: "/v1/fees/standard", token: getToken(t, student),
			body:     marchallObj(t, newFee),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", method: http.MethodPost, path: "/v1/fees/standard", token: getToken(t, admin),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"course_id":   "this field is required",
				"semester_id": "this field is required",
				"name":        "this field is required",
				"amount":      "this field is required",
			}),
		},
		{
			name: "semester of another course", method: http.MethodPost, path: "/v1/fees/standard", token: getToken(t, admin),
			body:     marchallObj(t, finance.NewStandardFee{CourseID: cs.ID, SemesterID: bioSem.ID, Name: "Tuition", Amount: 1000}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"semester_id": "the semester does not belong to the specified course"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	var created finance.StandardFee

	t.Run("created", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees/standard", getToken(t, admin), marchallObj(t, newFee))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if created.ID == 0 || created.Amount != newFee.Amount {
			t.Errorf("failed! fee = %+v", created)
		}
	})

	t.Run("duplicate pair", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees/standard", getToken(t, admin), marchallObj(t, newFee))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "a standard fee already exists for this course-semester combination"}),
		}, rec)
	})

	t.Run("query is staff only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/fees/standard", getToken(t, student))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("query by course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/fees/standard?course_id="+strconv.Itoa(cs.ID), getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var respData []finance.StandardFee
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(respData) != 1 || respData[0].ID != created.ID {
			t.Errorf("failed! fees = %+v; want the created fee only", respData)
		}
	})

	t.Run("updated", func(t *testing.T) {
		update := finance.UpdateStandardFee{CourseID: cs.ID, SemesterID: sem.ID, Name: "Tuition", Amount: 1250}
		req, rec := newAuthRequest(http.MethodPut, "/v1/fees/standard/"+strconv.Itoa(created.ID), getToken(t, admin), marchallObj(t, update))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var respData finance.StandardFee
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if respData.Amount != update.Amount {
			t.Errorf("failed! amount = %v; want %v", respData.Amount, update.Amount)
		}
	})

	t.Run("update unknown", func(t *testing.T) {
		update := finance.UpdateStandardFee{CourseID: cs.ID, SemesterID: sem.ID, Name: "Tuition", Amount: 1250}
		req, rec := newAuthRequest(http.MethodPut, "/v1/fees/standard/404", getToken(t, admin), marchallObj(t, update))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "standard fee not found"}),
		}, rec)
	})

	t.Run("destroyed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/fees/standard/"+strconv.Itoa(created.ID), getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}

		req, rec = newAuthRequest(http.MethodDelete, "/v1/fees/standard/"+strconv.Itoa(created.ID), getToken(t, admin))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "standard fee not found"}),
		}, rec)
	})
}

func Test_financeApi_studentFees(t *testing.T) {
	testutil.ResetDB(t, db)

	faculty := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", []string{user.RoleFaculty}, true)
	ada := testutil.CreateUser(t, usrRepo, "Ada", "ada@test.cd", "", []string{user.RoleStudent}, true)
	blaise := testutil.CreateUser(t, usrRepo, "Blaise", "blaise@test.cd", "", []string{user.RoleStudent}, true)

	sci := testutil.CreateInstitute(t, catRepo, "Institute of Science", "sci")
	cs := testutil.CreateCourse(t, catRepo, sci.ID, "Computer Science", "cs101", 3)
	sem := testutil.CreateSemester(t, catRepo, cs.ID, "Fall 2025", "semester", 1)
	testutil.EnrollStudent(t, catRepo, ada.ID, cs.ID)
	testutil.EnrollStudent(t, catRepo, blaise.ID, cs.ID)

	testutil.CreateStandardFee(t, finRepo, cs.ID, sem.ID, "Tuition", 1000)

	amount := 750.0

	tests := []httpTest{
		{
			name: "Staff required", method: http.MethodPost, path: "/v1/fees/student", token: getToken(t, ada),
			body:     marchallObj(t, finance.NewStudentFee{StudentID: ada.ID, CourseID: cs.ID, SemesterID: sem.ID, Amount: &amount}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/fees/student", token: getToken(t, faculty),
			body:     marchallObj(t, finance.NewStudentFee{StudentID: 404, CourseID: cs.ID, SemesterID: sem.ID, Amount: &amount}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name: "not enrolled", method: http.MethodPost, path: "/v1/fees/student", token: getToken(t, faculty),
			body:     marchallObj(t, finance.NewStudentFee{StudentID: faculty.ID, CourseID: cs.ID, SemesterID: sem.ID, Amount: &amount}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "the student is not enrolled in this course"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("created with explicit amount", func(t *testing.T) {
		body := marchallObj(t, finance.NewStudentFee{StudentID: ada.ID, CourseID: cs.ID, SemesterID: sem.ID, Amount: &amount})
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees/student", getToken(t, faculty), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var respData finance.StudentFee
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if respData.Amount != amount {
			t.Errorf("failed! amount = %v; want %v", respData.Amount, amount)
		}
	})

	t.Run("created from standard fee", func(t *testing.T) {
		body := marchallObj(t, finance.NewStudentFee{StudentID: blaise.ID, CourseID: cs.ID, SemesterID: sem.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees/student", getToken(t, faculty), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var respData finance.StudentFee
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if respData.Amount != 1000 {
			t.Errorf("failed! amount = %v; want the standard fee amount 1000", respData.Amount)
		}
	})

	t.Run("staff sees all fees", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/fees/student", getToken(t, faculty))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var respData []finance.StudentFee
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(respData) != 2 {
			t.Errorf("failed! got %d fees; want 2", len(respData))
		}
	})

	t.Run("student only sees own fees", func(t *testing.T) {
		// the student_id filter must not leak another student's fees
		req, rec := newAuthRequest(http.MethodGet, "/v1/fees/student?student_id="+strconv.Itoa(blaise.ID), getToken(t, ada))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var respData []finance.StudentFee
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(respData) != 1 || respData[0].StudentID != ada.ID {
			t.Errorf("failed! fees = %+v; want ada's fee only", respData)
		}
	})
}

func Test_financeApi_payments(t *testing.T) {
	testutil.ResetDB(t, db)

	faculty := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", []string{user.RoleFaculty}, true)
	ada := testutil.CreateUser(t, usrRepo, "Ada", "ada@test.cd", "", []string{user.RoleStudent}, true)
	blaise := testutil.CreateUser(t, usrRepo, "Blaise", "blaise@test.cd", "", []string{user.RoleStudent}, true)

	sci := testutil.CreateInstitute(t, catRepo, "Institute of Science", "sci")
	cs := testutil.CreateCourse(t, catRepo, sci.ID, "Computer Science", "cs101", 3)
	sem := testutil.CreateSemester(t, catRepo, cs.ID, "Fall 2025", "semester", 1)
	testutil.EnrollStudent(t, catRepo, ada.ID, cs.ID)
	testutil.EnrollStudent(t, catRepo, blaise.ID, cs.ID)

	adaFee := testutil.CreateStudentFee(t, finRepo, ada.ID, cs.ID, sem.ID, 1000)
	blaiseFee := testutil.CreateStudentFee(t, finRepo, blaise.ID, cs.ID, sem.ID, 1000)
	testutil.CreatePayment(t, finRepo, blaise.ID, blaiseFee.ID, 300, cs.Code, sem.Name)

	newPmt := finance.NewPayment{StudentID: ada.ID, StudentFeeID: adaFee.ID, Amount: 400, Method: "cash"}

	t.Run("Staff required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", getToken(t, ada), marchallObj(t, newPmt))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("unknown student fee", func(t *testing.T) {
		body := marchallObj(t, finance.NewPayment{StudentID: ada.ID, StudentFeeID: 404, Amount: 400, Method: "cash"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", getToken(t, faculty), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student fee not found"}),
		}, rec)
	})

	t.Run("created with receipt", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", getToken(t, faculty), marchallObj(t, newPmt))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var respData finance.Payment
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if respData.ID == 0 || respData.Amount != newPmt.Amount {
			t.Errorf("failed! payment = %+v", respData)
		}
		if respData.Receipt == nil {
			t.Fatal("failed! payment has no receipt")
		}
		wantNum := finance.BuildReceiptNumber(respData.ID, cs.Code, sem.Name, respData.PaymentDate)
		if respData.Receipt.ReceiptNumber != wantNum {
			t.Errorf("failed! receipt number = %v; want %v", respData.Receipt.ReceiptNumber, wantNum)
		}
	})

	t.Run("staff sees all payments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/payments", getToken(t, faculty))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var respData []finance.Payment
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(respData) != 2 {
			t.Errorf("failed! got %d payments; want 2", len(respData))
		}
	})

	t.Run("student only sees own payments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/payments?student_id="+strconv.Itoa(blaise.ID), getToken(t, ada))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var respData []finance.Payment
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(respData) != 1 || respData[0].StudentID != ada.ID {
			t.Errorf("failed! payments = %+v; want ada's payment only", respData)
		}
	})

	t.Run("duplicate transaction id", func(t *testing.T) {
		pmt := finance.NewPayment{
			StudentID:     ada.ID,
			StudentFeeID:  adaFee.ID,
			Amount:        100,
			Method:        "bank_transfer",
			TransactionID: null.StringFrom("TXN-042"),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", getToken(t, faculty), marchallObj(t, pmt))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusCreated, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/payments", getToken(t, faculty), marchallObj(t, pmt))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "a payment with this transaction id already exists"}),
		}, rec)
	})
}

func Test_financeApi_receipts(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	ada := testutil.CreateUser(t, usrRepo, "Ada", "ada@test.cd", "", []string{user.RoleStudent}, true)
	blaise := testutil.CreateUser(t, usrRepo, "Blaise", "blaise@test.cd", "", []string{user.RoleStudent}, true)

	sci := testutil.CreateInstitute(t, catRepo, "Institute of Science", "sci")
	cs := testutil.CreateCourse(t, catRepo, sci.ID, "Computer Science", "cs101", 3)
	sem := testutil.CreateSemester(t, catRepo, cs.ID, "Fall 2025", "semester", 1)
	testutil.EnrollStudent(t, catRepo, ada.ID, cs.ID)

	fee := testutil.CreateStudentFee(t, finRepo, ada.ID, cs.ID, sem.ID, 1000)
	pmt := testutil.CreatePayment(t, finRepo, ada.ID, fee.ID, 400, cs.Code, sem.Name)

	downloadPath := "/v1/receipts/" + strconv.Itoa(pmt.Receipt.ID) + "/download"

	t.Run("download (owner)", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, downloadPath, getToken(t, ada))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		if ctype := rec.Header().Get(echo.HeaderContentType); ctype != "application/pdf" {
			t.Errorf("failed! content type = %v; want application/pdf", ctype)
		}
		wantDisp := `attachment; filename="receipt-` + pmt.Receipt.ReceiptNumber + `.pdf"`
		if disp := rec.Header().Get(echo.HeaderContentDisposition); disp != wantDisp {
			t.Errorf("failed! content disposition = %v; want %v", disp, wantDisp)
		}
		if !strings.HasPrefix(rec.Body.String(), "%PDF") {
			t.Error("failed! body is not a PDF document")
		}
	})

	t.Run("download (admin)", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, downloadPath, getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
	})

	t.Run("download (another student)", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, downloadPath, getToken(t, blaise))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "not enough permissions to access this receipt"}),
		}, rec)
	})

	t.Run("download unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/receipts/404/download", getToken(t, admin))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "receipt not found"}),
		}, rec)
	})

	t.Run("student receipts (owner)", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/receipts/student/"+strconv.Itoa(ada.ID), getToken(t, ada))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.StudentReceiptsResponse{StudentID: ada.ID, ReceiptIDs: []int{pmt.Receipt.ID}}),
		}, rec)
	})

	t.Run("student receipts (another student)", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/receipts/student/"+strconv.Itoa(ada.ID), getToken(t, blaise))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "not enough permissions to access this receipt"}),
		}, rec)
	})
}

func Test_financeApi_summary(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	ada := testutil.CreateUser(t, usrRepo, "Ada", "ada@test.cd", "", []string{user.RoleStudent}, true)
	blaise := testutil.CreateUser(t, usrRepo, "Blaise", "blaise@test.cd", "", []string{user.RoleStudent}, true)

	sci := testutil.CreateInstitute(t, catRepo, "Institute of Science", "sci")
	cs := testutil.CreateCourse(t, catRepo, sci.ID, "Computer Science", "cs101", 3)
	sem := testutil.CreateSemester(t, catRepo, cs.ID, "Fall 2025", "semester", 1)
	testutil.EnrollStudent(t, catRepo, ada.ID, cs.ID)
	testutil.EnrollStudent(t, catRepo, blaise.ID, cs.ID)

	adaFee := testutil.CreateStudentFee(t, finRepo, ada.ID, cs.ID, sem.ID, 1000)
	blaiseFee := testutil.CreateStudentFee(t, finRepo, blaise.ID, cs.ID, sem.ID, 1200)
	testutil.CreatePayment(t, finRepo, ada.ID, adaFee.ID, 400, cs.Code, sem.Name)
	testutil.CreatePayment(t, finRepo, blaise.ID, blaiseFee.ID, 600, cs.Code, sem.Name)

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/summary",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Staff required", path: "/v1/summary", token: getToken(t, ada),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Get all", path: "/v1/summary", token: getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, finance.Summary{TotalFees: 2200, TotalPaid: 1000, TotalPending: 1200, StudentCount: 2, PaymentCount: 2}),
		},
		{
			name: "by student", path: "/v1/summary?student_id=" + strconv.Itoa(ada.ID), token: getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, finance.Summary{TotalFees: 1000, TotalPaid: 400, TotalPending: 600, StudentCount: 1, PaymentCount: 1}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
