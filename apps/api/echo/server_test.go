package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/rawdahq/rawda/apps/api/echo"
	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/balance"
	"github.com/rawdahq/rawda/core/billing"
	"github.com/rawdahq/rawda/core/course"
	"github.com/rawdahq/rawda/core/staff"
	"github.com/rawdahq/rawda/core/student"
	dummydb "github.com/rawdahq/rawda/storage/database/dummy"
)

// well-formed v4 UUID that matches nothing in the store
const unknownID = "00000000-0000-4000-8000-000000000000"

type testEnv struct {
	app         *echoapi.Server
	billingSvc  *billing.Service
	studentRepo student.Repository
}

type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Log(msg) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Log(msg) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Log(msg) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Log(msg) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatal(msg) }

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}

	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Billing.MonthlyTuition = decimal.RequireFromString("300.00")

	invoiceRepo := dummydb.NewInvoiceRepository(db)
	staffRepo := dummydb.NewStaffRepository(db)
	studentRepo := dummydb.NewStudentRepository(db)
	billingSvc := billing.NewService(nil, invoiceRepo, dummydb.NewDirectory(db), nil, testLogger{t}, conf)

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	return &testEnv{
		app: echoapi.NewServer(echoapi.ServerDeps{
			Conf:       conf,
			Logger:     testLogger{t},
			BillingSvc: billingSvc,
			BalanceSvc: balance.NewService(invoiceRepo, staffRepo),
			StudentSvc: student.NewService(studentRepo),
			StaffSvc:   staff.NewService(staffRepo),
			CourseSvc:  course.NewService(dummydb.NewCourseRepository(db)),
			Validate:   validate,
			Translator: translator,
		}),
		billingSvc:  billingSvc,
		studentRepo: studentRepo,
	}
}

func (env *testEnv) addActiveStudent(t *testing.T, name string) student.Student {
	t.Helper()
	std, err := env.studentRepo.CreateStudent(context.Background(), student.Student{
		FirstName: name,
		LastName:  "Doe",
		Status:    student.StatusActive,
	})
	if err != nil {
		t.Fatalf("creating student: %v", err)
	}
	return std
}

func (env *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	env := setup(t)
	env.addActiveStudent(t, "Aya")

	rec := env.do(http.MethodPost, "/v1/billing/invoices/generate", map[string]interface{}{
		"population": "regular", "year": 2024, "month": 3,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp echoapi.GenerateResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 1, resp.Created)

	// rerun is a no-op
	rec = env.do(http.MethodPost, "/v1/billing/invoices/generate", map[string]interface{}{
		"population": "regular", "year": 2024, "month": 3,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Equal(t, 0, resp.Created)
}

func TestGenerateEndpointValidation(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing month", map[string]interface{}{"population": "regular", "year": 2024}},
		{"missing population", map[string]interface{}{"year": 2024, "month": 3}},
		{"unknown population", map[string]interface{}{"population": "aliens", "year": 2024, "month": 3}},
		{"month out of range", map[string]interface{}{"population": "regular", "year": 2024, "month": 13}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/v1/billing/invoices/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestInvoiceNotFound(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/v1/billing/invoices/"+unknownID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "not found"}`, rec.Body.String())

	// ids that cannot be UUIDs are rejected before the store sees them
	rec = env.do(http.MethodGet, "/v1/billing/invoices/deadbeef", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/v1/billing/invoices/deadbeef/pay", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/v1/billing/invoices/deadbeef/partial", map[string]interface{}{"amount": "10.00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayFlow(t *testing.T) {
	env := setup(t)
	std := env.addActiveStudent(t, "Aya")

	rec := env.do(http.MethodPost, "/v1/billing/invoices/generate", map[string]interface{}{
		"population": "regular", "year": 2024, "month": 3,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/v1/billing/invoices?student="+std.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var invs []billing.Invoice
	decodeBody(t, rec, &invs)
	if !assert.Len(t, invs, 1) {
		return
	}

	rec = env.do(http.MethodPost, "/v1/billing/invoices/"+invs[0].ID+"/pay", map[string]interface{}{
		"paid_date": "2024-03-10",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	var paid billing.Invoice
	decodeBody(t, rec, &paid)
	assert.Equal(t, billing.StatusPaid, paid.Status)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), paid.PaidDate)

	// paying again is rejected
	rec = env.do(http.MethodPost, "/v1/billing/invoices/"+invs[0].ID+"/pay", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPartialPay(t *testing.T) {
	env := setup(t)
	std := env.addActiveStudent(t, "Aya")
	ctx := context.Background()

	if _, err := env.billingSvc.GenerateForPeriod(ctx, billing.PopulationRegular, 2024, 3); err != nil {
		t.Fatalf("generating invoices: %v", err)
	}
	invs, _ := env.billingSvc.Filter(ctx, billing.QueryFilter{StudentID: std.ID})

	rec := env.do(http.MethodPost, "/v1/billing/invoices/"+invs[0].ID+"/partial", map[string]interface{}{
		"amount": "120.00",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	var inv billing.Invoice
	decodeBody(t, rec, &inv)
	assert.Equal(t, billing.StatusPartial, inv.Status)
	assert.Equal(t, "120.00", inv.Amount.StringFixed(2))

	// unparseable and non-positive amounts are rejected
	for _, amount := range []string{"lol", "-5"} {
		rec = env.do(http.MethodPost, "/v1/billing/invoices/"+invs[0].ID+"/partial", map[string]interface{}{
			"amount": amount,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount %q", amount)
	}
}

func TestSingleInvoice(t *testing.T) {
	env := setup(t)
	std := env.addActiveStudent(t, "Aya")

	rec := env.do(http.MethodPost, "/v1/billing/invoices", map[string]interface{}{
		"population": "regular",
		"student_id": std.ID,
		"due_date":   "2024-03-15",
		"notes":      "Field trip",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var inv billing.Invoice
	decodeBody(t, rec, &inv)
	assert.Equal(t, billing.OriginManual, inv.Origin)
	assert.Equal(t, "Field trip", inv.Notes)
	assert.Equal(t, billing.StatusUnpaid, inv.Status)

	// unknown student is a 404
	rec = env.do(http.MethodPost, "/v1/billing/invoices", map[string]interface{}{
		"population": "regular",
		"student_id": unknownID,
		"due_date":   "2024-03-15",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// malformed student id is a 400
	rec = env.do(http.MethodPost, "/v1/billing/invoices", map[string]interface{}{
		"population": "regular",
		"student_id": "deadbeef",
		"due_date":   "2024-03-15",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// extra-course bills need a course
	rec = env.do(http.MethodPost, "/v1/billing/invoices", map[string]interface{}{
		"population": "extra_course",
		"student_id": std.ID,
		"due_date":   "2024-03-15",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unparseable due date is a 400
	rec = env.do(http.MethodPost, "/v1/billing/invoices", map[string]interface{}{
		"population": "regular",
		"student_id": std.ID,
		"due_date":   "15/03/2024",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoiceQueryBinding(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/v1/billing/invoices?status=UNPAID,PAID", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/v1/billing/invoices?status=lol", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/v1/billing/invoices?population=aliens", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/v1/billing/invoices?year=lol", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/v1/billing/invoices?student=not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSweepEndpoint(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodPost, "/v1/billing/invoices/sweep", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp echoapi.SweepResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 0, resp.Swept)
}

func TestBalanceEndpoints(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/v1/balance/monthly?year=2024&month=3", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var rpt balance.Report
	decodeBody(t, rec, &rpt)
	assert.Equal(t, 2024, rpt.Year)
	assert.Equal(t, "March", rpt.MonthName)

	rec = env.do(http.MethodGet, "/v1/balance/monthly?year=2024&month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/v1/balance/pending", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStudentEndpoints(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodPost, "/v1/students", map[string]interface{}{
		"first_name":     "Aya",
		"last_name":      "Doe",
		"birth_date":     "2020-05-14",
		"guardian_name":  "Omar Doe",
		"guardian_phone": "+212600000000",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var std student.Student
	decodeBody(t, rec, &std)
	assert.Equal(t, student.StatusActive, std.Status)

	// missing required fields come back as field errors
	rec = env.do(http.MethodPost, "/v1/students", map[string]interface{}{"first_name": "Aya"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fldErrs map[string]string
	decodeBody(t, rec, &fldErrs)
	assert.Contains(t, fldErrs, "last_name")

	rec = env.do(http.MethodGet, "/v1/students/"+std.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/v1/students/"+unknownID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/v1/students/deadbeef", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseAndEnrollmentEndpoints(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodPost, "/v1/courses", map[string]interface{}{
		"title": "English", "monthly_price": "150.00",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var crs course.Course
	decodeBody(t, rec, &crs)

	rec = env.do(http.MethodPost, "/v1/extra-students", map[string]interface{}{
		"first_name": "Dina", "last_name": "Doe",
		"guardian_name": "Omar Doe", "guardian_phone": "+212600000000",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var std course.ExtraStudent
	decodeBody(t, rec, &std)

	rec = env.do(http.MethodPost, "/v1/enrollments", map[string]interface{}{
		"student_id": std.ID, "course_id": crs.ID,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var enr course.Enrollment
	decodeBody(t, rec, &enr)
	assert.Equal(t, course.EnrollmentActive, enr.Status)

	// enrolling against an unknown course is a 404
	rec = env.do(http.MethodPost, "/v1/enrollments", map[string]interface{}{
		"student_id": std.ID, "course_id": unknownID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// a malformed course id never reaches the store
	rec = env.do(http.MethodPost, "/v1/enrollments", map[string]interface{}{
		"student_id": std.ID, "course_id": "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// generated extra invoices pick up the course price
	rec = env.do(http.MethodPost, "/v1/billing/invoices/generate", map[string]interface{}{
		"population": "extra_course", "year": 2024, "month": 3,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp echoapi.GenerateResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 1, resp.Created)
}
