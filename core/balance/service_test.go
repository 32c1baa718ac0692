package balance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/balance"
	"github.com/rawdahq/rawda/core/billing"
	"github.com/rawdahq/rawda/core/course"
	"github.com/rawdahq/rawda/core/staff"
	"github.com/rawdahq/rawda/core/student"
	dummydb "github.com/rawdahq/rawda/storage/database/dummy"
)

type testEnv struct {
	svc         *balance.Service
	billingSvc  *billing.Service
	studentRepo student.Repository
	staffRepo   staff.Repository
	courseRepo  course.Repository
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}

	conf := &core.Config{}
	conf.Billing.MonthlyTuition = decimal.RequireFromString("300.00")

	invoiceRepo := dummydb.NewInvoiceRepository(db)
	staffRepo := dummydb.NewStaffRepository(db)
	return &testEnv{
		svc:         balance.NewService(invoiceRepo, staffRepo),
		billingSvc:  billing.NewService(nil, invoiceRepo, dummydb.NewDirectory(db), nil, nil, conf),
		studentRepo: dummydb.NewStudentRepository(db),
		staffRepo:   staffRepo,
		courseRepo:  dummydb.NewCourseRepository(db),
	}
}

func (env *testEnv) addStudent(t *testing.T, name string) student.Student {
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

func (env *testEnv) addStaff(t *testing.T, name, salary string, typ staff.Type, active bool) staff.Staff {
	t.Helper()
	stf, err := env.staffRepo.CreateStaff(context.Background(), staff.Staff{
		FirstName: name,
		LastName:  "Doe",
		Salary:    decimal.RequireFromString(salary),
		Type:      typ,
		Active:    active,
	})
	if err != nil {
		t.Fatalf("creating staff member: %v", err)
	}
	return stf
}

func (env *testEnv) addEnrollment(t *testing.T, name, title, price string) {
	t.Helper()
	ctx := context.Background()

	crs, err := env.courseRepo.CreateCourse(ctx, course.Course{
		Title:        title,
		MonthlyPrice: decimal.RequireFromString(price),
		Active:       true,
	})
	if err != nil {
		t.Fatalf("creating course: %v", err)
	}
	std, err := env.courseRepo.CreateExtraStudent(ctx, course.ExtraStudent{FirstName: name, LastName: "Doe"})
	if err != nil {
		t.Fatalf("creating extra student: %v", err)
	}
	if _, err = env.courseRepo.CreateEnrollment(ctx, course.Enrollment{
		StudentID: std.ID,
		CourseID:  crs.ID,
		Status:    course.EnrollmentActive,
	}); err != nil {
		t.Fatalf("creating enrollment: %v", err)
	}
}

// payStudent settles the student's single invoice on the given date.
func (env *testEnv) payStudent(t *testing.T, studentID string, paidDate time.Time) {
	t.Helper()
	ctx := context.Background()

	invs, err := env.billingSvc.Filter(ctx, billing.QueryFilter{StudentID: studentID})
	if err != nil || len(invs) != 1 {
		t.Fatalf("expected 1 invoice for %s; got %d (err %v)", studentID, len(invs), err)
	}
	if _, err = env.billingSvc.MarkPaid(ctx, invs[0].ID, paidDate, ""); err != nil {
		t.Fatalf("MarkPaid() failed: %v", err)
	}
}

// March 2024: two regular students billed at 300.00, one pays within the
// month; one extra enrollment at 150.00, paid within the month; one active
// educator earning 400.00 plus an inactive one that must not count.
func seedMarch2024(t *testing.T, env *testEnv) {
	ctx := context.Background()

	aya := env.addStudent(t, "Aya")
	env.addStudent(t, "Bilal")
	env.addEnrollment(t, "Dina", "English", "150.00")
	env.addStaff(t, "Maria", "400.00", staff.TypeEducator, true)
	env.addStaff(t, "Nadia", "999.00", staff.TypeAssistant, false)

	if _, err := env.billingSvc.GenerateForPeriod(ctx, billing.PopulationRegular, 2024, 3); err != nil {
		t.Fatalf("generating regular invoices: %v", err)
	}
	if _, err := env.billingSvc.GenerateForPeriod(ctx, billing.PopulationExtra, 2024, 3); err != nil {
		t.Fatalf("generating extra invoices: %v", err)
	}

	env.payStudent(t, aya.ID, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC))

	extras, err := env.billingSvc.Filter(ctx, billing.QueryFilter{Population: billing.PopulationExtra})
	if err != nil || len(extras) != 1 {
		t.Fatalf("expected 1 extra invoice; got %d (err %v)", len(extras), err)
	}
	if _, err = env.billingSvc.MarkPaid(ctx, extras[0].ID, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), ""); err != nil {
		t.Fatalf("paying extra invoice: %v", err)
	}
}

func TestMonthlyMarch2024(t *testing.T) {
	env := setup(t)
	seedMarch2024(t, env)

	rpt, err := env.svc.Monthly(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("Monthly() failed: %v", err)
	}

	assertAmount := func(name string, got decimal.Decimal, want string) {
		t.Helper()
		if got.StringFixed(2) != want {
			t.Errorf("%s = %s; want %s", name, got.StringFixed(2), want)
		}
	}

	if rpt.MonthName != "March" {
		t.Errorf("month name = %q; want March", rpt.MonthName)
	}
	assertAmount("regular income", rpt.RegularIncome, "300.00")
	assertAmount("extra income", rpt.ExtraIncome, "150.00")
	assertAmount("total income", rpt.TotalIncome, "450.00")
	assertAmount("total payroll", rpt.TotalPayroll, "400.00")
	assertAmount("net income", rpt.NetIncome, "50.00")

	// Bilal's unpaid 300.00 is provisional
	assertAmount("provisional regular", rpt.Provisional.Regular, "300.00")
	assertAmount("provisional total", rpt.Provisional.Total, "300.00")
	if rpt.Provisional.RegularCount != 1 || rpt.Provisional.ExtraCount != 0 {
		t.Errorf("provisional counts = %d/%d; want 1/0", rpt.Provisional.RegularCount, rpt.Provisional.ExtraCount)
	}

	// breakdowns: regular keyed by bill type, extra by course title,
	// payroll by staff type (inactive staff excluded)
	assertAmount("regular by TUITION", rpt.RegularBreakdown.ByKey["TUITION"], "300.00")
	assertAmount("extra by English", rpt.ExtraBreakdown.ByKey["English"], "150.00")
	assertAmount("payroll by EDUCATOR", rpt.PayrollBreakdown.ByType["EDUCATOR"], "400.00")
	if rpt.PayrollBreakdown.Staff != 1 || rpt.PayrollBreakdown.Counts["EDUCATOR"] != 1 {
		t.Errorf("payroll counts = %v (staff %d); want 1 EDUCATOR", rpt.PayrollBreakdown.Counts, rpt.PayrollBreakdown.Staff)
	}
}

func TestMonthlyExcludesPaymentsOutsideMonth(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	aya := env.addStudent(t, "Aya")
	if _, err := env.billingSvc.GenerateForPeriod(ctx, billing.PopulationRegular, 2024, 3); err != nil {
		t.Fatalf("generating invoices: %v", err)
	}
	// March invoice settled in April counts as April income
	env.payStudent(t, aya.ID, time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC))

	march, err := env.svc.Monthly(ctx, 2024, 3)
	if err != nil {
		t.Fatalf("Monthly(3) failed: %v", err)
	}
	if !march.RegularIncome.IsZero() {
		t.Errorf("march income = %s; want 0", march.RegularIncome)
	}

	april, err := env.svc.Monthly(ctx, 2024, 4)
	if err != nil {
		t.Fatalf("Monthly(4) failed: %v", err)
	}
	if april.RegularIncome.StringFixed(2) != "300.00" {
		t.Errorf("april income = %s; want 300.00", april.RegularIncome.StringFixed(2))
	}
}

func TestMonthlyIncludesMonthEndPayments(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	aya := env.addStudent(t, "Aya")
	if _, err := env.billingSvc.GenerateForPeriod(ctx, billing.PopulationRegular, 2024, 3); err != nil {
		t.Fatalf("generating invoices: %v", err)
	}
	// settled midday on the last day of the month; the time-of-day must not
	// push the payment past the month bound
	env.payStudent(t, aya.ID, time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC))

	march, err := env.svc.Monthly(ctx, 2024, 3)
	if err != nil {
		t.Fatalf("Monthly(3) failed: %v", err)
	}
	if march.RegularIncome.StringFixed(2) != "300.00" {
		t.Errorf("march income = %s; want 300.00", march.RegularIncome.StringFixed(2))
	}

	april, err := env.svc.Monthly(ctx, 2024, 4)
	if err != nil {
		t.Fatalf("Monthly(4) failed: %v", err)
	}
	if !april.RegularIncome.IsZero() {
		t.Errorf("april income = %s; want 0", april.RegularIncome)
	}
}

func TestMonthlyValidation(t *testing.T) {
	env := setup(t)

	for _, month := range []int{0, 13, -2} {
		if _, err := env.svc.Monthly(context.Background(), 2024, month); err == nil {
			t.Errorf("Monthly(2024, %d) expected error", month)
		}
	}
}

func TestMonthlyAdditivity(t *testing.T) {
	env := setup(t)
	seedMarch2024(t, env)

	rpt, err := env.svc.Monthly(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("Monthly() failed: %v", err)
	}

	if want := rpt.RegularIncome.Add(rpt.ExtraIncome); !rpt.TotalIncome.Equal(want) {
		t.Errorf("total income %s != regular+extra %s", rpt.TotalIncome, want)
	}
	if want := rpt.TotalIncome.Sub(rpt.TotalPayroll); !rpt.NetIncome.Equal(want) {
		t.Errorf("net income %s != income-payroll %s", rpt.NetIncome, want)
	}
	if !rpt.RegularBreakdown.Total.Equal(rpt.RegularIncome) {
		t.Errorf("regular breakdown total %s != regular income %s", rpt.RegularBreakdown.Total, rpt.RegularIncome)
	}
	if !rpt.PayrollBreakdown.Total.Equal(rpt.TotalPayroll) {
		t.Errorf("payroll breakdown total %s != total payroll %s", rpt.PayrollBreakdown.Total, rpt.TotalPayroll)
	}
}

func TestYearlyConsistency(t *testing.T) {
	env := setup(t)
	seedMarch2024(t, env)

	yr, err := env.svc.Yearly(context.Background(), 2024)
	if err != nil {
		t.Fatalf("Yearly() failed: %v", err)
	}
	if len(yr.Months) != 12 {
		t.Fatalf("got %d monthly reports; want 12", len(yr.Months))
	}

	income, payroll := decimal.Zero, decimal.Zero
	for _, rpt := range yr.Months {
		income = income.Add(rpt.TotalIncome)
		payroll = payroll.Add(rpt.TotalPayroll)
	}
	if !yr.TotalIncome.Equal(income) {
		t.Errorf("yearly income %s != sum of months %s", yr.TotalIncome, income)
	}
	if !yr.TotalPayroll.Equal(payroll) {
		t.Errorf("yearly payroll %s != sum of months %s", yr.TotalPayroll, payroll)
	}
	if want := yr.TotalIncome.Sub(yr.TotalPayroll); !yr.NetIncome.Equal(want) {
		t.Errorf("yearly net %s != income-payroll %s", yr.NetIncome, want)
	}

	// all collected income sits in March
	if got := yr.Months[2].TotalIncome.StringFixed(2); got != "450.00" {
		t.Errorf("march income = %s; want 450.00", got)
	}

	if _, err = env.svc.Yearly(context.Background(), 0); err == nil {
		t.Error("Yearly(0) expected error")
	}
}

func TestPending(t *testing.T) {
	env := setup(t)
	seedMarch2024(t, env)

	// push the unpaid invoice to OVERDUE; it must still count as pending
	if _, err := env.billingSvc.SweepOverdue(context.Background(), time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("SweepOverdue() failed: %v", err)
	}

	rpt, err := env.svc.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending() failed: %v", err)
	}
	if rpt.Regular.StringFixed(2) != "300.00" {
		t.Errorf("pending regular = %s; want 300.00", rpt.Regular.StringFixed(2))
	}
	if !rpt.Extra.IsZero() {
		t.Errorf("pending extra = %s; want 0", rpt.Extra)
	}
	if rpt.RegularCount != 1 || rpt.ExtraCount != 0 {
		t.Errorf("pending counts = %d/%d; want 1/0", rpt.RegularCount, rpt.ExtraCount)
	}
	if !rpt.Total.Equal(rpt.Regular.Add(rpt.Extra)) {
		t.Errorf("pending total %s != regular+extra", rpt.Total)
	}
}
