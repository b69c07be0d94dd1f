package testexec

import (
	"testing"

	"github.com/ShayCichocki/bringup/pkg/models"
)

func TestParsePytest_Summary(t *testing.T) {
	output := `============ test session starts ============
collected 16 items

test_app.py::test_index PASSED
test_app.py::test_login FAILED

============ 12 passed, 3 failed, 1 skipped in 4.21s ============`

	r := ParseOutput(output, models.FrameworkPytest)

	if r.Passed != 12 || r.Failed != 3 || r.Skipped != 1 {
		t.Errorf("counts = %d/%d/%d, want 12/3/1", r.Passed, r.Failed, r.Skipped)
	}
	if r.Total != 16 {
		t.Errorf("total = %d, want 16", r.Total)
	}
	if r.Success {
		t.Error("success must be false with failures")
	}
	if len(r.Suites) != 1 || len(r.Suites[0].Tests) != 2 {
		t.Fatalf("suites = %+v, want one suite with two cases", r.Suites)
	}
	if r.Suites[0].Tests[1].Status != models.TestFailed {
		t.Errorf("second case status = %q, want failed", r.Suites[0].Tests[1].Status)
	}
}

func TestParsePytest_AllPassed(t *testing.T) {
	r := ParseOutput("========= 8 passed in 1.02s =========", models.FrameworkPytest)

	if !r.Success || r.Passed != 8 || r.Total != 8 {
		t.Errorf("got %+v, want 8 passed and success", r)
	}
}

func TestParseJest(t *testing.T) {
	output := `PASS  src/app.test.js
FAIL  src/auth.test.js

Tests:       2 failed, 1 skipped, 9 passed, 12 total
Snapshots:   0 total
Time:        3.214 s`

	r := ParseOutput(output, models.FrameworkJest)

	if r.Failed != 2 || r.Skipped != 1 || r.Passed != 9 || r.Total != 12 {
		t.Errorf("counts = %+v", r)
	}
	if r.Success {
		t.Error("success must be false with failures")
	}
	if len(r.Suites) != 2 {
		t.Errorf("suites = %d, want 2", len(r.Suites))
	}
}

func TestParseJest_PassedOnly(t *testing.T) {
	r := ParseOutput("Tests:       9 passed, 9 total", models.FrameworkJest)

	if !r.Success || r.Passed != 9 || r.Total != 9 || r.Failed != 0 {
		t.Errorf("got %+v", r)
	}
}

func TestParseMocha(t *testing.T) {
	output := `  14 passing (230ms)
  2 pending
  3 failing`

	r := ParseOutput(output, models.FrameworkMocha)

	if r.Passed != 14 || r.Failed != 3 || r.Skipped != 2 || r.Total != 19 {
		t.Errorf("got %+v", r)
	}
	if r.Success {
		t.Error("success must be false with failures")
	}
}

func TestParseVitest(t *testing.T) {
	r := ParseOutput(" Tests  2 failed | 10 passed (12)", models.FrameworkVitest)

	if r.Failed != 2 || r.Passed != 10 || r.Total != 12 {
		t.Errorf("got %+v", r)
	}
}

func TestParseUnittest_OK(t *testing.T) {
	output := `....
----------------------------------------------------------------------
Ran 4 tests in 0.012s

OK`

	r := ParseOutput(output, models.FrameworkUnittest)

	if !r.Success || r.Total != 4 || r.Passed != 4 {
		t.Errorf("got %+v", r)
	}
}

func TestParseUnittest_Failures(t *testing.T) {
	output := `FF..E
----------------------------------------------------------------------
Ran 5 tests in 0.034s

FAILED (failures=2, errors=1)`

	r := ParseOutput(output, models.FrameworkUnittest)

	if r.Success {
		t.Error("success must be false")
	}
	if r.Failed != 2 || r.Errors != 1 || r.Passed != 2 || r.Total != 5 {
		t.Errorf("got %+v", r)
	}
}

func TestParseDjango_KeepsFramework(t *testing.T) {
	r := ParseOutput("Ran 3 tests in 0.100s\n\nOK", models.FrameworkDjango)

	if r.Framework != models.FrameworkDjango {
		t.Errorf("framework = %q, want django", r.Framework)
	}
	if !r.Success {
		t.Error("expected success")
	}
}

func TestParseGoTest_Verbose(t *testing.T) {
	output := `=== RUN   TestAdd
--- PASS: TestAdd (0.00s)
=== RUN   TestDivide
--- FAIL: TestDivide (0.00s)
=== RUN   TestSkipMe
--- SKIP: TestSkipMe (0.00s)
FAIL
FAIL	example.com/demo	0.004s`

	r := ParseOutput(output, models.FrameworkGoTest)

	if r.Passed != 1 || r.Failed != 1 || r.Skipped != 1 || r.Total != 3 {
		t.Errorf("got %+v", r)
	}
	if r.Success {
		t.Error("success must be false")
	}
}

func TestParseGoTest_PackageLinesOnly(t *testing.T) {
	r := ParseOutput("ok  \texample.com/demo\t0.012s", models.FrameworkGoTest)

	if !r.Success {
		t.Error("expected success from ok package line")
	}
}

func TestParseCargo(t *testing.T) {
	output := `running 5 tests
test result: ok. 4 passed; 0 failed; 1 ignored; 0 measured; 0 filtered out

running 3 tests
test result: FAILED. 2 passed; 1 failed; 0 ignored; 0 measured; 0 filtered out`

	r := ParseOutput(output, models.FrameworkCargo)

	if r.Passed != 6 || r.Failed != 1 || r.Skipped != 1 || r.Total != 8 {
		t.Errorf("got %+v", r)
	}
	if r.Success {
		t.Error("success must be false")
	}
}

func TestParseGeneric(t *testing.T) {
	r := ParseOutput("7 tests passed, 0 tests failed", models.FrameworkUnknown)

	if r.Passed != 7 || r.Failed != 0 || !r.Success {
		t.Errorf("got %+v", r)
	}

	empty := ParseOutput("nothing useful here", models.FrameworkUnknown)
	if empty.Success {
		t.Error("generic parse with zero passes must not report success")
	}
}
