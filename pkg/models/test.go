package models

import "time"

// TestFramework identifies a supported test framework.
type TestFramework string

const (
	// FrameworkPytest is Python pytest.
	FrameworkPytest TestFramework = "pytest"
	// FrameworkUnittest is Python's stdlib unittest.
	FrameworkUnittest TestFramework = "unittest"
	// FrameworkJest is JavaScript Jest.
	FrameworkJest TestFramework = "jest"
	// FrameworkMocha is JavaScript Mocha.
	FrameworkMocha TestFramework = "mocha"
	// FrameworkVitest is JavaScript Vitest.
	FrameworkVitest TestFramework = "vitest"
	// FrameworkDjango is Django's manage.py test runner.
	FrameworkDjango TestFramework = "django"
	// FrameworkGoTest is the Go toolchain test runner.
	FrameworkGoTest TestFramework = "gotest"
	// FrameworkCargo is the Rust cargo test runner.
	FrameworkCargo TestFramework = "cargo"
	// FrameworkUnknown means no framework could be detected.
	FrameworkUnknown TestFramework = "unknown"
)

// Valid returns true if the framework is a known value.
func (f TestFramework) Valid() bool {
	switch f {
	case FrameworkPytest, FrameworkUnittest, FrameworkJest, FrameworkMocha,
		FrameworkVitest, FrameworkDjango, FrameworkGoTest, FrameworkCargo,
		FrameworkUnknown:
		return true
	default:
		return false
	}
}

// TestStatus is the outcome of a single test case.
type TestStatus string

const (
	// TestPassed means the test passed.
	TestPassed TestStatus = "passed"
	// TestFailed means the test failed an assertion.
	TestFailed TestStatus = "failed"
	// TestSkipped means the test was skipped.
	TestSkipped TestStatus = "skipped"
	// TestErrored means the test raised outside its assertions.
	TestErrored TestStatus = "error"
)

// TestCase is one test's parsed result.
type TestCase struct {
	// Name is the framework-reported test identifier.
	Name string `json:"name"`
	// Status is the test outcome.
	Status TestStatus `json:"status"`
	// FilePath is the test's source file when reported.
	FilePath string `json:"file_path,omitempty"`
	// ErrorMessage is the failure message when the test did not pass.
	ErrorMessage string `json:"error_message,omitempty"`
}

// TestSuite groups test cases reported under one suite or file.
type TestSuite struct {
	// Name is the suite identifier.
	Name string `json:"name"`
	// FilePath is the suite's source file when reported.
	FilePath string `json:"file_path,omitempty"`
	// Tests are the individual case results.
	Tests []TestCase `json:"tests,omitempty"`
}

// TestResult is the normalized outcome of one test run.
type TestResult struct {
	// Framework is the detected (or forced) test framework.
	Framework TestFramework `json:"framework"`
	// Success is true when the run exited zero and no failures parsed.
	Success bool `json:"success"`
	// Total is the number of tests the framework reported.
	Total int `json:"total"`
	// Passed counts passing tests.
	Passed int `json:"passed"`
	// Failed counts failing tests.
	Failed int `json:"failed"`
	// Skipped counts skipped tests.
	Skipped int `json:"skipped"`
	// Errors counts tests that errored outside assertions.
	Errors int `json:"errors"`
	// Duration is the wall-clock test time.
	Duration time.Duration `json:"duration"`
	// Suites is the per-suite breakdown when the output allowed one.
	Suites []TestSuite `json:"suites,omitempty"`
	// RawOutput is the captured test output, size-capped.
	RawOutput string `json:"raw_output,omitempty"`
	// Command is the test command that ran.
	Command string `json:"command,omitempty"`
	// ExitCode is the test process exit code.
	ExitCode int `json:"exit_code"`
}
