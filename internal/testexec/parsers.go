package testexec

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// ParseOutput extracts pass/fail counts from raw test output using the
// framework's summary format. Unknown frameworks get a best-effort generic
// parse.
func ParseOutput(output string, framework models.TestFramework) models.TestResult {
	switch framework {
	case models.FrameworkPytest:
		return parsePytest(output)
	case models.FrameworkJest:
		return parseJest(output)
	case models.FrameworkMocha:
		return parseMocha(output)
	case models.FrameworkVitest:
		return parseVitest(output)
	case models.FrameworkUnittest:
		return parseUnittest(output, models.FrameworkUnittest)
	case models.FrameworkDjango:
		// Django runs on unittest underneath.
		return parseUnittest(output, models.FrameworkDjango)
	case models.FrameworkGoTest:
		return parseGoTest(output)
	case models.FrameworkCargo:
		return parseCargo(output)
	default:
		return parseGeneric(output)
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

var (
	pytestSummaryRe = regexp.MustCompile(`(\d+)\s+passed(?:.*?(\d+)\s+failed)?(?:.*?(\d+)\s+skipped)?(?:.*?(\d+)\s+error)?`)
	pytestCaseRe    = regexp.MustCompile(`(?m)^([\w/.]+::[\w_]+)\s+(PASSED|FAILED|SKIPPED|ERROR)`)
)

func parsePytest(output string) models.TestResult {
	r := models.TestResult{Framework: models.FrameworkPytest}

	if m := pytestSummaryRe.FindStringSubmatch(output); m != nil {
		r.Passed = atoi(m[1])
		r.Failed = atoi(m[2])
		r.Skipped = atoi(m[3])
		r.Errors = atoi(m[4])
		r.Total = r.Passed + r.Failed + r.Skipped + r.Errors
		r.Success = r.Failed == 0 && r.Errors == 0
	}

	suite := models.TestSuite{Name: "pytest"}
	for _, m := range pytestCaseRe.FindAllStringSubmatch(output, -1) {
		status := models.TestErrored
		switch m[2] {
		case "PASSED":
			status = models.TestPassed
		case "FAILED":
			status = models.TestFailed
		case "SKIPPED":
			status = models.TestSkipped
		}
		suite.Tests = append(suite.Tests, models.TestCase{Name: m[1], Status: status})
	}
	if len(suite.Tests) > 0 {
		r.Suites = append(r.Suites, suite)
	}

	return r
}

var (
	jestSummaryRe = regexp.MustCompile(`Tests:\s+(?:(\d+)\s+failed,\s*)?(?:(\d+)\s+skipped,\s*)?(?:(\d+)\s+passed,\s*)?(\d+)\s+total`)
	jestSuiteRe   = regexp.MustCompile(`(PASS|FAIL)\s+([^\n]+)`)
)

func parseJest(output string) models.TestResult {
	r := models.TestResult{Framework: models.FrameworkJest}

	if m := jestSummaryRe.FindStringSubmatch(output); m != nil {
		r.Failed = atoi(m[1])
		r.Skipped = atoi(m[2])
		r.Passed = atoi(m[3])
		r.Total = atoi(m[4])
		r.Success = r.Failed == 0
	}

	for _, m := range jestSuiteRe.FindAllStringSubmatch(output, -1) {
		name := strings.TrimSpace(m[2])
		r.Suites = append(r.Suites, models.TestSuite{Name: name, FilePath: name})
	}

	return r
}

var (
	mochaPassingRe = regexp.MustCompile(`(\d+)\s+passing`)
	mochaFailingRe = regexp.MustCompile(`(\d+)\s+failing`)
	mochaPendingRe = regexp.MustCompile(`(\d+)\s+pending`)
)

func parseMocha(output string) models.TestResult {
	r := models.TestResult{Framework: models.FrameworkMocha}

	if m := mochaPassingRe.FindStringSubmatch(output); m != nil {
		r.Passed = atoi(m[1])
	}
	if m := mochaFailingRe.FindStringSubmatch(output); m != nil {
		r.Failed = atoi(m[1])
	}
	if m := mochaPendingRe.FindStringSubmatch(output); m != nil {
		r.Skipped = atoi(m[1])
	}
	r.Total = r.Passed + r.Failed + r.Skipped
	r.Success = r.Failed == 0

	return r
}

var (
	vitestSummaryRe = regexp.MustCompile(`Tests\s+(\d+)\s+failed\s*\|?\s*(\d+)\s+passed`)
	vitestPassRe    = regexp.MustCompile(`(\d+)\s+passed`)
	vitestFailRe    = regexp.MustCompile(`(\d+)\s+failed`)
)

func parseVitest(output string) models.TestResult {
	r := models.TestResult{Framework: models.FrameworkVitest}

	if m := vitestSummaryRe.FindStringSubmatch(output); m != nil {
		r.Failed = atoi(m[1])
		r.Passed = atoi(m[2])
	} else {
		if m := vitestPassRe.FindStringSubmatch(output); m != nil {
			r.Passed = atoi(m[1])
		}
		if m := vitestFailRe.FindStringSubmatch(output); m != nil {
			r.Failed = atoi(m[1])
		}
	}
	r.Total = r.Passed + r.Failed
	r.Success = r.Failed == 0

	return r
}

var (
	unittestRanRe  = regexp.MustCompile(`Ran (\d+) tests? in ([\d.]+)s`)
	unittestOKRe   = regexp.MustCompile(`(?m)^OK$`)
	unittestFailRe = regexp.MustCompile(`FAILED \((?:failures=(\d+))?(?:,?\s*errors=(\d+))?`)
)

func parseUnittest(output string, framework models.TestFramework) models.TestResult {
	r := models.TestResult{Framework: framework}

	if m := unittestRanRe.FindStringSubmatch(output); m != nil {
		r.Total = atoi(m[1])
	}

	if unittestOKRe.MatchString(output) {
		r.Success = true
		r.Passed = r.Total
		return r
	}

	if m := unittestFailRe.FindStringSubmatch(output); m != nil {
		r.Failed = atoi(m[1])
		r.Errors = atoi(m[2])
		r.Passed = r.Total - r.Failed - r.Errors
	}

	return r
}

var (
	goCaseRe = regexp.MustCompile(`(?m)^\s*--- (PASS|FAIL|SKIP): ([\w/]+)`)
	goFailRe = regexp.MustCompile(`(?m)^FAIL\b`)
	goOKRe   = regexp.MustCompile(`(?m)^ok\s+`)
)

func parseGoTest(output string) models.TestResult {
	r := models.TestResult{Framework: models.FrameworkGoTest}

	for _, m := range goCaseRe.FindAllStringSubmatch(output, -1) {
		switch m[1] {
		case "PASS":
			r.Passed++
		case "FAIL":
			r.Failed++
		case "SKIP":
			r.Skipped++
		}
	}
	r.Total = r.Passed + r.Failed + r.Skipped
	// Without -v there are no per-test lines; fall back to package lines.
	r.Success = !goFailRe.MatchString(output) && (r.Total > 0 || goOKRe.MatchString(output))

	return r
}

var cargoResultRe = regexp.MustCompile(`test result: (ok|FAILED)\. (\d+) passed; (\d+) failed; (\d+) ignored`)

func parseCargo(output string) models.TestResult {
	r := models.TestResult{Framework: models.FrameworkCargo}

	matches := cargoResultRe.FindAllStringSubmatch(output, -1)
	// One result line per test binary; sum them.
	allOK := len(matches) > 0
	for _, m := range matches {
		if m[1] != "ok" {
			allOK = false
		}
		r.Passed += atoi(m[2])
		r.Failed += atoi(m[3])
		r.Skipped += atoi(m[4])
	}
	r.Total = r.Passed + r.Failed + r.Skipped
	r.Success = allOK && r.Failed == 0

	return r
}

var (
	genericPassRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s+(?:tests?\s+)?pass(?:ed|ing)?`),
		regexp.MustCompile(`(?i)passed:\s*(\d+)`),
	}
	genericFailRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s+(?:tests?\s+)?fail(?:ed|ing)?`),
		regexp.MustCompile(`(?i)failed:\s*(\d+)`),
	}
)

func parseGeneric(output string) models.TestResult {
	r := models.TestResult{Framework: models.FrameworkUnknown}

	for _, re := range genericPassRes {
		if m := re.FindStringSubmatch(output); m != nil {
			r.Passed = atoi(m[1])
			break
		}
	}
	for _, re := range genericFailRes {
		if m := re.FindStringSubmatch(output); m != nil {
			r.Failed = atoi(m[1])
			break
		}
	}
	r.Total = r.Passed + r.Failed
	r.Success = r.Failed == 0 && r.Passed > 0

	return r
}
