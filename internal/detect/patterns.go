package detect

import (
	"regexp"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// categoryPatterns pairs one category with its line patterns. The table is
// ordered: the first category whose pattern matches a line wins, so more
// specific categories must come before broader ones.
type categoryPatterns struct {
	category models.ErrorCategory
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

var errorPatterns = []categoryPatterns{
	{models.CategorySyntax, compileAll(
		`SyntaxError:`,
		`IndentationError:`,
		`TabError:`,
		`Unexpected token`,
		`Parsing error`,
		`Invalid syntax`,
	)},
	{models.CategoryRuntime, compileAll(
		`RuntimeError:`,
		`UnhandledPromiseRejection`,
		`Uncaught Error:`,
		`at Object\.<anonymous>`,
		`RangeError:`,
	)},
	{models.CategoryDependency, compileAll(
		`npm ERR! missing:`,
		`npm ERR! peer dep`,
		`Could not resolve dependencies`,
		`ERESOLVE unable to resolve`,
		`Package .* not found`,
		`No matching distribution found`,
		`pip install`,
	)},
	{models.CategoryImport, compileAll(
		`ModuleNotFoundError:`,
		`ImportError:`,
		`Cannot find module`,
		`Module not found:`,
		`No module named`,
	)},
	{models.CategoryType, compileAll(
		`TypeError:`,
		`Expected .* but got`,
		`Type '.*' is not assignable`,
		`is not a function`,
	)},
	{models.CategoryPermission, compileAll(
		`Permission denied`,
		`EACCES:`,
		`PermissionError:`,
		`Access denied`,
	)},
	{models.CategoryNetwork, compileAll(
		`ECONNREFUSED`,
		`ENOTFOUND`,
		`Network error`,
		`Connection refused`,
		`ConnectionError:`,
	)},
	{models.CategoryFileNotFound, compileAll(
		`ENOENT:`,
		`FileNotFoundError:`,
		`No such file or directory`,
		`Cannot find path`,
	)},
	{models.CategoryConfiguration, compileAll(
		`Configuration error`,
		`Invalid configuration`,
		`Missing required`,
		`\.env.*not found`,
		`Environment variable .* not set`,
	)},
	{models.CategoryTimeout, compileAll(
		`Timeout`,
		`ETIMEDOUT`,
		`TimeoutError:`,
		`Task timed out`,
	)},
	{models.CategoryMemory, compileAll(
		`OutOfMemory`,
		`MemoryError:`,
		`heap out of memory`,
		`JavaScript heap`,
		`ENOMEM`,
	)},
	{models.CategoryPortInUse, compileAll(
		`EADDRINUSE:`,
		`Address already in use`,
		`port.*already in use`,
		`bind.*address already in use`,
	)},
	{models.CategoryTestFailure, compileAll(
		`FAILED`,
		`AssertionError:`,
		`test.*failed`,
		`\d+ failing`,
		`pytest.*failed`,
	)},
	{models.CategorySwiftCompilation, compileAll(
		`error:.*\.swift:\d+:\d+:`,
		`cannot find .* in scope`,
		`type .* has no member`,
		`missing argument for parameter`,
		`cannot convert value of type`,
		`ambiguous use of`,
		`value of type .* has no member`,
		`expected .* in .* declaration`,
		`consecutive declarations on a line`,
		`use of undeclared type`,
		`cannot assign to property`,
		`initializer .* cannot be used`,
		`invalid redeclaration of`,
		`use of unresolved identifier`,
		`No such module`,
		`could not find module`,
		`Missing package product`,
	)},
	{models.CategoryCodeSigning, compileAll(
		`Code Signing Error:`,
		`Signing for .* requires a development team`,
		`No signing certificate`,
		`Provisioning profile .* doesn't match`,
		`No profiles for .* were found`,
		`Code signing is required`,
		`Xcode couldn't find any iOS App Development`,
		`requires a provisioning profile`,
		`CSSMERR_TP_NOT_TRUSTED`,
	)},
	{models.CategorySimulator, compileAll(
		`Unable to boot device`,
		`Simulator .* not available`,
		`Failed to boot simulator`,
		`Device is not available`,
		`The requested device could not be found`,
		`xcrun: error: unable to find`,
		`simctl: error:`,
		`CoreSimulator.*error`,
		`No simulator runtime paired`,
		`Simulator service did not respond`,
	)},
	{models.CategoryXcodeBuild, compileAll(
		`xcodebuild: error:`,
		`Build Failed`,
		`Compiling .* failed`,
		`Linking .* failed`,
		`Command .* failed with exit code`,
		`target .* not found`,
		`scheme .* not found`,
		`workspace .* not found`,
		`project .* not found`,
		`The file .* couldn't be opened`,
		`clang: error:`,
		`ld: error:`,
		`Swift Compiler Error`,
		`\*\* BUILD FAILED \*\*`,
	)},
	{models.CategorySwiftUIPreview, compileAll(
		`Preview Crashed`,
		`Cannot preview in this file`,
		`PreviewProvider .* not found`,
		`Previews are limited to 15 seconds`,
		`Preview provider timed out`,
		`Failed to build .* for previewing`,
		`Remote preview service.*terminated`,
	)},
}

// fixSuggestions holds the static per-category advice attached to every
// detected error of that category.
var fixSuggestions = map[models.ErrorCategory][]string{
	models.CategorySyntax: {
		"Check the indicated line for syntax errors",
		"Verify proper indentation and bracket matching",
		"Look for missing colons, commas, or parentheses",
	},
	models.CategoryDependency: {
		"Run 'npm install' or 'pip install -r requirements.txt'",
		"Check if the package name is correct",
		"Try clearing node_modules and reinstalling",
		"Check for version conflicts in dependencies",
	},
	models.CategoryImport: {
		"Verify the module is installed",
		"Check the import path is correct",
		"Ensure the file exists at the expected location",
	},
	models.CategoryType: {
		"Check the types of variables being used",
		"Verify function arguments match expected types",
		"Look for undefined or null values",
	},
	models.CategoryPermission: {
		"Check file/directory permissions",
		"Run with appropriate privileges if needed",
		"Ensure the user has write access",
	},
	models.CategoryNetwork: {
		"Check if the server/service is running",
		"Verify the URL and port are correct",
		"Check network connectivity",
	},
	models.CategoryFileNotFound: {
		"Verify the file path is correct",
		"Check if the file exists",
		"Ensure the working directory is correct",
	},
	models.CategoryConfiguration: {
		"Check if .env file exists with required variables",
		"Verify all configuration files are present",
		"Review configuration documentation",
	},
	models.CategoryPortInUse: {
		"Kill the process using the port",
		"Use a different port",
		"Check for existing instances of the application",
	},
	models.CategoryMemory: {
		"Increase memory allocation",
		"Optimize code to use less memory",
		"Check for memory leaks",
	},
	models.CategoryTestFailure: {
		"Review the failing test assertions",
		"Check if test fixtures are set up correctly",
		"Verify expected vs actual values",
	},
	models.CategorySwiftCompilation: {
		"Check the Swift syntax at the indicated file and line",
		"Verify all imports are correctly declared",
		"Check that type names and property names are spelled correctly",
		"Ensure proper use of optionals and unwrapping",
		"Run 'swift package resolve' to update dependencies",
	},
	models.CategoryCodeSigning: {
		"For simulator builds, add CODE_SIGN_IDENTITY=- CODE_SIGNING_REQUIRED=NO to build command",
		"Open Xcode and set signing to 'Automatically manage signing'",
		"Add a development team in Xcode project settings",
		"For CI/CD, ensure certificates are installed in the keychain",
	},
	models.CategorySimulator: {
		"List available simulators: xcrun simctl list devices",
		"Boot a different simulator version",
		"Reset simulator: xcrun simctl erase <device-udid>",
		"Restart Simulator.app: killall Simulator && open -a Simulator",
		"Update Xcode to get newer simulator runtimes",
	},
	models.CategoryXcodeBuild: {
		"Clean build folder: xcodebuild clean",
		"Delete DerivedData: rm -rf ~/Library/Developer/Xcode/DerivedData",
		"Verify scheme exists: xcodebuild -list",
		"Check if project file is corrupted",
		"Ensure Xcode command line tools are installed: xcode-select --install",
	},
	models.CategorySwiftUIPreview: {
		"Restart Xcode to refresh previews",
		"Check that PreviewProvider conforms correctly",
		"Simplify the preview code to identify issues",
		"Clean build folder and rebuild",
		"Ensure the preview device is available in Xcode",
	},
}
