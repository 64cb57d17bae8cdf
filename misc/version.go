// Package misc keeps build time information about the program.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set with -ldflags "-X cssprite/misc.version=... -X cssprite/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
	appName = "cssprite"
)

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git commit the program was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns program name. When program binary was renamed we still
// want to use the name it was built with for logs and reports.
func GetAppName() string {
	if len(appName) > 0 {
		return appName
	}
	return strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
}
