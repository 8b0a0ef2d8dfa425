// Package webui holds the templates of the web page.
package webui

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed view
var files embed.FS

// Files returns the web page files. Debug builds read them from disk so they
// can be edited without restarting.
func Files(build string) (fs.FS, error) {
	switch build {
	case "release":
		return fs.Sub(files, "view")
	case "debug":
		return os.DirFS("src/handler/webui/view"), nil
	default:
		return nil, fmt.Errorf("invalid build: %q", build)
	}
}
