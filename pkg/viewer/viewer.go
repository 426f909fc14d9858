// Package viewer hands rendered artifacts to the operating system's
// default application.
package viewer

import (
	"fmt"
	"os"

	"github.com/pkg/browser"
)

// Open opens the file at path with the OS default viewer. SVG, PNG, PDF,
// and HTML artifacts all route through the browser package, which picks
// xdg-open, open, or the Windows shell as appropriate.
func Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return browser.OpenFile(path)
}

// OpenURL opens a URL in the default browser.
func OpenURL(url string) error {
	return browser.OpenURL(url)
}
