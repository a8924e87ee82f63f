// Package open hands downloaded chapters and read pages to an external viewer.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/josueBarretogit/manga-tui/constant"
)

// Start opens path with app, or with the handler the system associates with it when app is empty.
// It does not wait for the viewer to exit.
func Start(path, app string) error {
	cmd, ok := command(runtime.GOOS, path, app)
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return cmd.Start()
}

func command(goos, path, app string) (*exec.Cmd, bool) {
	if app != "" {
		switch goos {
		case constant.Windows:
			return exec.Command("cmd", "/C", "start", "", app, path), true
		case constant.Darwin:
			return exec.Command("open", "-a", app, path), true
		case constant.Android:
			return exec.Command("termux-open", "--choose", path), true
		default:
			return exec.Command(app, path), true
		}
	}

	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", path), true
	case constant.Darwin:
		return exec.Command("open", path), true
	case constant.Linux:
		return exec.Command("xdg-open", path), true
	case constant.Android:
		return exec.Command("termux-open", path), true
	default:
		return nil, false
	}
}
