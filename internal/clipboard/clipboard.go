// Package clipboard copies text to the system clipboard via the platform's
// native utility (pbcopy, xclip/xsel/wl-copy, or clip).
package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Copy writes text to the system clipboard.
func Copy(text string) error {
	switch runtime.GOOS {
	case "darwin":
		return pipe(text, "pbcopy")
	case "windows":
		return pipe(text, "cmd", "/c", "clip")
	case "linux":
		return copyLinux(text)
	default:
		return fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}
}

// Available reports whether a clipboard utility can be found.
func Available() bool {
	switch runtime.GOOS {
	case "darwin":
		return commandExists("pbcopy")
	case "windows":
		return true
	case "linux":
		return commandExists("xclip") || commandExists("xsel") || commandExists("wl-copy")
	default:
		return false
	}
}

// copyLinux tries the common X11 utilities, then the Wayland one.
func copyLinux(text string) error {
	var lastErr error
	attempts := [][]string{
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
		{"wl-copy"},
	}
	for _, args := range attempts {
		if !commandExists(args[0]) {
			continue
		}
		if err := pipe(text, args[0], args[1:]...); err == nil {
			return nil
		} else {
			lastErr = fmt.Errorf("%s failed: %w", args[0], err)
		}
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("no clipboard utility found; install xclip, xsel, or wl-clipboard")
}

func pipe(text, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
