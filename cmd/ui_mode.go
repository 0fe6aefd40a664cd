package cmd

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"grepowski/internal/config"
)

// isTerminal reports whether w is a TTY.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// liveUI picks the review interface for a validated ui setting. The second
// result is a notice for stderr when live was asked for but stdout cannot
// host it.
func liveUI(cfg config.Config, stdout io.Writer) (bool, string) {
	tty := isTerminal(stdout)
	switch cfg.UI {
	case config.UILive:
		if !tty {
			return false, fmt.Sprintf("ui %q ignored: %s is not a terminal", config.UILive, outputName(stdout))
		}
		return true, ""
	case config.UIPlain:
		return false, ""
	default:
		return tty, ""
	}
}

func outputName(w io.Writer) string {
	if f, ok := w.(*os.File); ok {
		return f.Name()
	}
	return "output"
}
