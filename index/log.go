package index

import "github.com/pterm/pterm"

// logSkip reports a file skipped during indexing (LogSkip-gated).
func logSkip(format string, args ...interface{}) {
	pterm.Debug.Printfln(format, args...)
}

// logStatus reports build progress (Verbose-gated).
func logStatus(format string, args ...interface{}) {
	pterm.Info.Printfln(format, args...)
}
