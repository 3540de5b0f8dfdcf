package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// crashLogDir is where crash reports land. A scrape service dies most often
// inside browser teardown, so the report always includes every goroutine.
var crashLogDir = "./logs"

// InstallCrashHandler sets the crash report directory and makes sure it
// exists. Call it at the start of main before any deferred recovery.
func InstallCrashHandler(logDir string) {
	if logDir != "" {
		crashLogDir = logDir
	}
	if err := os.MkdirAll(crashLogDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "crash: failed to create log directory: %v\n", err)
	}
}

// RecoverWithCrashFile is a deferred recovery that writes a crash report and
// exits. Usage: defer common.RecoverWithCrashFile()
func RecoverWithCrashFile() {
	if r := recover(); r != nil {
		WriteCrashFile(r, GetStackTrace())
		os.Exit(1)
	}
}

// WriteCrashFile writes a crash report and returns its path. Falls back to
// stderr when the file cannot be written.
func WriteCrashFile(panicVal interface{}, stackTrace string) string {
	path := filepath.Join(crashLogDir, fmt.Sprintf("crash-%s.log", time.Now().Format("2006-01-02T15-04-05")))

	var b strings.Builder
	fmt.Fprintf(&b, "skandia crash report\n")
	fmt.Fprintf(&b, "time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "version: %s\n", GetFullVersion())
	fmt.Fprintf(&b, "goroutines: %d\n\n", runtime.NumGoroutine())
	fmt.Fprintf(&b, "panic: %v\n\n%s\n", panicVal, stackTrace)
	fmt.Fprintf(&b, "--- all goroutines ---\n%s", allGoroutineStacks())

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "crash: failed to write crash file: %v\n%s", err, b.String())
		return ""
	}

	fmt.Fprintf(os.Stderr, "\nfatal crash, report saved to %s\npanic: %v\n", path, panicVal)
	return path
}

// GetStackTrace returns the current goroutine's stack trace.
func GetStackTrace() string {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

func allGoroutineStacks() string {
	buf := make([]byte, 64*1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return string(buf[:n])
		}
		buf = make([]byte, len(buf)*2)
	}
}
