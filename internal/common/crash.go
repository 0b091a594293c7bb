// -----------------------------------------------------------------------
// Crash reporting - a panic that escapes a CLI command writes a report
// file so failed batch runs can be diagnosed after the fact
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// crashLogDir receives crash report files, set once at startup.
var crashLogDir = "./logs"

// InstallCrashHandler prepares the crash report directory. Call at the
// start of main, before the deferred recovery.
func InstallCrashHandler(logDir string) {
	if logDir != "" {
		crashLogDir = logDir
	}
	if err := os.MkdirAll(crashLogDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: failed to create log directory: %v\n", err)
	}
}

// WriteCrashFile writes a crash report for the given panic value and
// returns the report path. Falls back to stderr when the file cannot
// be written.
func WriteCrashFile(panicVal any, stackTrace string) string {
	crashPath := filepath.Join(crashLogDir,
		fmt.Sprintf("crash-%s.log", time.Now().Format("2006-01-02T15-04-05")))

	report := buildCrashReport(panicVal, stackTrace)

	if err := os.WriteFile(crashPath, []byte(report), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: failed to write crash file: %v\n", err)
		fmt.Fprint(os.Stderr, report)
		return ""
	}

	fmt.Fprintf(os.Stderr, "\n!!! FATAL CRASH - report saved to: %s !!!\n", crashPath)
	fmt.Fprintf(os.Stderr, "Panic: %v\n", panicVal)

	return crashPath
}

func buildCrashReport(panicVal any, stackTrace string) string {
	var b strings.Builder

	section := func(name string) {
		fmt.Fprintf(&b, "=== %s ===\n", name)
	}

	section("MENDEL CRASH REPORT")
	fmt.Fprintf(&b, "Time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Version: %s\n\n", GetFullVersion())

	section("PANIC")
	fmt.Fprintf(&b, "%v\n\n", panicVal)

	section("STACK TRACE")
	b.WriteString(stackTrace)
	b.WriteString("\n")

	section("ALL GOROUTINES")
	b.WriteString(allGoroutineStacks())
	b.WriteString("\n")

	section("RUNTIME")
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(&b, "goroutines: %d  cpus: %d  %s/%s\n",
		runtime.NumGoroutine(), runtime.NumCPU(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "alloc: %d MB  sys: %d MB  gc_runs: %d\n",
		mem.Alloc/1024/1024, mem.Sys/1024/1024, mem.NumGC)

	return b.String()
}

// allGoroutineStacks dumps every goroutine, growing the buffer until the
// dump fits.
func allGoroutineStacks() string {
	buf := make([]byte, 64*1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return string(buf[:n])
		}
		if len(buf) >= 16*1024*1024 {
			return string(buf[:n])
		}
		buf = make([]byte, len(buf)*2)
	}
}
