package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/ternarybob/mendel/internal/common"
)

func main() {
	common.InstallCrashHandler("")

	defer func() {
		if r := recover(); r != nil {
			crashPath := common.WriteCrashFile(r, string(debug.Stack()))
			fmt.Fprintf(os.Stderr, "FATAL: %v\ncrash report: %s\n", r, crashPath)
			os.Exit(1)
		}
	}()

	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
