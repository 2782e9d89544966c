package cmd

import (
	"fmt"
	"log"
	"os"
)

var (
	// globals used to patch over calls to os.Exit() during test

	logFatalln = log.Fatalln
	logFatalf  = log.Fatalf
	osExit     = os.Exit
)

func wrapFatalln(msg string, err error) {
	if err == nil {
		logFatalln(msg)
	} else {
		logFatalf("%v", fmt.Errorf(msg+": %w", err))
	}
}

func wrapFatalWithCodef(code int, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	osExit(code)
}
