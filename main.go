package main

import (
	"errors"
	"os"
)

// Main function
func main() {
	err := rootCmd.Execute()

	if sig, ok := caughtSignal.Load().(os.Signal); ok {
		if logger != nil {
			logger.Sync()
		}
		os.Exit(signalExitCode(sig))
	}

	if err != nil {
		code := ExitGeneralError
		if errors.Is(err, errUsage) {
			code = ExitMisuse
		}
		exitWithError(err, code)
	}
}
