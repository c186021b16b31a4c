package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var codeErr exitCodeError
		if errors.As(err, &codeErr) {
			// The child's own stderr has already been relayed.
			os.Exit(codeErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
