package main

import (
	"fmt"
	"os"

	"github.com/AliceO2Group/detlockd/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "detlockd:", err)
		os.Exit(1)
	}
}
