package main

import (
	"fmt"
	"os"

	"github.com/stage3dec/stage3dec/cmd/decoratorc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
