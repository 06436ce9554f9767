package main

import (
	"fmt"
	"os"

	"github.com/voidspace-sec/brop/cmd/brop/app"
)

func main() {
	if err := app.NewBropCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
