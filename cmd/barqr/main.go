package main

import (
	"fmt"
	"os"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
