package main

import (
	"os"

	"github.com/dfryer1193/pictures/cmd/picturectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
