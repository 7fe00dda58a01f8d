package main

import (
	"os"

	"wordfreq/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
