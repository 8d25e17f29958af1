package main

import (
	"os"

	"github.com/tettuan/frontmatter-to-schema/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
