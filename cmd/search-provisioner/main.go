package main

import (
	"os"

	"github.com/hashicorp-forge/search-provisioner/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
