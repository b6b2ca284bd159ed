package main

import (
	"os"

	masquecmder "github.com/papercomputeco/masque/cmd/masque"
)

func main() {
	cmd := masquecmder.NewMasqueCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
