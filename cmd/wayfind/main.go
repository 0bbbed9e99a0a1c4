// Command wayfind aggregates campus location data and synchronizes it into
// the search index.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/campusops/wayfind/cmd/wayfind/cmd"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
