// Package main provides the entry point for the career guidance gateway.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "careerguide",
	Short: "Career guidance web gateway",
	Long:  "careerguide serves the career guidance UI's API: sessions and auth, guarded page data, the explore assistant and resume PDF compilation.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
