package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/casebook/cmd/cli/admin"
	"github.com/myrjola/casebook/cmd/cli/corpus"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(corpus.Group)
	rootCmd.AddCommand(corpus.Validate)
	rootCmd.AddGroup(admin.Group)
	rootCmd.AddCommand(admin.Stats)
	rootCmd.AddCommand(admin.Reset)
}

var rootCmd = &cobra.Command{
	Use:          "casebook-cli",
	Long:         `Command line utilities for Casebook https://github.com/myrjola/casebook`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
