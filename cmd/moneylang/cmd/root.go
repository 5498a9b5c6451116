package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes per the external interface contract: 0 success, 3 CLI error,
// 4 missing input/output, 1 any compilation error.
const (
	exitOK           = 0
	exitCompileError = 1
	exitCLIError     = 3
	exitFileError    = 4
)

var (
	cfgFile string
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "moneylang",
	Short: "Ahead-of-time compiler for Money-lang",
	Long: `moneylang compiles Money-lang, a small finance-themed imperative
language, down to a statically-linked ELF64 executable for Linux/x86-64.

The pipeline is split into two subcommands mirroring the compiler's own
stages: "frontend" lexes and parses source into a textual AST file, and
"backend" reads that AST file and lowers it to a native executable.`,
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCLIError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./.moneylang.yaml or $HOME/.moneylang.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write Debug-level JSON logs to this file")
}

func fatalf(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
