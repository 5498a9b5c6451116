package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moneylang/moneylang/internal/ast"
	"github.com/moneylang/moneylang/internal/config"
	"github.com/moneylang/moneylang/internal/lexer"
	"github.com/moneylang/moneylang/internal/logging"
	"github.com/moneylang/moneylang/internal/nametable"
	"github.com/moneylang/moneylang/internal/parser"
)

var (
	frontendOutput    string
	frontendMaxTokens int
	frontendMaxNames  int
	frontendMaxBytes  int
)

var frontendCmd = &cobra.Command{
	Use:   "frontend <source-file>",
	Short: "Lex and parse Money-lang source into a textual AST file",
	Args:  cobra.ExactArgs(1),
	Run:   runFrontend,
}

func init() {
	rootCmd.AddCommand(frontendCmd)

	frontendCmd.Flags().StringVarP(&frontendOutput, "output", "o", "", "output AST file path (default: input file with .ast extension)")
	frontendCmd.Flags().IntVarP(&frontendMaxTokens, "max-tokens", "t", config.DefaultMaxTokens, "maximum token count")
	frontendCmd.Flags().IntVarP(&frontendMaxNames, "max-names", "n", config.DefaultMaxNameTableEntries, "maximum name-table entries")
	frontendCmd.Flags().IntVarP(&frontendMaxBytes, "max-name-bytes", "l", config.DefaultMaxNamesTotalLength, "maximum total name-table byte length")
}

func runFrontend(cmd *cobra.Command, args []string) {
	logger, closeLog, err := logging.New(logFile)
	if err != nil {
		fatalf(exitFileError, "%s", err)
	}
	defer closeLog()

	caps, err := config.Load(cfgFile, config.Overrides{
		MaxTokens:           frontendMaxTokens,
		MaxTokensSet:        cmd.Flags().Changed("max-tokens"),
		MaxNameTableEntries: frontendMaxNames,
		MaxEntriesSet:       cmd.Flags().Changed("max-names"),
		MaxNamesTotalLength: frontendMaxBytes,
		MaxNameBytesSet:     cmd.Flags().Changed("max-name-bytes"),
	})
	if err != nil {
		fatalf(exitCLIError, "%s", err)
	}
	if caps.ConfigFileUsed != "" {
		logger.Debug("using config file", "path", caps.ConfigFileUsed)
	}

	inPath := filepath.Clean(args[0])
	src, err := os.ReadFile(inPath)
	if err != nil {
		logger.Error("reading source", "path", inPath, "err", err)
		os.Exit(exitFileError)
	}

	outPath := frontendOutput
	if outPath == "" {
		outPath = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".ast"
	}

	names := nametable.New(caps.MaxNameTableEntries, caps.MaxNamesTotalLength)
	if err := insertReservedStdlibNames(names); err != nil {
		os.Exit(reportError(logger, err))
	}

	toks, err := lexer.New(string(src), inPath, names).Tokenize()
	if err != nil {
		os.Exit(reportError(logger, err))
	}
	logger.Debug("lex done", "tokens", len(toks))

	tree, err := parser.New(toks, ast.NewTree(caps.MaxTokens), names, string(src)).Parse()
	if err != nil {
		os.Exit(reportError(logger, err))
	}
	logger.Debug("parse done")

	if err := os.WriteFile(outPath, []byte(ast.Write(tree, names)), 0644); err != nil {
		logger.Error("writing AST file", "path", outPath, "err", err)
		os.Exit(exitFileError)
	}

	info, _ := os.Stat(outPath)
	var size int64
	if info != nil {
		size = info.Size()
	}
	logger.Info("wrote AST file", "path", outPath, "bytes", size)
}

// insertReservedStdlibNames interns the three stdlib entry-point symbols so
// the backend (the IR builder for Invest/ShowBalance, lowering for Txt) can
// resolve calls against them before it loads the stdlib image itself.
func insertReservedStdlibNames(names *nametable.Table) error {
	for _, n := range []string{"__stdlib_in", "__stdlib_out", "__stdlib_out_text"} {
		if _, err := names.Insert(n); err != nil {
			return err
		}
	}
	return nil
}
