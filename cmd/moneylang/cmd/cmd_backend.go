package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moneylang/moneylang/internal/ast"
	"github.com/moneylang/moneylang/internal/config"
	"github.com/moneylang/moneylang/internal/dot"
	"github.com/moneylang/moneylang/internal/elfimg"
	"github.com/moneylang/moneylang/internal/ir"
	"github.com/moneylang/moneylang/internal/logging"
	"github.com/moneylang/moneylang/internal/lowering"
	"github.com/moneylang/moneylang/internal/stdlib"
)

var (
	backendOutput    string
	backendMaxTokens int
	backendMaxNames  int
	backendMaxBytes  int
	backendAsm       bool
	backendLst       bool
	backendTaxes     bool
	backendDot       string
	backendStdlib    string
)

var backendCmd = &cobra.Command{
	Use:   "backend <ast-file>",
	Short: "Lower an AST file to a native ELF64 executable",
	Args:  cobra.ExactArgs(1),
	Run:   runBackend,
}

func init() {
	rootCmd.AddCommand(backendCmd)

	backendCmd.Flags().StringVarP(&backendOutput, "output", "o", "", "output executable path (default: input file without extension)")
	backendCmd.Flags().IntVarP(&backendMaxTokens, "max-tokens", "t", config.DefaultMaxTokens, "maximum token count")
	backendCmd.Flags().IntVarP(&backendMaxNames, "max-names", "n", config.DefaultMaxNameTableEntries, "maximum name-table entries")
	backendCmd.Flags().IntVarP(&backendMaxBytes, "max-name-bytes", "l", config.DefaultMaxNamesTotalLength, "maximum total name-table byte length")
	backendCmd.Flags().BoolVar(&backendAsm, "asm", false, "also emit a NASM-style annotated asm text (.asm); most multi-instruction IR ops appear only as comments, so it does not assemble as is")
	backendCmd.Flags().BoolVar(&backendLst, "lst", false, "emit a per-byte-offset listing file (.lst)")
	backendCmd.Flags().BoolVar(&backendTaxes, "taxes", false, "multiply every Pay value by 0.8 before returning")
	backendCmd.Flags().StringVar(&backendDot, "dot", "", "optional Graphviz AST dump path")
	backendCmd.Flags().StringVar(&backendStdlib, "stdlib", defaultStdlibPath(), "path to the prebuilt stdlib ELF image")
}

func defaultStdlibPath() string {
	if p := os.Getenv("MONEYLANG_STDLIB"); p != "" {
		return p
	}
	return "stdlib.bin"
}

func runBackend(cmd *cobra.Command, args []string) {
	logger, closeLog, err := logging.New(logFile)
	if err != nil {
		fatalf(exitFileError, "%s", err)
	}
	defer closeLog()

	caps, err := config.Load(cfgFile, config.Overrides{
		MaxTokens:           backendMaxTokens,
		MaxTokensSet:        cmd.Flags().Changed("max-tokens"),
		MaxNameTableEntries: backendMaxNames,
		MaxEntriesSet:       cmd.Flags().Changed("max-names"),
		MaxNamesTotalLength: backendMaxBytes,
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
		logger.Error("reading AST file", "path", inPath, "err", err)
		os.Exit(exitFileError)
	}

	outPath := backendOutput
	if outPath == "" {
		outPath = strings.TrimSuffix(inPath, filepath.Ext(inPath))
	}

	tree, names, err := ast.Read(string(src), caps.MaxTokens, caps.MaxNameTableEntries, caps.MaxNamesTotalLength)
	if err != nil {
		os.Exit(reportError(logger, err))
	}
	logger.Debug("AST read")

	if backendDot != "" {
		if err := os.WriteFile(backendDot, []byte(dot.Write(tree, names)), 0644); err != nil {
			logger.Error("writing dot file", "path", backendDot, "err", err)
		}
	}

	list, err := ir.New(tree, names, backendTaxes).Build()
	if err != nil {
		os.Exit(reportError(logger, err))
	}
	logger.Debug("IR built", "instructions", len(list.Instrs))

	withText := usesPrintText(list)
	stdlibCode, err := stdlib.Load(backendStdlib, names, withText)
	if err != nil {
		os.Exit(reportError(logger, err))
	}

	result, err := lowering.New(list, names).Run()
	if err != nil {
		os.Exit(reportError(logger, err))
	}
	logger.Debug("lowering done", "code bytes", len(result.Code))

	if backendAsm {
		if err := os.WriteFile(outPath+".asm", []byte(result.AsmText), 0644); err != nil {
			logger.Error("writing asm file", "err", err)
		}
	}
	if backendLst {
		if err := os.WriteFile(outPath+".lst", []byte(result.Listing), 0644); err != nil {
			logger.Error("writing lst file", "err", err)
		}
	}

	code := append(stdlibCode, result.Code...)
	b := elfimg.NewBuilder()
	b.SetCode(code)
	b.SetEntry(elfimg.CodeVAddr + uint64(len(stdlibCode)))
	if err := b.Write(outPath); err != nil {
		os.Exit(reportError(logger, err))
	}

	logger.Info("wrote executable", "path", outPath, "bytes", len(code))
}

func usesPrintText(list *ir.List) bool {
	for _, instr := range list.Instrs {
		if instr.Op == ir.OpPrintText {
			return true
		}
	}
	return false
}
