package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/parser"
)

var (
	parseTestSymbols bool
	parseDumpAST     bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse Rove source code and display the AST",
	Long: `Parse Rove source code and display the abstract syntax tree.

If no file is provided, reads from stdin.
Use --dump-ast for the indented multi-line form.
Use --test-symbols to enable the '$'-prefixed synthetic tokens used by
parser tests.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST structure")
	parseCmd.Flags().BoolVar(&parseTestSymbols, "test-symbols", false, "enable test-only tokens")
}

func runParse(cmd *cobra.Command, args []string) error {
	file, source, err := readInput(args)
	if err != nil {
		return err
	}

	var opts []parser.Option
	if parseTestSymbols {
		opts = append(opts, parser.WithTestSymbols(true))
	}

	module, diags := parser.Parse(file, source, opts...)

	for _, d := range diags.All() {
		fmt.Fprintln(os.Stderr, d.Format(!color.NoColor))
	}
	if diags.HasErrors() {
		return fmt.Errorf("parsing failed with %d error(s)", diags.ErrorCount())
	}

	if parseDumpAST {
		ast.Fprint(os.Stdout, module)
	} else {
		fmt.Println(ast.Print(module))
	}
	return nil
}
