package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rovelang/go-rove/internal/lexer"
	"github.com/rovelang/go-rove/internal/parser"
	"github.com/rovelang/go-rove/internal/reach"
	"github.com/rovelang/go-rove/internal/semantic"
)

var reachEntry string

var reachCmd = &cobra.Command{
	Use:   "reach [file]",
	Short: "Compute and dump the reachability closure of a program",
	Long: `Parse and analyze a Rove program, then compute the set of types
and method instantiations reachable from the entry actor's constructor.

The dump is a debug listing; its ordering is unspecified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReach,
}

func init() {
	rootCmd.AddCommand(reachCmd)

	reachCmd.Flags().StringVar(&reachEntry, "entry", "Main", "entry actor name")
}

func runReach(cmd *cobra.Command, args []string) error {
	file, source, err := readInput(args)
	if err != nil {
		return err
	}

	module, diags := parser.Parse(file, source)
	if !diags.HasErrors() {
		semantic.Analyze(module, diags, source, file)
	}

	for _, d := range diags.All() {
		fmt.Fprintln(os.Stderr, d.Format(!color.NoColor))
	}
	if diags.HasErrors() {
		return fmt.Errorf("compilation failed with %d error(s)", diags.ErrorCount())
	}

	r := reach.New(module)
	defer r.Free()
	r.Primitives()

	entry := semantic.Definition(module, reachEntry)
	if entry == nil || entry.Kind() != lexer.ACTOR {
		return fmt.Errorf("no entry actor %q", reachEntry)
	}
	log.Debugf("reaching %s.create", reachEntry)
	r.Reach(semantic.BuiltinType(module, reachEntry), "create", nil)

	r.Dump(os.Stdout)
	return nil
}
