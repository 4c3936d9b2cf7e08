// Package cmd implements the rovec command line interface.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "rovec",
	Short: "Rove compiler front end",
	Long: `rovec is the front end of the Rove compiler.

Rove is a statically-typed actor language with capability-annotated
reference types, algebraic types, viewpoint adaptation and generic traits.
The front end parses source text into a typed AST and computes the
reachability closure handed to the native code generator.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stderr)
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		} else {
			log.SetLevel(logrus.WarnLevel)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// readInput returns the source from the named file, or stdin when no file
// was given.
func readInput(args []string) (name, source string, err error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("error reading file: %w", err)
		}
		return args[0], string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("error reading stdin: %w", err)
	}
	return "", string(data), nil
}
