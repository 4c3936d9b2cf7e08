package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovelang/go-rove/internal/lexer"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize Rove source code and display the token stream",
	Long: `Tokenize Rove source code and print one token per line with its
position. If no file is provided, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	_, source, err := readInput(args)
	if err != nil {
		return err
	}

	l := lexer.New(source)
	count := 0
	for {
		tok := l.Next()
		if tok.Type == lexer.EOF {
			break
		}
		fmt.Printf("%4d:%-3d %-12s %q\n", tok.Pos.Line, tok.Pos.Column,
			tok.Type.String(), tok.Literal)
		count++
	}
	log.Debugf("%d tokens", count)

	for _, lexErr := range l.Errors() {
		fmt.Println(lexErr.Error())
	}
	if n := len(l.Errors()); n > 0 {
		return fmt.Errorf("lexing failed with %d error(s)", n)
	}
	return nil
}
