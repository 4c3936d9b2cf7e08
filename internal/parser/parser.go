package parser

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/errors"
	"github.com/rovelang/go-rove/internal/lexer"
)

// Option configures a parse session.
type Option func(*config)

type config struct {
	testSymbols bool
}

// WithTestSymbols enables the '$'-prefixed synthetic tokens used to build
// test-only AST shapes. Never enabled for ordinary compilation.
func WithTestSymbols(enable bool) Option {
	return func(c *config) {
		c.testSymbols = enable
	}
}

// Parse parses one source buffer into a module AST. Diagnostics (both
// lexical and parse) accumulate in the returned list; parsing continues to
// the end of the input after an error. The module AST is returned even when
// diagnostics were reported, with error marker nodes at unrecoverable
// declarations; callers must treat the parse as failed iff the list has
// errors.
func Parse(file, source string, opts ...Option) (*ast.Node, *errors.DiagnosticList) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var lexOpts []lexer.Option
	if cfg.testSymbols {
		lexOpts = append(lexOpts, lexer.WithTestSymbols(true))
	}

	p := &parser{
		lex:    lexer.New(source, lexOpts...),
		source: source,
		file:   file,
		diags:  errors.NewList(),
	}
	p.advance()

	res := moduleRule(p)

	for _, lexErr := range p.lex.Errors() {
		p.diags.Errorf(lexErr.Pos, source, file, "%s", lexErr.Message)
	}

	if res.status != stOK {
		return nil, p.diags
	}
	return res.ast, p.diags
}
