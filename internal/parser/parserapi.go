// Package parser implements the grammar-driven recursive-descent parser for
// Rove.
//
// The grammar (grammar.go) is declarative: each rule is a function whose body
// is a sequence of combinator calls on a per-rule state. The combinators map
// one-to-one onto a small fixed set: token, skip, rule, seq, opt/optNoDefault,
// ifToken/ifElse/whileToken, astNode, mapID, reorder, setFlag/setChildFlag/
// nextFlagsSet, infixBuild/infixReverse, scope, restartAt, printInline, done.
//
// Control flow is explicit in the rule state: once a combinator fails the
// remaining calls in the rule are no-ops and done() reports the outcome.
// A rule that fails before matching anything reports "not found" so the
// caller can try the next alternative; a rule that fails after consuming
// input is a hard parse error. Alternation is predictive, not backtracking.
package parser

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/errors"
	"github.com/rovelang/go-rove/internal/lexer"
)

type status int

const (
	stOK status = iota
	stNotFound
	stError
)

// ruleResult is what a grammar rule hands back to its caller: the built
// subtree plus the builder that tells the caller how to attach it.
type ruleResult struct {
	status  status
	ast     *ast.Node
	builder buildFn
}

// ruleFn is a grammar rule.
type ruleFn func(p *parser) ruleResult

// buildFn attaches a completed sub-rule result to the calling rule's
// accumulated AST.
type buildFn func(s *ruleState, n *ast.Node)

// defaultBuilder appends the new subtree as the last child; if the rule has
// no AST yet the subtree becomes the rule's AST.
func defaultBuilder(s *ruleState, n *ast.Node) {
	s.add(n)
}

// infixBuilder makes the new subtree the rule's AST with the previous AST
// prepended as its first child. Chained left-associatively this builds
// (((a op b) op c) op d).
func infixBuilder(s *ruleState, n *ast.Node) {
	prev := s.ast
	n.PrependChild(prev)
	s.ast = n
}

// infixReverseBuilder makes the new subtree the rule's AST with the previous
// AST appended as its last child. Used for call-like and right-associative
// postfixes.
func infixReverseBuilder(s *ruleState, n *ast.Node) {
	prev := s.ast
	n.AppendChild(prev)
	s.ast = n
}

// parser carries the token cursor and shared parse session state.
type parser struct {
	lex       *lexer.Lexer
	token     lexer.Token
	source    string
	file      string
	diags     *errors.DiagnosticList
	nextFlags ast.Flags
}

func (p *parser) advance() {
	p.token = p.lex.Next()
}

// atNewline reports whether the current token is the first on its physical
// line. This is the non-consuming NEWLINE guard used by the statement
// splitting rules.
func (p *parser) atNewline() bool {
	return p.token.FirstOnLine
}

func (p *parser) errorExpected(desc string) {
	p.diags.Errorf(p.token.Pos, p.source, p.file,
		"expected %s, found %s", desc, describeToken(p.token))
}

func describeToken(tok lexer.Token) string {
	switch tok.Type {
	case lexer.ID, lexer.INT, lexer.FLOAT:
		return "'" + tok.Literal + "'"
	case lexer.STRING:
		return "string literal"
	case lexer.EOF:
		return "end of file"
	}
	return "'" + tok.Type.String() + "'"
}

// skipTo discards tokens until the current token is one of the given types
// or end of file. The boundary token is not consumed.
func (p *parser) skipTo(types []lexer.TokenType) {
	for p.token.Type != lexer.EOF {
		for _, t := range types {
			if p.token.Type == t {
				return
			}
		}
		p.advance()
	}
}

// ruleState is the implicit per-rule parse state shared by the combinators
// of one rule body.
type ruleState struct {
	p         *parser
	desc      string
	ast       *ast.Node
	status    status
	matched   bool // has this rule consumed anything yet
	optional  bool // next combinator may be absent
	noDefault bool // absent optional appends nothing instead of NONE
	scoped    bool
	builder   buildFn
	restart   []lexer.TokenType
}

func (p *parser) newState(desc string) *ruleState {
	return &ruleState{p: p, desc: desc, builder: defaultBuilder}
}

// add appends a node to the rule's AST; the first node added becomes the
// rule's AST itself.
func (s *ruleState) add(n *ast.Node) {
	if s.ast == nil {
		s.ast = n
		return
	}
	s.ast.AppendChild(n)
}

// fail resolves a non-match: absent optionals append their placeholder, a
// rule that has matched nothing reports not-found, and a rule that already
// consumed input raises a parse error.
func (s *ruleState) fail(desc string) {
	if s.optional {
		if !s.noDefault {
			s.add(ast.New(lexer.NONE, s.p.token.Pos))
		}
		s.optional, s.noDefault = false, false
		return
	}

	if !s.matched {
		s.status = stNotFound
		return
	}

	if desc == "" {
		desc = s.desc
	}
	s.p.errorExpected(desc)
	s.status = stError
}

func (s *ruleState) consumePending() (opt, noDflt bool) {
	opt, noDflt = s.optional, s.noDefault
	s.optional, s.noDefault = false, false
	return opt, noDflt
}

// printInline is a hint for the AST pretty printer only; it has no effect on
// the parse.
func (s *ruleState) printInline() {}

// scope marks the produced node as scope-bearing; done() attaches an empty
// symbol table for the name-binding pass to fill.
func (s *ruleState) scope() {
	s.scoped = true
}

// opt makes the next combinator optional; when absent a NONE placeholder is
// appended so positional child schemas stay fixed.
func (s *ruleState) opt() {
	s.optional = true
}

// optNoDefault makes the next combinator optional with no placeholder.
func (s *ruleState) optNoDefault() {
	s.optional = true
	s.noDefault = true
}

// infixBuild marks this rule as a left-associative postfix of the enclosing
// rule: the caller re-parents its accumulated AST as this rule's first child.
func (s *ruleState) infixBuild() {
	s.builder = infixBuilder
}

// infixReverse marks this rule as a call-like postfix: the caller's
// accumulated AST becomes this rule's last child.
func (s *ruleState) infixReverse() {
	s.builder = infixReverseBuilder
}

// restartAt declares the recovery set for this rule: when the rule fails
// after a hard error, tokens are discarded up to (not including) the first
// token in the set and the rule yields an error marker so the enclosing
// repetition can continue.
func (s *ruleState) restartAt(types ...lexer.TokenType) {
	s.restart = types
}

func matchType(tok lexer.Token, types []lexer.TokenType) bool {
	for _, t := range types {
		if tok.Type == t {
			return true
		}
	}
	return false
}

// token matches one of the given token types, consumes it and appends it as
// a leaf child.
func (s *ruleState) token(desc string, types ...lexer.TokenType) {
	s.matchToken(desc, types, true)
}

// skip matches one of the given token types and consumes it without
// appending.
func (s *ruleState) skip(desc string, types ...lexer.TokenType) {
	s.matchToken(desc, types, false)
}

func (s *ruleState) matchToken(desc string, types []lexer.TokenType, keep bool) {
	if s.status != stOK {
		return
	}

	if !matchType(s.p.token, types) {
		s.fail(desc)
		return
	}

	s.optional, s.noDefault = false, false
	s.matched = true
	if keep {
		n := ast.NewFromToken(s.p.token)
		n.SetFlag(s.p.nextFlags)
		s.add(n)
	}
	s.p.advance()
}

// astNode appends a synthetic node of the given kind. It does not count as a
// match: a rule whose only output so far is synthetic can still report
// not-found.
func (s *ruleState) astNode(kind ast.Kind) {
	if s.status != stOK {
		return
	}
	n := ast.New(kind, s.p.token.Pos)
	n.SetFlag(s.p.nextFlags)
	s.add(n)
}

// rule tries each alternative in order and commits to the first whose
// leading tokens are accepted. Once committed, failure of the alternative is
// a hard parse error.
func (s *ruleState) rule(desc string, alts ...ruleFn) {
	if s.status != stOK {
		return
	}

	opt, noDflt := s.consumePending()

	for _, alt := range alts {
		res := alt(s.p)
		switch res.status {
		case stOK:
			s.matched = true
			res.builder(s, res.ast)
			return
		case stError:
			s.status = stError
			return
		}
	}

	s.optional, s.noDefault = opt, noDflt
	s.fail(desc)
}

// seq is zero-or-more alternation: alternatives are tried repeatedly until
// none accepts the current token. It never fails on zero matches.
func (s *ruleState) seq(_ string, alts ...ruleFn) {
	if s.status != stOK {
		return
	}

	for {
		progressed := false
		for _, alt := range alts {
			res := alt(s.p)
			switch res.status {
			case stOK:
				s.matched = true
				res.builder(s, res.ast)
				progressed = true
			case stError:
				s.status = stError
				return
			case stNotFound:
				continue
			}
			if progressed {
				break
			}
		}
		if !progressed {
			return
		}
	}
}

// ifToken is a one-token lookahead guard: when the token matches it is
// consumed (NEWLINE is tested without consuming) and the body runs; when it
// does not, a NONE placeholder is appended.
func (s *ruleState) ifToken(t lexer.TokenType, body func()) {
	s.ifElse(t, body, func() {
		s.add(ast.New(lexer.NONE, s.p.token.Pos))
	})
}

// ifElse is ifToken with an explicit else branch and no implicit
// placeholder.
func (s *ruleState) ifElse(t lexer.TokenType, then, els func()) {
	if s.status != stOK {
		return
	}

	if s.guard(t) {
		s.matched = true
		then()
		return
	}
	els()
}

// whileToken repeats the body as long as the guard token matches; each
// matched guard is consumed.
func (s *ruleState) whileToken(t lexer.TokenType, body func()) {
	if s.status != stOK {
		return
	}

	for s.guard(t) {
		s.matched = true
		body()
		if s.status != stOK {
			return
		}
	}
}

// guard tests the current token against t and consumes it on a match. The
// virtual NEWLINE type tests line position without consuming.
func (s *ruleState) guard(t lexer.TokenType) bool {
	if t == lexer.NEWLINE {
		return s.p.atNewline()
	}
	if s.p.token.Type != t {
		return false
	}
	s.p.advance()
	return true
}

// mapID retags the rule's AST when it currently has the old kind.
func (s *ruleState) mapID(old, new ast.Kind) {
	if s.status != stOK || s.ast == nil {
		return
	}
	if s.ast.Kind() == old {
		s.ast.SetKind(new)
	}
}

// reorder permutes the children of the rule's AST into the canonical
// positional schema.
func (s *ruleState) reorder(perm ...int) {
	if s.status != stOK {
		return
	}
	s.ast.Reorder(perm...)
}

// setFlag sets flag bits on the rule's AST.
func (s *ruleState) setFlag(f ast.Flags) {
	if s.status != stOK {
		return
	}
	s.ast.SetFlag(f)
}

// setChildFlag sets flag bits on the i-th child of the rule's AST.
func (s *ruleState) setChildFlag(i int, f ast.Flags) {
	if s.status != stOK {
		return
	}
	if c := s.ast.ChildAt(i); c != nil {
		c.SetFlag(f)
	}
}

// nextFlagsSet installs flag bits applied to every subsequently created
// token node until changed. Pass 0 to clear.
func (s *ruleState) nextFlagsSet(f ast.Flags) {
	if s.status != stOK {
		return
	}
	s.p.nextFlags = f
}

// done finalizes the rule. A hard error in a rule with a restart set is
// recovered here: tokens are discarded to the restart boundary and an error
// marker node is returned so the enclosing repetition continues.
func (s *ruleState) done() ruleResult {
	if s.status == stError && s.restart != nil {
		s.p.skipTo(s.restart)
		marker := ast.New(lexer.ERRORNODE, s.p.token.Pos)
		return ruleResult{status: stOK, ast: marker, builder: defaultBuilder}
	}

	if s.status != stOK {
		return ruleResult{status: s.status}
	}

	if s.scoped && s.ast != nil && s.ast.Scope() == nil {
		s.ast.SetScope(ast.NewScope())
	}

	return ruleResult{status: stOK, ast: s.ast, builder: s.builder}
}
