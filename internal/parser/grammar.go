package parser

// This file defines the Rove grammar. Each function is one rule, built from
// the combinators in parserapi.go, and the comment above each rule is its
// production.
//
// Precedence: we do not support precedence of infix operators, since that
// leads to many bugs. Parentheses are required to disambiguate operator
// interactions; the syntax pass checks this. All infix operators parse at
// equal precedence as a left-associative chain.
//
// Overall the precedences built into the grammar are:
//
//  Value operators:
//   postfix (eg . call) - highest precedence, most tightly binding
//   prefix (eg not consume)
//   infix (eg + <<)
//   assignment (=) - right associative
//   sequence (consecutive expressions)
//   tuple elements (,) - lowest precedence
//
//  Type operators:
//   viewpoint (->) - right associative, highest precedence
//   infix (& |)
//   tuple elements (,) - lowest precedence

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/lexer"
)

// type
func provides(p *parser) ruleResult {
	s := p.newState("provides")
	s.printInline()
	s.astNode(lexer.PROVIDES)
	s.rule("provided type", typeRule)
	return s.done()
}

// ID COLON type [ASSIGN infix]
func param(p *parser) ruleResult {
	s := p.newState("parameter")
	s.astNode(lexer.PARAM)
	s.token("name", lexer.ID)
	s.skip("", lexer.COLON)
	s.rule("parameter type", typeRule)
	s.ifToken(lexer.ASSIGN, func() { s.rule("default value", infixRule) })
	return s.done()
}

// ELLIPSIS
func ellipsisRule(p *parser) ruleResult {
	s := p.newState("ellipsis")
	s.token("", lexer.ELLIPSIS)
	return s.done()
}

// ID [COLON type] [ASSIGN type]
func typeparam(p *parser) ruleResult {
	s := p.newState("type parameter")
	s.astNode(lexer.TYPEPARAM)
	s.token("name", lexer.ID)
	s.ifToken(lexer.COLON, func() { s.rule("type constraint", typeRule) })
	s.ifToken(lexer.ASSIGN, func() { s.rule("default type", typeRule) })
	return s.done()
}

// param {COMMA param}
func params(p *parser) ruleResult {
	s := p.newState("parameters")
	s.astNode(lexer.PARAMS)
	s.rule("parameter", param, ellipsisRule)
	s.whileToken(lexer.COMMA, func() { s.rule("parameter", param, ellipsisRule) })
	return s.done()
}

// LSQUARE typeparam {COMMA typeparam} RSQUARE
func typeparams(p *parser) ruleResult {
	s := p.newState("type parameters")
	s.astNode(lexer.TYPEPARAMS)
	s.skip("", lexer.LSQUARE, lexer.LSQUARE_NEW)
	s.rule("type parameter", typeparam)
	s.whileToken(lexer.COMMA, func() { s.rule("type parameter", typeparam) })
	s.skip("", lexer.RSQUARE)
	return s.done()
}

// LSQUARE type {COMMA type} RSQUARE
func typeargs(p *parser) ruleResult {
	s := p.newState("type arguments")
	s.astNode(lexer.TYPEARGS)
	s.skip("", lexer.LSQUARE)
	s.rule("type argument", typeRule)
	s.whileToken(lexer.COMMA, func() { s.rule("type argument", typeRule) })
	s.skip("", lexer.RSQUARE)
	return s.done()
}

// CAP
func cap(p *parser) ruleResult {
	s := p.newState("capability")
	s.token("capability", lexer.ISO, lexer.TRN, lexer.REF, lexer.VAL,
		lexer.BOX, lexer.TAG)
	return s.done()
}

// GENCAP
func gencap(p *parser) ruleResult {
	s := p.newState("generic capability")
	s.token("generic capability", lexer.CAP_READ, lexer.CAP_SEND,
		lexer.CAP_SHARE, lexer.CAP_ANY)
	return s.done()
}

// ID [DOT ID] [typeargs] [CAP] [EPHEMERAL | BORROWED]
func nominal(p *parser) ruleResult {
	s := p.newState("type name")
	s.astNode(lexer.NOMINAL)
	s.token("name", lexer.ID)
	s.ifElse(lexer.DOT,
		func() { s.token("name", lexer.ID) },
		func() {
			s.astNode(lexer.NONE)
			s.reorder(1, 0)
		})
	s.opt()
	s.rule("type arguments", typeargs)
	s.opt()
	s.rule("capability", cap, gencap)
	s.opt()
	s.token("", lexer.EPHEMERAL, lexer.BORROWED)
	return s.done()
}

// PIPE type
func uniontype(p *parser) ruleResult {
	s := p.newState("union type")
	s.infixBuild()
	s.astNode(lexer.UNIONTYPE)
	s.skip("", lexer.PIPE)
	s.rule("type", typeRule)
	return s.done()
}

// AMP type
func isecttype(p *parser) ruleResult {
	s := p.newState("intersection type")
	s.infixBuild()
	s.token("", lexer.AMP)
	s.mapID(lexer.AMP, lexer.ISECTTYPE)
	s.rule("type", typeRule)
	return s.done()
}

// type {uniontype | isecttype}
func infixtype(p *parser) ruleResult {
	s := p.newState("type")
	s.rule("type", typeRule)
	s.seq("type", uniontype, isecttype)
	return s.done()
}

// DONTCARE
func dontcare(p *parser) ruleResult {
	s := p.newState("dontcare")
	s.token("", lexer.DONTCARE)
	return s.done()
}

// COMMA (infixtype | dontcare) {COMMA (infixtype | dontcare)}
func tupletype(p *parser) ruleResult {
	s := p.newState("tuple type")
	s.infixBuild()
	s.token("", lexer.COMMA)
	s.mapID(lexer.COMMA, lexer.TUPLETYPE)
	s.rule("type", infixtype, dontcare)
	s.whileToken(lexer.COMMA, func() { s.rule("type", infixtype, dontcare) })
	return s.done()
}

// (LPAREN | LPAREN_NEW) (infixtype | dontcare) [tupletype] RPAREN
func groupedtype(p *parser) ruleResult {
	s := p.newState("type")
	s.printInline()
	s.skip("", lexer.LPAREN, lexer.LPAREN_NEW)
	s.rule("type", infixtype, dontcare)
	s.optNoDefault()
	s.rule("type", tupletype)
	s.skip("", lexer.RPAREN)
	s.setFlag(ast.FlagInParens)
	return s.done()
}

// THIS
func thistype(p *parser) ruleResult {
	s := p.newState("this type")
	s.printInline()
	s.astNode(lexer.THISTYPE)
	s.skip("", lexer.THIS)
	return s.done()
}

// BOX
func boxtype(p *parser) ruleResult {
	s := p.newState("box type")
	s.printInline()
	s.astNode(lexer.BOXTYPE)
	s.skip("", lexer.BOX)
	return s.done()
}

// (thistype | boxtype | groupedtype | nominal)
func atomtype(p *parser) ruleResult {
	s := p.newState("type")
	s.rule("type", thistype, boxtype, groupedtype, nominal)
	return s.done()
}

// ARROW type
func viewpoint(p *parser) ruleResult {
	s := p.newState("viewpoint")
	s.printInline()
	s.infixBuild()
	s.token("", lexer.ARROW)
	s.rule("viewpoint", typeRule)
	return s.done()
}

// atomtype [viewpoint]
func typeRule(p *parser) ruleResult {
	s := p.newState("type")
	s.rule("type", atomtype)
	s.optNoDefault()
	s.rule("viewpoint", viewpoint)
	return s.done()
}

// ID [$updatearg] ASSIGN rawseq
func namedarg(p *parser) ruleResult {
	s := p.newState("named argument")
	s.astNode(lexer.NAMEDARG)
	s.token("argument name", lexer.ID)
	s.ifElse(lexer.TEST_UPDATEARG,
		func() {
			s.mapID(lexer.NAMEDARG, lexer.UPDATEARG)
			s.setFlag(ast.FlagTestOnly)
		},
		func() {})
	s.skip("", lexer.ASSIGN)
	s.rule("argument value", rawseq)
	return s.done()
}

// WHERE namedarg {COMMA namedarg}
func named(p *parser) ruleResult {
	s := p.newState("named arguments")
	s.astNode(lexer.NAMEDARGS)
	s.skip("", lexer.WHERE)
	s.rule("named argument", namedarg)
	s.whileToken(lexer.COMMA, func() { s.rule("named argument", namedarg) })
	return s.done()
}

// rawseq {COMMA rawseq}
func positional(p *parser) ruleResult {
	s := p.newState("positional arguments")
	s.astNode(lexer.POSITIONALARGS)
	s.rule("argument", rawseq)
	s.whileToken(lexer.COMMA, func() { s.rule("argument", rawseq) })
	return s.done()
}

// OBJECT [CAP] [IS type] members END
func object(p *parser) ruleResult {
	s := p.newState("object literal")
	s.printInline()
	s.token("", lexer.OBJECT)
	s.opt()
	s.rule("capability", cap)
	s.ifToken(lexer.IS, func() { s.rule("provided type", provides) })
	s.rule("object member", members)
	s.skip("", lexer.END)
	return s.done()
}

// ID [COLON type] [ASSIGN infix]
func lambdacapture(p *parser) ruleResult {
	s := p.newState("lambda capture")
	s.astNode(lexer.LAMBDACAPTURE)
	s.token("name", lexer.ID)
	s.ifToken(lexer.COLON, func() { s.rule("capture type", typeRule) })
	s.ifToken(lexer.ASSIGN, func() { s.rule("capture value", infixRule) })
	return s.done()
}

// (LPAREN | LPAREN_NEW) lambdacapture {COMMA lambdacapture} RPAREN
func lambdacaptures(p *parser) ruleResult {
	s := p.newState("captures")
	s.astNode(lexer.LAMBDACAPTURES)
	s.skip("", lexer.LPAREN, lexer.LPAREN_NEW)
	s.rule("capture", lambdacapture)
	s.whileToken(lexer.COMMA, func() { s.rule("capture", lambdacapture) })
	s.skip("", lexer.RPAREN)
	return s.done()
}

// LAMBDA [CAP] [typeparams] (LPAREN | LPAREN_NEW) [params] RPAREN
// [lambdacaptures] [COLON type] [QUESTION] DBLARROW rawseq END
func lambdaRule(p *parser) ruleResult {
	s := p.newState("lambda")
	s.printInline()
	s.token("", lexer.LAMBDA)
	s.opt()
	s.rule("capability", cap)
	s.opt()
	s.rule("type parameters", typeparams)
	s.skip("", lexer.LPAREN, lexer.LPAREN_NEW)
	s.opt()
	s.rule("parameters", params)
	s.skip("", lexer.RPAREN)
	s.opt()
	s.rule("captures", lambdacaptures)
	s.ifToken(lexer.COLON, func() { s.rule("return type", typeRule) })
	s.opt()
	s.token("", lexer.QUESTION)
	s.skip("", lexer.DBLARROW)
	s.rule("lambda body", rawseq)
	s.skip("", lexer.END)
	s.setChildFlag(1, ast.FlagPreserve) // Type parameters
	s.setChildFlag(2, ast.FlagPreserve) // Parameters
	s.setChildFlag(4, ast.FlagPreserve) // Return type
	s.setChildFlag(6, ast.FlagPreserve) // Body
	return s.done()
}

// AS type ':'
func arraytype(p *parser) ruleResult {
	s := p.newState("element type")
	s.printInline()
	s.skip("", lexer.AS)
	s.rule("type", typeRule)
	s.skip("", lexer.COLON)
	return s.done()
}

// (LSQUARE | LSQUARE_NEW) rawseq {COMMA rawseq} RSQUARE
func array(p *parser) ruleResult {
	s := p.newState("array literal")
	s.printInline()
	s.astNode(lexer.ARRAY)
	s.skip("", lexer.LSQUARE, lexer.LSQUARE_NEW)
	s.opt()
	s.rule("element type", arraytype)
	s.rule("array element", rawseq)
	s.whileToken(lexer.COMMA, func() { s.rule("array element", rawseq) })
	s.skip("", lexer.RSQUARE)
	return s.done()
}

// LSQUARE_NEW rawseq {COMMA rawseq} RSQUARE
func nextarray(p *parser) ruleResult {
	s := p.newState("array literal")
	s.printInline()
	s.astNode(lexer.ARRAY)
	s.skip("", lexer.LSQUARE_NEW)
	s.opt()
	s.rule("element type", arraytype)
	s.rule("array element", rawseq)
	s.whileToken(lexer.COMMA, func() { s.rule("array element", rawseq) })
	s.skip("", lexer.RSQUARE)
	return s.done()
}

// COMMA (rawseq | dontcare) {COMMA (rawseq | dontcare)}
func tuple(p *parser) ruleResult {
	s := p.newState("tuple")
	s.infixBuild()
	s.token("", lexer.COMMA)
	s.mapID(lexer.COMMA, lexer.TUPLE)
	s.rule("value", rawseq, dontcare)
	s.whileToken(lexer.COMMA, func() { s.rule("value", rawseq, dontcare) })
	return s.done()
}

// (LPAREN | LPAREN_NEW) (rawseq | dontcare) [tuple] RPAREN
func groupedexpr(p *parser) ruleResult {
	s := p.newState("parenthesised expression")
	s.printInline()
	s.skip("", lexer.LPAREN, lexer.LPAREN_NEW)
	s.rule("value", rawseq, dontcare)
	s.optNoDefault()
	s.rule("value", tuple)
	s.skip("", lexer.RPAREN)
	s.setFlag(ast.FlagInParens)
	return s.done()
}

// LPAREN_NEW (rawseq | dontcare) [tuple] RPAREN
func nextgroupedexpr(p *parser) ruleResult {
	s := p.newState("parenthesised expression")
	s.printInline()
	s.skip("", lexer.LPAREN_NEW)
	s.rule("value", rawseq, dontcare)
	s.optNoDefault()
	s.rule("value", tuple)
	s.skip("", lexer.RPAREN)
	s.setFlag(ast.FlagInParens)
	return s.done()
}

// THIS | TRUE | FALSE | INT | FLOAT | STRING
func literal(p *parser) ruleResult {
	s := p.newState("literal")
	s.token("literal", lexer.THIS, lexer.TRUE, lexer.FALSE, lexer.INT,
		lexer.FLOAT, lexer.STRING)
	return s.done()
}

func ref(p *parser) ruleResult {
	s := p.newState("reference")
	s.printInline()
	s.astNode(lexer.REFERENCE)
	s.token("name", lexer.ID)
	return s.done()
}

// AT (ID | STRING) [typeargs] (LPAREN | LPAREN_NEW) [positional] [named]
// RPAREN [QUESTION]
func ffi(p *parser) ruleResult {
	s := p.newState("FFI call")
	s.printInline()
	s.token("", lexer.AT)
	s.mapID(lexer.AT, lexer.FFICALL)
	s.token("ffi name", lexer.ID, lexer.STRING)
	s.opt()
	s.rule("return type", typeargs)
	s.skip("", lexer.LPAREN, lexer.LPAREN_NEW)
	s.opt()
	s.rule("ffi arguments", positional)
	s.opt()
	s.rule("ffi arguments", named)
	s.skip("", lexer.RPAREN)
	s.opt()
	s.token("", lexer.QUESTION)
	return s.done()
}

// ref | literal | tuple | array | object | lambda | ffi
func atom(p *parser) ruleResult {
	s := p.newState("value")
	s.rule("value", ref, literal, groupedexpr, array, object, lambdaRule, ffi)
	return s.done()
}

// ref | literal | tuple | array | object | lambda | ffi
func nextatom(p *parser) ruleResult {
	s := p.newState("value")
	s.rule("value", ref, literal, nextgroupedexpr, nextarray, object,
		lambdaRule, ffi)
	return s.done()
}

// DOT ID
func dot(p *parser) ruleResult {
	s := p.newState("member access")
	s.infixBuild()
	s.token("", lexer.DOT)
	s.token("member name", lexer.ID)
	return s.done()
}

// TILDE ID
func tilde(p *parser) ruleResult {
	s := p.newState("method reference")
	s.infixBuild()
	s.token("", lexer.TILDE)
	s.token("method name", lexer.ID)
	return s.done()
}

// typeargs
func qualify(p *parser) ruleResult {
	s := p.newState("type qualification")
	s.infixBuild()
	s.astNode(lexer.QUALIFY)
	s.rule("type arguments", typeargs)
	return s.done()
}

// LPAREN [positional] [named] RPAREN
func call(p *parser) ruleResult {
	s := p.newState("method call")
	s.infixReverse()
	s.astNode(lexer.CALL)
	s.skip("", lexer.LPAREN)
	s.opt()
	s.rule("argument", positional)
	s.opt()
	s.rule("argument", named)
	s.skip("", lexer.RPAREN)
	return s.done()
}

// atom {dot | tilde | qualify | call}
func postfix(p *parser) ruleResult {
	s := p.newState("postfix expression")
	s.rule("value", atom)
	s.seq("postfix expression", dot, tilde, qualify, call)
	return s.done()
}

// atom {dot | tilde | qualify | call}
func nextpostfix(p *parser) ruleResult {
	s := p.newState("postfix expression")
	s.rule("value", nextatom)
	s.seq("postfix expression", dot, tilde, qualify, call)
	return s.done()
}

// idseq
func idseqInSeq(p *parser) ruleResult {
	s := p.newState("variable name")
	s.astNode(lexer.SEQ)
	s.rule("variable name", idseq)
	return s.done()
}

// (LPAREN | LPAREN_NEW) idseq {COMMA idseq} RPAREN
func idseqmulti(p *parser) ruleResult {
	s := p.newState("variable name")
	s.printInline()
	s.astNode(lexer.TUPLE)
	s.skip("", lexer.LPAREN, lexer.LPAREN_NEW)
	s.rule("variable name", idseqInSeq)
	s.whileToken(lexer.COMMA, func() { s.rule("variable name", idseqInSeq) })
	s.skip("", lexer.RPAREN)
	return s.done()
}

// ID | '_'
func idseqsingle(p *parser) ruleResult {
	s := p.newState("variable name")
	s.printInline()
	s.astNode(lexer.LET)
	s.token("variable name", lexer.ID, lexer.DONTCARE)
	s.astNode(lexer.NONE) // Type
	return s.done()
}

// ID | '_' | (LPAREN | LPAREN_NEW) idseq {COMMA idseq} RPAREN
func idseq(p *parser) ruleResult {
	s := p.newState("variable name")
	s.rule("variable name", idseqsingle, idseqmulti)
	return s.done()
}

// (VAR | LET | EMBED) ID [COLON type]
func local(p *parser) ruleResult {
	s := p.newState("local variable")
	s.printInline()
	s.token("", lexer.VAR, lexer.LET, lexer.EMBED)
	s.token("variable name", lexer.ID)
	s.ifToken(lexer.COLON, func() { s.rule("variable type", typeRule) })
	return s.done()
}

// ELSE seq END
func elseclause(p *parser) ruleResult {
	s := p.newState("else clause")
	s.printInline()
	s.skip("", lexer.ELSE)
	s.rule("else value", seqRule)
	return s.done()
}

// ELSEIF rawseq THEN seq [elseif | (ELSE seq)]
func elseifRule(p *parser) ruleResult {
	s := p.newState("elseif")
	s.astNode(lexer.IF)
	s.scope()
	s.skip("", lexer.ELSEIF)
	s.rule("condition expression", rawseq)
	s.skip("", lexer.THEN)
	s.rule("then value", seqRule)
	s.opt()
	s.rule("else clause", elseifRule, elseclause)
	return s.done()
}

// IF rawseq THEN seq [elseif | (ELSE seq)] END
func cond(p *parser) ruleResult {
	s := p.newState("if expression")
	s.printInline()
	s.token("", lexer.IF)
	s.scope()
	s.rule("condition expression", rawseq)
	s.skip("", lexer.THEN)
	s.rule("then value", seqRule)
	s.opt()
	s.rule("else clause", elseifRule, elseclause)
	s.skip("", lexer.END)
	return s.done()
}

// ELSEIF rawseq [$EXTRA rawseq] THEN seq [elseifdef | (ELSE seq)]
func elseifdef(p *parser) ruleResult {
	s := p.newState("elseif")
	s.astNode(lexer.IFDEF)
	s.scope()
	s.skip("", lexer.ELSEIF)
	s.rule("condition expression", infixRule)
	s.ifToken(lexer.TEST_EXTRA, func() {
		s.rule("else condition", infixRule)
		s.setFlag(ast.FlagTestOnly)
	})
	s.skip("", lexer.THEN)
	s.rule("then value", seqRule)
	s.opt()
	s.rule("else clause", elseifdef, elseclause)
	// Order should be:
	// condition then_clause else_clause else_condition
	s.reorder(0, 2, 3, 1)
	return s.done()
}

// IF rawseq [$EXTRA rawseq] THEN seq [elseifdef | (ELSE seq)] END
func ifdefRule(p *parser) ruleResult {
	s := p.newState("ifdef expression")
	s.printInline()
	s.token("", lexer.IFDEF)
	s.scope()
	s.rule("condition expression", infixRule)
	s.ifToken(lexer.TEST_EXTRA, func() {
		s.rule("else condition", infixRule)
		s.setFlag(ast.FlagTestOnly)
	})
	s.skip("", lexer.THEN)
	s.rule("then value", seqRule)
	s.opt()
	s.rule("else clause", elseifdef, elseclause)
	s.skip("", lexer.END)
	// Order should be:
	// condition then_clause else_clause else_condition
	s.reorder(0, 2, 3, 1)
	return s.done()
}

// PIPE [infix] [WHERE rawseq] [DBLARROW rawseq]
func caseexpr(p *parser) ruleResult {
	s := p.newState("case")
	s.astNode(lexer.CASE)
	s.scope()
	s.skip("", lexer.PIPE)
	s.opt()
	s.rule("case pattern", infixRule)
	s.ifToken(lexer.WHERE, func() { s.rule("guard expression", rawseq) })
	s.ifToken(lexer.DBLARROW, func() { s.rule("case body", rawseq) })
	return s.done()
}

// {caseexpr}
func cases(p *parser) ruleResult {
	s := p.newState("cases")
	s.printInline()
	s.astNode(lexer.CASES)
	s.scope()
	s.seq("cases", caseexpr)
	return s.done()
}

// MATCH rawseq cases [ELSE seq] END
func matchRule(p *parser) ruleResult {
	s := p.newState("match expression")
	s.printInline()
	s.token("", lexer.MATCH)
	s.scope()
	s.rule("match expression", rawseq)
	s.rule("cases", cases)
	s.ifToken(lexer.ELSE, func() { s.rule("else clause", seqRule) })
	s.skip("", lexer.END)
	return s.done()
}

// WHILE rawseq DO seq [ELSE seq] END
func whileloop(p *parser) ruleResult {
	s := p.newState("while loop")
	s.printInline()
	s.token("", lexer.WHILE)
	s.scope()
	s.rule("condition expression", rawseq)
	s.skip("", lexer.DO)
	s.rule("while body", seqRule)
	s.ifToken(lexer.ELSE, func() { s.rule("else clause", seqRule) })
	s.skip("", lexer.END)
	return s.done()
}

// REPEAT seq UNTIL seq [ELSE seq] END
func repeatRule(p *parser) ruleResult {
	s := p.newState("repeat loop")
	s.printInline()
	s.token("", lexer.REPEAT)
	s.scope()
	s.rule("repeat body", seqRule)
	s.skip("", lexer.UNTIL)
	s.rule("condition expression", seqRule)
	s.ifToken(lexer.ELSE, func() { s.rule("else clause", seqRule) })
	s.skip("", lexer.END)
	return s.done()
}

// FOR idseq IN rawseq DO rawseq [ELSE seq] END
// Desugared by the syntax pass to a while loop over an iterator binding.
func forloop(p *parser) ruleResult {
	s := p.newState("for loop")
	s.printInline()
	s.token("", lexer.FOR)
	s.rule("iterator name", idseq)
	s.skip("", lexer.IN)
	s.rule("iterator", rawseq)
	s.skip("", lexer.DO)
	s.rule("for body", rawseq)
	s.ifToken(lexer.ELSE, func() { s.rule("else clause", seqRule) })
	s.skip("", lexer.END)
	return s.done()
}

// idseq = rawseq
func withelem(p *parser) ruleResult {
	s := p.newState("with expression")
	s.astNode(lexer.SEQ)
	s.rule("with name", idseq)
	s.skip("", lexer.ASSIGN)
	s.rule("initialiser", rawseq)
	return s.done()
}

// withelem {COMMA withelem}
func withexpr(p *parser) ruleResult {
	s := p.newState("with expression")
	s.printInline()
	s.astNode(lexer.SEQ)
	s.rule("with expression", withelem)
	s.whileToken(lexer.COMMA, func() { s.rule("with expression", withelem) })
	return s.done()
}

// WITH withexpr DO rawseq [ELSE rawseq] END
// Desugared by the syntax pass to try/dispose.
func withRule(p *parser) ruleResult {
	s := p.newState("with expression")
	s.printInline()
	s.token("", lexer.WITH)
	s.rule("with expression", withexpr)
	s.skip("", lexer.DO)
	s.rule("with body", rawseq)
	s.ifToken(lexer.ELSE, func() { s.rule("else clause", rawseq) })
	s.skip("", lexer.END)
	return s.done()
}

// TRY seq [ELSE seq] [THEN seq] END
func tryBlock(p *parser) ruleResult {
	s := p.newState("try expression")
	s.printInline()
	s.token("", lexer.TRY)
	s.rule("try body", seqRule)
	s.ifToken(lexer.ELSE, func() { s.rule("try else body", seqRule) })
	s.ifToken(lexer.THEN, func() { s.rule("try then body", seqRule) })
	s.skip("", lexer.END)
	return s.done()
}

// $TRY_NO_CHECK seq [ELSE seq] [THEN seq] END
func testTryBlock(p *parser) ruleResult {
	s := p.newState("try expression")
	s.printInline()
	s.token("", lexer.TEST_TRY_NO_CHECK)
	s.mapID(lexer.TEST_TRY_NO_CHECK, lexer.TRY_NO_CHECK)
	s.rule("try body", seqRule)
	s.ifToken(lexer.ELSE, func() { s.rule("try else body", seqRule) })
	s.ifToken(lexer.THEN, func() { s.rule("try then body", seqRule) })
	s.skip("", lexer.END)
	s.setFlag(ast.FlagTestOnly)
	return s.done()
}

// RECOVER [CAP] rawseq END
func recoverRule(p *parser) ruleResult {
	s := p.newState("recover expression")
	s.printInline()
	s.token("", lexer.RECOVER)
	s.scope()
	s.opt()
	s.rule("capability", cap)
	s.rule("recover body", rawseq)
	s.skip("", lexer.END)
	return s.done()
}

// $BORROWED
func testBorrowed(p *parser) ruleResult {
	s := p.newState("borrowed")
	s.printInline()
	s.token("", lexer.TEST_BORROWED)
	s.mapID(lexer.TEST_BORROWED, lexer.BORROWED)
	s.setFlag(ast.FlagTestOnly)
	return s.done()
}

// CONSUME [cap | test_borrowed] term
func consumeRule(p *parser) ruleResult {
	s := p.newState("consume")
	s.printInline()
	s.token("consume", lexer.CONSUME)
	s.opt()
	s.rule("capability", cap, testBorrowed)
	s.rule("expression", term)
	return s.done()
}

// (NOT | AMP | MINUS | MINUS_NEW | DIGESTOF) term
func prefix(p *parser) ruleResult {
	s := p.newState("prefix expression")
	s.printInline()
	s.token("prefix", lexer.NOT, lexer.AMP, lexer.MINUS, lexer.MINUS_NEW,
		lexer.DIGESTOF)
	s.mapID(lexer.AMP, lexer.ADDRESS)
	s.mapID(lexer.MINUS, lexer.UNARY_MINUS)
	s.mapID(lexer.MINUS_NEW, lexer.UNARY_MINUS)
	s.rule("expression", term)
	return s.done()
}

// (NOT | AMP | MINUS_NEW | DIGESTOF) term
func nextprefix(p *parser) ruleResult {
	s := p.newState("prefix expression")
	s.printInline()
	s.token("prefix", lexer.NOT, lexer.AMP, lexer.MINUS_NEW, lexer.DIGESTOF)
	s.mapID(lexer.AMP, lexer.ADDRESS)
	s.mapID(lexer.MINUS_NEW, lexer.UNARY_MINUS)
	s.rule("expression", term)
	return s.done()
}

// $IFDEFNOT term
func testPrefix(p *parser) ruleResult {
	s := p.newState("prefix expression")
	s.printInline()
	s.token("", lexer.IFDEFNOT)
	s.rule("expression", term)
	s.setFlag(ast.FlagTestOnly)
	return s.done()
}

// $SEQ '(' rawseq ')'
// For testing only, thrown out by the syntax pass
func testSeq(p *parser) ruleResult {
	s := p.newState("sequence")
	s.printInline()
	s.skip("", lexer.TEST_SEQ)
	s.skip("", lexer.LPAREN)
	s.rule("sequence", rawseq)
	s.skip("", lexer.RPAREN)
	s.setFlag(ast.FlagTestOnly)
	return s.done()
}

// $NOSEQ '(' infix ')'
// For testing only, thrown out by the syntax pass
func testNoseq(p *parser) ruleResult {
	s := p.newState("sequence")
	s.printInline()
	s.skip("", lexer.TEST_NO_SEQ)
	s.skip("", lexer.LPAREN)
	s.rule("sequence", infixRule)
	s.skip("", lexer.RPAREN)
	s.setFlag(ast.FlagTestOnly)
	return s.done()
}

// $SCOPE '(' rawseq ')'
// For testing only, thrown out by the syntax pass
func testSeqScope(p *parser) ruleResult {
	s := p.newState("sequence")
	s.printInline()
	s.skip("", lexer.TEST_SEQ_SCOPE)
	s.skip("", lexer.LPAREN)
	s.rule("sequence", rawseq)
	s.skip("", lexer.RPAREN)
	s.setFlag(ast.FlagTestOnly)
	s.scope()
	return s.done()
}

// $IFDEFFLAG id
// For testing only, thrown out by the syntax pass
func testIfdefFlag(p *parser) ruleResult {
	s := p.newState("compile flag")
	s.printInline()
	s.token("", lexer.IFDEFFLAG)
	s.token("", lexer.ID)
	s.setFlag(ast.FlagTestOnly)
	return s.done()
}

// local | cond | ifdef | match | whileloop | repeat | forloop | with | try |
// recover | consume | prefix | postfix | test_<various>
func term(p *parser) ruleResult {
	s := p.newState("value")
	s.rule("value", local, cond, ifdefRule, matchRule, whileloop, repeatRule,
		forloop, withRule, tryBlock, recoverRule, consumeRule, prefix,
		postfix, testSeq, testNoseq, testSeqScope, testTryBlock,
		testIfdefFlag, testPrefix)
	return s.done()
}

// local | cond | ifdef | match | whileloop | repeat | forloop | with | try |
// recover | consume | prefix | postfix | test_<various>
func nextterm(p *parser) ruleResult {
	s := p.newState("value")
	s.rule("value", local, cond, ifdefRule, matchRule, whileloop, repeatRule,
		forloop, withRule, tryBlock, recoverRule, consumeRule, nextprefix,
		nextpostfix, testSeq, testNoseq, testSeqScope, testTryBlock,
		testIfdefFlag, testPrefix)
	return s.done()
}

// AS type
// Desugared by the syntax pass to a match on the type.
func asop(p *parser) ruleResult {
	s := p.newState("as expression")
	s.printInline()
	s.infixBuild()
	s.token("as", lexer.AS)
	s.rule("type", typeRule)
	return s.done()
}

// BINOP term
func binop(p *parser) ruleResult {
	s := p.newState("binary operation")
	s.infixBuild()
	s.token("binary operator",
		lexer.AND, lexer.OR, lexer.XOR,
		lexer.PLUS, lexer.MINUS, lexer.MULTIPLY, lexer.DIVIDE, lexer.MOD,
		lexer.LSHIFT, lexer.RSHIFT,
		lexer.IS, lexer.ISNT, lexer.EQ, lexer.NE, lexer.LT, lexer.LE,
		lexer.GE, lexer.GT)
	s.rule("value", term)
	return s.done()
}

// TEST_BINOP term
// For testing only, thrown out by the syntax pass
func testBinop(p *parser) ruleResult {
	s := p.newState("binary operation")
	s.infixBuild()
	s.token("binary operator", lexer.IFDEFAND, lexer.IFDEFOR)
	s.rule("value", term)
	s.setFlag(ast.FlagTestOnly)
	return s.done()
}

// term {binop | asop}
func infixRule(p *parser) ruleResult {
	s := p.newState("value")
	s.rule("value", term)
	s.seq("value", binop, asop, testBinop)
	return s.done()
}

// nextterm {binop | asop}
func nextinfix(p *parser) ruleResult {
	s := p.newState("value")
	s.rule("value", nextterm)
	s.seq("value", binop, asop, testBinop)
	return s.done()
}

// ASSIGNOP assignment
func assignop(p *parser) ruleResult {
	s := p.newState("assignment")
	s.printInline()
	s.infixReverse()
	s.token("assign operator", lexer.ASSIGN)
	s.rule("assign rhs", assignment)
	return s.done()
}

// infix [assignop]
func assignment(p *parser) ruleResult {
	s := p.newState("value")
	s.rule("value", infixRule)
	s.optNoDefault()
	s.rule("value", assignop)
	return s.done()
}

// nextinfix [assignop]
func nextassignment(p *parser) ruleResult {
	s := p.newState("value")
	s.rule("value", nextinfix)
	s.optNoDefault()
	s.rule("value", assignop)
	return s.done()
}

// RETURN | BREAK | CONTINUE | ERROR | COMPILE_INTRINSIC | COMPILE_ERROR
func jump(p *parser) ruleResult {
	s := p.newState("statement")
	s.token("statement", lexer.RETURN, lexer.BREAK, lexer.CONTINUE,
		lexer.ERROR, lexer.COMPILE_INTRINSIC, lexer.COMPILE_ERROR)
	s.opt()
	s.rule("return value", rawseq)
	return s.done()
}

// SEMI
func semi(p *parser) ruleResult {
	s := p.newState("semicolon")
	if p.atNewline() {
		s.nextFlagsSet(ast.FlagBadSemi)
	} else {
		s.nextFlagsSet(0)
	}
	s.token("", lexer.SEMI)
	if p.atNewline() {
		s.setFlag(ast.FlagBadSemi)
	}
	return s.done()
}

// semi (exprseq | jump)
func semiexpr(p *parser) ruleResult {
	s := p.newState("expression")
	s.astNode(lexer.FLATTEN)
	s.rule("semicolon", semi)
	s.rule("value", exprseq, jump)
	return s.done()
}

// nextexprseq | jump
func nosemi(p *parser) ruleResult {
	s := p.newState("expression")
	if p.atNewline() {
		s.nextFlagsSet(0)
	} else {
		s.nextFlagsSet(ast.FlagMissingSemi)
	}
	s.rule("value", nextexprseq, jump)
	return s.done()
}

// nextassignment (semiexpr | nosemi)
func nextexprseq(p *parser) ruleResult {
	s := p.newState("expression")
	s.astNode(lexer.FLATTEN)
	s.rule("value", nextassignment)
	s.optNoDefault()
	s.rule("value", semiexpr, nosemi)
	s.nextFlagsSet(0)
	return s.done()
}

// assignment (semiexpr | nosemi)
func exprseq(p *parser) ruleResult {
	s := p.newState("expression")
	s.astNode(lexer.FLATTEN)
	s.rule("value", assignment)
	s.optNoDefault()
	s.rule("value", semiexpr, nosemi)
	s.nextFlagsSet(0)
	return s.done()
}

// (exprseq | jump)
func rawseq(p *parser) ruleResult {
	s := p.newState("sequence")
	s.astNode(lexer.SEQ)
	s.rule("value", exprseq, jump)
	return s.done()
}

// rawseq
func seqRule(p *parser) ruleResult {
	s := p.newState("sequence")
	s.rule("value", rawseq)
	s.scope()
	return s.done()
}

// (FUN | BE | NEW) [CAP] ID [typeparams] (LPAREN | LPAREN_NEW) [params]
// RPAREN [COLON type] [QUESTION] [STRING] [DBLARROW rawseq]
func method(p *parser) ruleResult {
	s := p.newState("method")
	s.token("", lexer.FUN, lexer.BE, lexer.NEW)
	s.scope()
	s.opt()
	s.rule("capability", cap)
	s.token("method name", lexer.ID)
	s.opt()
	s.rule("type parameters", typeparams)
	s.skip("", lexer.LPAREN, lexer.LPAREN_NEW)
	s.opt()
	s.rule("parameters", params)
	s.skip("", lexer.RPAREN)
	s.ifToken(lexer.COLON, func() { s.rule("return type", typeRule) })
	s.opt()
	s.token("", lexer.QUESTION)
	s.opt()
	s.token("", lexer.STRING)
	s.ifToken(lexer.DBLARROW, func() { s.rule("method body", rawseq) })
	// Order should be:
	// cap id type_params params return_type error body docstring
	s.reorder(0, 1, 2, 3, 4, 5, 7, 6)
	return s.done()
}

// (VAR | LET | EMBED) ID COLON type [DELEGATE type] [ASSIGN infix]
func field(p *parser) ruleResult {
	s := p.newState("field")
	s.token("", lexer.VAR, lexer.LET, lexer.EMBED)
	s.mapID(lexer.VAR, lexer.FVAR)
	s.mapID(lexer.LET, lexer.FLET)
	s.token("field name", lexer.ID)
	s.skip("", lexer.COLON)
	s.rule("field type", typeRule)
	s.ifToken(lexer.DELEGATE, func() { s.rule("delegated type", provides) })
	s.ifToken(lexer.ASSIGN, func() { s.rule("field value", infixRule) })
	// Order should be:
	// id type value delegate_type
	s.reorder(0, 1, 3, 2)
	return s.done()
}

// {field} {method}
func members(p *parser) ruleResult {
	s := p.newState("members")
	s.astNode(lexer.MEMBERS)
	s.seq("field", field)
	s.seq("method", method)
	return s.done()
}

// (TYPE | INTERFACE | TRAIT | PRIMITIVE | STRUCT | CLASS | ACTOR) [AT] [CAP]
// ID [typeparams] [IS type] [STRING] members
func classDef(p *parser) ruleResult {
	s := p.newState("entity definition")
	s.restartAt(lexer.TYPE, lexer.INTERFACE, lexer.TRAIT, lexer.PRIMITIVE,
		lexer.STRUCT, lexer.CLASS, lexer.ACTOR)
	s.token("entity", lexer.TYPE, lexer.INTERFACE, lexer.TRAIT,
		lexer.PRIMITIVE, lexer.STRUCT, lexer.CLASS, lexer.ACTOR)
	s.scope()
	s.opt()
	s.token("", lexer.AT)
	s.opt()
	s.rule("capability", cap)
	s.token("name", lexer.ID)
	s.opt()
	s.rule("type parameters", typeparams)
	s.ifToken(lexer.IS, func() { s.rule("provided type", provides) })
	s.opt()
	s.token("docstring", lexer.STRING)
	s.rule("members", members)
	// Order should be:
	// id type_params cap provides members c_api docstring
	s.reorder(2, 3, 1, 4, 6, 0, 5)
	return s.done()
}

// STRING
func useURI(p *parser) ruleResult {
	s := p.newState("use URI")
	s.printInline()
	s.token("", lexer.STRING)
	return s.done()
}

// AT (ID | STRING) typeargs (LPAREN | LPAREN_NEW) [params] RPAREN [QUESTION]
func useFFI(p *parser) ruleResult {
	s := p.newState("FFI declaration")
	s.token("", lexer.AT)
	s.mapID(lexer.AT, lexer.FFIDECL)
	s.scope()
	s.token("ffi name", lexer.ID, lexer.STRING)
	s.rule("return type", typeargs)
	s.skip("", lexer.LPAREN, lexer.LPAREN_NEW)
	s.opt()
	s.rule("ffi parameters", params)
	s.astNode(lexer.NONE) // Named parameters
	s.skip("", lexer.RPAREN)
	s.opt()
	s.token("", lexer.QUESTION)
	return s.done()
}

// ID ASSIGN
func useName(p *parser) ruleResult {
	s := p.newState("use name")
	s.printInline()
	s.token("", lexer.ID)
	s.skip("", lexer.ASSIGN)
	return s.done()
}

// USE [ID ASSIGN] (STRING | USE_FFI) [IF infix]
func use(p *parser) ruleResult {
	s := p.newState("use command")
	s.restartAt(lexer.USE, lexer.TYPE, lexer.INTERFACE, lexer.TRAIT,
		lexer.PRIMITIVE, lexer.STRUCT, lexer.CLASS, lexer.ACTOR)
	s.token("", lexer.USE)
	s.opt()
	s.rule("name", useName)
	s.rule("specifier", useURI, useFFI)
	s.ifToken(lexer.IF, func() { s.rule("use condition", infixRule) })
	return s.done()
}

// declStart is the recovery set for stray tokens between top-level
// declarations.
var declStart = []lexer.TokenType{
	lexer.USE, lexer.TYPE, lexer.INTERFACE, lexer.TRAIT, lexer.PRIMITIVE,
	lexer.STRUCT, lexer.CLASS, lexer.ACTOR,
}

// {use} {class}
func moduleRule(p *parser) ruleResult {
	const expected = "type, interface, trait, primitive, class, actor, member or method"

	s := p.newState("module")
	s.astNode(lexer.MODULE)
	s.scope()
	s.optNoDefault()
	s.token("package docstring", lexer.STRING)

	for {
		s.seq("use command", use)
		s.seq("type, interface, trait, primitive, class or actor definition",
			classDef)
		if s.status != stOK || p.token.Type == lexer.EOF {
			break
		}
		// Stray token between declarations: report it once, mark the
		// spot, and resynchronize at the next declaration keyword. A
		// lexically illegal token was already reported by the scanner.
		if p.token.Type != lexer.ILLEGAL {
			p.errorExpected(expected)
		}
		s.add(ast.New(lexer.ERRORNODE, p.token.Pos))
		p.advance()
		p.skipTo(declStart)
	}

	s.skip(expected, lexer.EOF)
	return s.done()
}
