package lexer

import "github.com/rovelang/go-rove/internal/stringtab"

// TokenType identifies a lexical token or an abstract AST node kind. The
// parser reuses this enumeration as the AST kind tag, so the values cover
// concrete lexemes, keywords, the synthetic test-only tokens, and the
// abstract structural kinds that only ever appear as tree nodes.
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	NEWLINE // virtual: guards test "is the current token first on its line"

	// Identifiers and literals
	ID
	INT
	FLOAT
	STRING
	TRUE
	FALSE

	// Symbols
	LPAREN
	RPAREN
	LSQUARE
	RSQUARE
	COMMA
	ARROW    // ->
	DBLARROW // =>
	DOT
	TILDE
	COLON
	SEMI
	ASSIGN
	PLUS
	MINUS
	MULTIPLY
	DIVIDE
	MOD
	LSHIFT
	RSHIFT
	EQ
	NE
	LT
	LE
	GE
	GT
	PIPE
	AMP
	EPHEMERAL // ^
	BORROWED  // !
	QUESTION
	ELLIPSIS
	DONTCARE // _
	AT

	// Newline-sensitive variants: same lexeme, first token on its line
	LPAREN_NEW
	LSQUARE_NEW
	MINUS_NEW

	// Keywords
	USE
	TYPE
	INTERFACE
	TRAIT
	PRIMITIVE
	STRUCT
	CLASS
	ACTOR
	OBJECT
	LAMBDA
	DELEGATE
	AS
	IS
	ISNT
	VAR
	LET
	EMBED
	NEW
	FUN
	BE
	ISO
	TRN
	REF
	VAL
	BOX
	TAG
	CAP_READ  // #read
	CAP_SEND  // #send
	CAP_SHARE // #share
	CAP_ANY   // #any
	THIS
	RETURN
	BREAK
	CONTINUE
	CONSUME
	RECOVER
	IF
	IFDEF
	THEN
	ELSE
	ELSEIF
	END
	WHILE
	DO
	REPEAT
	UNTIL
	FOR
	IN
	MATCH
	WHERE
	TRY
	WITH
	ERROR
	COMPILE_INTRINSIC
	COMPILE_ERROR
	NOT
	AND
	OR
	XOR
	DIGESTOF

	// Test-only tokens, produced only with WithTestSymbols(true). The parser
	// marks everything built from them TEST_ONLY; the normalization pass
	// deletes them before semantic analysis.
	TEST_SEQ
	TEST_NO_SEQ
	TEST_SEQ_SCOPE
	TEST_TRY_NO_CHECK
	TEST_BORROWED
	TEST_UPDATEARG
	TEST_EXTRA
	IFDEFAND
	IFDEFOR
	IFDEFNOT
	IFDEFFLAG

	// Abstract kinds: never lexed, only built by grammar rules or later passes.
	NONE
	FLATTEN
	MODULE
	MEMBERS
	FVAR
	FLET
	FFIDECL
	FFICALL
	TYPEPARAMS
	TYPEPARAM
	PARAMS
	PARAM
	TYPEARGS
	POSITIONALARGS
	NAMEDARGS
	NAMEDARG
	UPDATEARG
	SEQ
	UNIONTYPE
	ISECTTYPE
	TUPLETYPE
	NOMINAL
	THISTYPE
	BOXTYPE
	TUPLE
	ARRAY
	CASES
	CASE
	REFERENCE
	QUALIFY
	CALL
	PROVIDES
	LAMBDACAPTURES
	LAMBDACAPTURE
	UNARY_MINUS
	TRY_NO_CHECK
	ADDRESS
	ERRORNODE

	// Abstract kinds set by the semantic annotation pass when it resolves a
	// member access to its definition.
	NEWREF
	NEWBEREF
	BEREF
	FUNREF
	FVARREF
	FLETREF
)

// tokenNames maps every enumeration value to its display name. Concrete
// lexemes use their source spelling; keywords and abstract kinds use a
// lowercase tag. Used by error messages and the AST printer.
var tokenNames = map[TokenType]string{
	ILLEGAL: "illegal", EOF: "end of file", NEWLINE: "newline",

	ID: "id", INT: "int", FLOAT: "float", STRING: "string",
	TRUE: "true", FALSE: "false",

	LPAREN: "(", RPAREN: ")", LSQUARE: "[", RSQUARE: "]", COMMA: ",",
	ARROW: "->", DBLARROW: "=>", DOT: ".", TILDE: "~", COLON: ":",
	SEMI: ";", ASSIGN: "=", PLUS: "+", MINUS: "-", MULTIPLY: "*",
	DIVIDE: "/", MOD: "%", LSHIFT: "<<", RSHIFT: ">>", EQ: "==",
	NE: "!=", LT: "<", LE: "<=", GE: ">=", GT: ">", PIPE: "|", AMP: "&",
	EPHEMERAL: "^", BORROWED: "!", QUESTION: "?", ELLIPSIS: "...",
	DONTCARE: "_", AT: "@",

	LPAREN_NEW: "(", LSQUARE_NEW: "[", MINUS_NEW: "-",

	USE: "use", TYPE: "type", INTERFACE: "interface", TRAIT: "trait",
	PRIMITIVE: "primitive", STRUCT: "struct", CLASS: "class", ACTOR: "actor",
	OBJECT: "object", LAMBDA: "lambda", DELEGATE: "delegate", AS: "as",
	IS: "is", ISNT: "isnt", VAR: "var", LET: "let", EMBED: "embed",
	NEW: "new", FUN: "fun", BE: "be", ISO: "iso", TRN: "trn", REF: "ref",
	VAL: "val", BOX: "box", TAG: "tag", CAP_READ: "#read",
	CAP_SEND: "#send", CAP_SHARE: "#share", CAP_ANY: "#any", THIS: "this",
	RETURN: "return", BREAK: "break", CONTINUE: "continue",
	CONSUME: "consume", RECOVER: "recover", IF: "if", IFDEF: "ifdef",
	THEN: "then", ELSE: "else", ELSEIF: "elseif", END: "end",
	WHILE: "while", DO: "do", REPEAT: "repeat", UNTIL: "until", FOR: "for",
	IN: "in", MATCH: "match", WHERE: "where", TRY: "try", WITH: "with",
	ERROR: "error", COMPILE_INTRINSIC: "compile_intrinsic",
	COMPILE_ERROR: "compile_error", NOT: "not", AND: "and", OR: "or",
	XOR: "xor", DIGESTOF: "digestof",

	TEST_SEQ: "$seq", TEST_NO_SEQ: "$noseq", TEST_SEQ_SCOPE: "$scope",
	TEST_TRY_NO_CHECK: "$try_no_check", TEST_BORROWED: "$borrowed",
	TEST_UPDATEARG: "$updatearg", TEST_EXTRA: "$extra",
	IFDEFAND: "$ifdefand", IFDEFOR: "$ifdefor", IFDEFNOT: "$ifdefnot",
	IFDEFFLAG: "$flag",

	NONE: "x", FLATTEN: "flatten", MODULE: "module", MEMBERS: "members",
	FVAR: "fvar", FLET: "flet", FFIDECL: "ffidecl", FFICALL: "fficall",
	TYPEPARAMS: "typeparams", TYPEPARAM: "typeparam", PARAMS: "params",
	PARAM: "param", TYPEARGS: "typeargs", POSITIONALARGS: "positionalargs",
	NAMEDARGS: "namedargs", NAMEDARG: "namedarg", UPDATEARG: "updatearg",
	SEQ: "seq", UNIONTYPE: "uniontype", ISECTTYPE: "isecttype",
	TUPLETYPE: "tupletype", NOMINAL: "nominal", THISTYPE: "thistype",
	BOXTYPE: "boxtype", TUPLE: "tuple", ARRAY: "array", CASES: "cases",
	CASE: "case", REFERENCE: "reference", QUALIFY: "qualify", CALL: "call",
	PROVIDES: "provides", LAMBDACAPTURES: "lambdacaptures",
	LAMBDACAPTURE: "lambdacapture", UNARY_MINUS: "unary-",
	TRY_NO_CHECK: "try_no_check", ADDRESS: "addressof",
	ERRORNODE: "error-node",

	NEWREF: "newref", NEWBEREF: "newberef", BEREF: "beref",
	FUNREF: "funref", FVARREF: "fvarref", FLETREF: "fletref",
}

// String returns the display name of the token type.
func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "unknown"
}

// keywords maps identifier spellings to keyword token types.
var keywords = map[string]TokenType{
	"use": USE, "type": TYPE, "interface": INTERFACE, "trait": TRAIT,
	"primitive": PRIMITIVE, "struct": STRUCT, "class": CLASS,
	"actor": ACTOR, "object": OBJECT, "lambda": LAMBDA,
	"delegate": DELEGATE, "as": AS, "is": IS, "isnt": ISNT, "var": VAR,
	"let": LET, "embed": EMBED, "new": NEW, "fun": FUN, "be": BE,
	"iso": ISO, "trn": TRN, "ref": REF, "val": VAL, "box": BOX,
	"tag": TAG, "this": THIS, "return": RETURN, "break": BREAK,
	"continue": CONTINUE, "consume": CONSUME, "recover": RECOVER,
	"if": IF, "ifdef": IFDEF, "then": THEN, "else": ELSE,
	"elseif": ELSEIF, "end": END, "while": WHILE, "do": DO,
	"repeat": REPEAT, "until": UNTIL, "for": FOR, "in": IN,
	"match": MATCH, "where": WHERE, "try": TRY, "with": WITH,
	"error": ERROR, "compile_intrinsic": COMPILE_INTRINSIC,
	"compile_error": COMPILE_ERROR, "not": NOT, "and": AND, "or": OR,
	"xor": XOR, "digestof": DIGESTOF,
	"true": TRUE, "false": FALSE,
}

// hashCaps maps '#'-prefixed generic capability spellings.
var hashCaps = map[string]TokenType{
	"#read": CAP_READ, "#send": CAP_SEND, "#share": CAP_SHARE,
	"#any": CAP_ANY,
}

// testSymbols maps '$'-prefixed test-only spellings. Only recognized when
// the scanner was built with WithTestSymbols(true).
var testSymbols = map[string]TokenType{
	"$seq": TEST_SEQ, "$noseq": TEST_NO_SEQ, "$scope": TEST_SEQ_SCOPE,
	"$try_no_check": TEST_TRY_NO_CHECK, "$borrowed": TEST_BORROWED,
	"$updatearg": TEST_UPDATEARG, "$extra": TEST_EXTRA,
	"$ifdefand": IFDEFAND, "$ifdefor": IFDEFOR, "$ifdefnot": IFDEFNOT,
	"$flag": IFDEFFLAG,
}

// LookupIdent returns the keyword token type for an identifier spelling, or
// ID if it is not a keyword.
func LookupIdent(ident string) TokenType {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return ID
}

// Position is a location in a source file. Column counts runes from the
// start of the line, 1-based. Offset is the byte offset into the input.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token is a single lexical token.
type Token struct {
	Type        TokenType
	Literal     string  // raw text of the lexeme
	Name        *string // interned handle for ID and STRING tokens
	Pos         Position
	FirstOnLine bool // true when this token is the first on its physical line
}

// NewToken builds a token of the given type, interning the literal when the
// type carries a name.
func NewToken(t TokenType, literal string, pos Position) Token {
	tok := Token{Type: t, Literal: literal, Pos: pos}
	switch t {
	case ID, STRING:
		tok.Name = stringtab.Intern(literal)
	}
	return tok
}
