package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/rovelang/go-rove/internal/lexer"
)

// Print renders the subtree as a single-line parenthesized dump. Identifiers
// print as "(id name)", string literals quoted, int and float literals as
// their text, other leaves as their kind tag, and interior nodes as
// "(kind children...)". This is the canonical debug
// form used by snapshot tests; it is not source text.
func Print(n *Node) string {
	var sb strings.Builder
	printNode(&sb, n)
	return sb.String()
}

func printNode(sb *strings.Builder, n *Node) {
	if n == nil {
		sb.WriteString("-")
		return
	}

	if n.child == nil {
		sb.WriteString(leafText(n))
		return
	}

	sb.WriteString("(")
	sb.WriteString(leafText(n))
	for c := n.child; c != nil; c = c.sibling {
		sb.WriteString(" ")
		printNode(sb, c)
	}
	sb.WriteString(")")
}

func leafText(n *Node) string {
	switch n.kind {
	case lexer.ID:
		return "(id " + n.token.Literal + ")"
	case lexer.STRING:
		return fmt.Sprintf("%q", n.token.Literal)
	case lexer.INT, lexer.FLOAT:
		return n.token.Literal
	}
	return n.kind.String()
}

// Fprint writes an indented multi-line dump of the subtree, one node per
// line, two spaces per depth level.
func Fprint(w io.Writer, n *Node) {
	fprintNode(w, n, 0)
}

func fprintNode(w io.Writer, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n == nil {
		fmt.Fprintf(w, "%s-\n", indent)
		return
	}

	fmt.Fprintf(w, "%s%s", indent, leafText(n))
	if n.typ != nil {
		fmt.Fprintf(w, " [type %s]", Print(n.typ))
	}
	fmt.Fprintln(w)

	for c := n.child; c != nil; c = c.sibling {
		fprintNode(w, c, depth+1)
	}
}
