package ast

import (
	"bytes"
	"flux/internal/token"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

// ValueExpr is an immutable expression tree node. Non-leaf nodes exclusively
// own their children; a tree is never shared or mutated after parsing.
type ValueExpr interface {
	Node
	valueExpr()
}

// Transformer is an ordered sequence of named assignments. Source-level
// dictionary blocks are purely punctuation: all blocks concatenate into this
// single flat sequence in encounter order.
type Transformer struct {
	Modifiers []*Modifier
}

func (t *Transformer) TokenLiteral() string {
	if len(t.Modifiers) > 0 {
		return t.Modifiers[0].TokenLiteral()
	}
	return ""
}

func (t *Transformer) String() string {
	var out bytes.Buffer

	parts := []string{}
	for _, m := range t.Modifiers {
		parts = append(parts, m.String())
	}

	out.WriteString("{ ")
	out.WriteString(strings.Join(parts, ", "))
	out.WriteString(" }")

	return out.String()
}

// Modifier is one `name = expression` assignment. Keys need not be unique
// within a transformer; later assignments overwrite earlier ones at
// realization time.
type Modifier struct {
	Token token.Token // the token.IDENT token of the key
	Key   string
	Value ValueExpr
}

func (m *Modifier) TokenLiteral() string { return m.Token.Literal }
func (m *Modifier) String() string {
	var out bytes.Buffer

	out.WriteString(m.Key)
	out.WriteString(" = ")
	if m.Value != nil {
		out.WriteString(m.Value.String())
	}

	return out.String()
}

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (n *NumberLiteral) valueExpr()           {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return n.Token.Literal }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (i *IntegerLiteral) valueExpr()           {}
func (i *IntegerLiteral) TokenLiteral() string { return i.Token.Literal }
func (i *IntegerLiteral) String() string       { return i.Token.Literal }

type StringLiteral struct {
	Token token.Token
	Value string
}

// stringEscaper mirrors the escape sequences the lexer recognizes, so a
// rendered literal lexes back to the same value.
var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

func (s *StringLiteral) valueExpr()           {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string       { return `"` + stringEscaper.Replace(s.Value) + `"` }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) valueExpr()           {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) String() string       { return b.Token.Literal }

// ThisRef references a key already inserted into the accumulator by an
// earlier modifier of the same realization pass.
type ThisRef struct {
	Token token.Token // the token.THIS token
	Name  string
}

func (tr *ThisRef) valueExpr()           {}
func (tr *ThisRef) TokenLiteral() string { return tr.Token.Literal }
func (tr *ThisRef) String() string       { return "this." + tr.Name }

// SemiGlobalRef references a named, still-unevaluated expression in the
// caller-supplied environment.
type SemiGlobalRef struct {
	Token token.Token // the token.IDENT token
	Name  string
}

func (sg *SemiGlobalRef) valueExpr()           {}
func (sg *SemiGlobalRef) TokenLiteral() string { return sg.Token.Literal }
func (sg *SemiGlobalRef) String() string       { return sg.Name }

// InfixExpression covers the four arithmetic forms `+ - * /`.
type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     ValueExpr
	Operator string
	Right    ValueExpr
}

func (ie *InfixExpression) valueExpr()           {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// OscExpression is a phase oscillator: sin(freq * 2π * nCycles).
type OscExpression struct {
	Token token.Token // the token.OSC token
	Freq  ValueExpr
}

func (o *OscExpression) valueExpr()           {}
func (o *OscExpression) TokenLiteral() string { return o.Token.Literal }
func (o *OscExpression) String() string {
	var out bytes.Buffer

	out.WriteString("osc(")
	out.WriteString(o.Freq.String())
	out.WriteString(")")

	return out.String()
}

// RangeExpression rescales a bipolar [-1, 1] input into [lo, hi].
type RangeExpression struct {
	Token token.Token // the token.RANGE token
	Lo    ValueExpr
	Hi    ValueExpr
	X     ValueExpr
}

func (r *RangeExpression) valueExpr()           {}
func (r *RangeExpression) TokenLiteral() string { return r.Token.Literal }
func (r *RangeExpression) String() string {
	var out bytes.Buffer

	out.WriteString("range(")
	out.WriteString(r.Lo.String())
	out.WriteString(", ")
	out.WriteString(r.Hi.String())
	out.WriteString(", ")
	out.WriteString(r.X.String())
	out.WriteString(")")

	return out.String()
}
