// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package content

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// Facts is the character state a condition can observe.
type Facts interface {
	Level() uint8
	Race() uint8
	Class() uint8
	HasRewardedQuest(id uint32) bool
	HasAura(spell uint32) bool
	HasSpell(spell uint32) bool
	HasItem(entry uint32) bool
	HasAchievement(id uint32) bool
}

var conditionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `\d+`},
	{Name: "Op", Pattern: `>=|<=|==|!=|>|<`},
	{Name: "And", Pattern: `&&`},
	{Name: "Or", Pattern: `\|\|`},
	{Name: "Not", Pattern: `!`},
	{Name: "Ident", Pattern: `[a-z_][a-z0-9_]*`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Grammar:
//
//	expr    = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" expr ")" | ident "(" int ")" | ident op int
type orExpr struct {
	Terms []*andExpr `parser:"@@ ( '||' @@ )*"`
}

type andExpr struct {
	Terms []*unaryExpr `parser:"@@ ( '&&' @@ )*"`
}

type unaryExpr struct {
	Not     *unaryExpr   `parser:"  '!' @@"`
	Primary *primaryExpr `parser:"| @@"`
}

type primaryExpr struct {
	Group *orExpr `parser:"  '(' @@ ')'"`
	Term  *term   `parser:"| @@"`
}

type term struct {
	Pos   lexer.Position `parser:""`
	Name  string         `parser:"@Ident"`
	Call  bool           `parser:"( @'('"`
	Arg   uint32         `parser:"  @Int ')'"`
	Op    string         `parser:"| @Op"`
	Value int64          `parser:"  @Int )"`
}

var conditionParser = participle.MustBuild[orExpr](
	participle.Lexer(conditionLexer),
)

type predicate func(Facts) bool

// Condition is a compiled content condition such as
// "level >= 30 && quest(1234) && !aura(9)".
type Condition struct {
	src  string
	eval predicate
}

// ParseCondition compiles src. Unknown names and misuse of a name (calling
// level, comparing quest) are rejected here rather than at evaluation.
func ParseCondition(src string) (*Condition, error) {
	ast, err := conditionParser.ParseString("", src)
	if err != nil {
		return nil, oops.Code("CONDITION_PARSE_FAILED").With("condition", src).Wrap(err)
	}
	eval, err := compileOr(ast)
	if err != nil {
		return nil, oops.Code("CONDITION_INVALID").With("condition", src).Wrap(err)
	}
	return &Condition{src: src, eval: eval}, nil
}

// Eval reports whether f satisfies the condition. A nil condition is
// always satisfied.
func (c *Condition) Eval(f Facts) bool {
	if c == nil {
		return true
	}
	return c.eval(f)
}

func (c *Condition) String() string {
	if c == nil {
		return ""
	}
	return c.src
}

func compileOr(e *orExpr) (predicate, error) {
	preds := make([]predicate, 0, len(e.Terms))
	for _, t := range e.Terms {
		p, err := compileAnd(t)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return func(f Facts) bool {
		for _, p := range preds {
			if p(f) {
				return true
			}
		}
		return false
	}, nil
}

func compileAnd(e *andExpr) (predicate, error) {
	preds := make([]predicate, 0, len(e.Terms))
	for _, t := range e.Terms {
		p, err := compileUnary(t)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return func(f Facts) bool {
		for _, p := range preds {
			if !p(f) {
				return false
			}
		}
		return true
	}, nil
}

func compileUnary(e *unaryExpr) (predicate, error) {
	if e.Not != nil {
		inner, err := compileUnary(e.Not)
		if err != nil {
			return nil, err
		}
		return func(f Facts) bool { return !inner(f) }, nil
	}
	if e.Primary.Group != nil {
		return compileOr(e.Primary.Group)
	}
	return compileTerm(e.Primary.Term)
}

var calls = map[string]func(Facts, uint32) bool{
	"quest":       Facts.HasRewardedQuest,
	"aura":        Facts.HasAura,
	"spell":       Facts.HasSpell,
	"item":        Facts.HasItem,
	"achievement": Facts.HasAchievement,
}

var attributes = map[string]func(Facts) int64{
	"level": func(f Facts) int64 { return int64(f.Level()) },
	"race":  func(f Facts) int64 { return int64(f.Race()) },
	"class": func(f Facts) int64 { return int64(f.Class()) },
}

func compileTerm(t *term) (predicate, error) {
	if t.Call {
		fn, ok := calls[t.Name]
		if !ok {
			return nil, fmt.Errorf("%s: %q is not a function", t.Pos, t.Name)
		}
		arg := t.Arg
		return func(f Facts) bool { return fn(f, arg) }, nil
	}

	attr, ok := attributes[t.Name]
	if !ok {
		return nil, fmt.Errorf("%s: %q is not an attribute", t.Pos, t.Name)
	}
	v := t.Value
	switch t.Op {
	case "==":
		return func(f Facts) bool { return attr(f) == v }, nil
	case "!=":
		return func(f Facts) bool { return attr(f) != v }, nil
	case ">=":
		return func(f Facts) bool { return attr(f) >= v }, nil
	case "<=":
		return func(f Facts) bool { return attr(f) <= v }, nil
	case ">":
		return func(f Facts) bool { return attr(f) > v }, nil
	case "<":
		return func(f Facts) bool { return attr(f) < v }, nil
	}
	return nil, fmt.Errorf("%s: unknown operator %q", t.Pos, t.Op)
}
