// Package css keeps stylesheets in a source ordered tree suitable for
// rewriting: rules keep their declarations in order, so new declarations
// can be spliced right after the ones they replace.
package css

import (
	"slices"
	"strings"
)

// Node is a top level or nested stylesheet item: *Rule, *AtRule or *Comment.
type Node interface {
	node()
}

// Declaration is a single property declaration inside a rule.
type Declaration struct {
	Property  string
	Value     string // raw value text, whitespace collapsed
	Important bool
}

func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Value + " !important"
	}
	return d.Property + ": " + d.Value
}

// Rule is a qualified rule: selector group and declarations.
type Rule struct {
	Selectors []string
	Decls     []Declaration
}

// AtRule is an @-rule. Rules with block either contain nested nodes
// (@media, @supports) or declarations (@font-face, @page).
type AtRule struct {
	Name    string // without "@"
	Prelude string
	Block   bool
	Nodes   []Node
	Decls   []Declaration
}

// Comment is a top level comment including delimiters. Comments inside
// rule or at-rule blocks are not kept: the tokenizer consumes them.
type Comment struct {
	Text string
}

func (*Rule) node()    {}
func (*AtRule) node()  {}
func (*Comment) node() {}

// Stylesheet is a parsed CSS stylesheet.
type Stylesheet struct {
	Nodes    []Node
	Warnings []string
}

// Selector returns selector group as it would appear in the stylesheet.
func (r *Rule) Selector() string {
	return strings.Join(r.Selectors, ", ")
}

// Property returns index of the last declaration of the property, -1 if
// there is none.
func (r *Rule) Property(name string) int {
	for i := len(r.Decls) - 1; i >= 0; i-- {
		if strings.EqualFold(r.Decls[i].Property, name) {
			return i
		}
	}
	return -1
}

// InsertAfter puts decls right after declaration with index i.
func (r *Rule) InsertAfter(i int, decls ...Declaration) {
	r.Decls = slices.Insert(r.Decls, i+1, decls...)
}

// Replace substitutes declaration with index i by decls.
func (r *Rule) Replace(i int, decls ...Declaration) {
	r.Decls = slices.Replace(r.Decls, i, i+1, decls...)
}

// Remove deletes declaration with index i.
func (r *Rule) Remove(i int) {
	r.Decls = slices.Delete(r.Decls, i, i+1)
}

// Walk calls fn for every rule in source order including rules nested in
// conditional group rules. Walk stops on first error.
func (s *Stylesheet) Walk(fn func(*Rule) error) error {
	return walk(s.Nodes, fn)
}

func walk(nodes []Node, fn func(*Rule) error) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Rule:
			if err := fn(n); err != nil {
				return err
			}
		case *AtRule:
			if err := walk(n.Nodes, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rules returns all rules, nested ones included.
func (s *Stylesheet) Rules() []*Rule {
	var rules []*Rule
	_ = s.Walk(func(r *Rule) error {
		rules = append(rules, r)
		return nil
	})
	return rules
}

// Charset returns name from @charset rule, empty if there is none.
func (s *Stylesheet) Charset() string {
	if len(s.Nodes) == 0 {
		return ""
	}
	if at, ok := s.Nodes[0].(*AtRule); ok && strings.EqualFold(at.Name, "charset") {
		return unquote(at.Prelude)
	}
	return ""
}

// SetCharset changes existing @charset rule.
func (s *Stylesheet) SetCharset(name string) {
	if len(s.Nodes) == 0 {
		return
	}
	if at, ok := s.Nodes[0].(*AtRule); ok && strings.EqualFold(at.Name, "charset") {
		at.Prelude = `"` + name + `"`
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
