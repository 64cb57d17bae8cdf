package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser builds stylesheet trees.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	return &Parser{log: log.Named("css")}
}

// Parse parses stylesheet data. Source is only used in log messages.
// Parse never fails: whatever was recognized before a syntax error is
// returned and the error is recorded in Warnings.
func (cp *Parser) Parse(data []byte, source string) *Stylesheet {
	p := &parser{
		p:      css.NewParser(parse.NewInput(bytes.NewReader(data)), false),
		source: source,
		log:    cp.log,
	}
	sheet := &Stylesheet{}
	sheet.Nodes, _ = p.nodes(false)
	sheet.Warnings = p.warnings
	return sheet
}

type parser struct {
	p        *css.Parser
	source   string
	log      *zap.Logger
	warnings []string
	pending  []string // selectors of a group seen before its block
}

func (p *parser) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.warnings = append(p.warnings, msg)
	p.log.Debug("CSS parsing issue", zap.String("source", p.source), zap.String("issue", msg))
}

// nodes reads rules until end of input or, when nested, until end of
// enclosing at-rule. Declarations found at this level are returned
// separately, this is how @font-face and friends carry their content.
func (p *parser) nodes(nested bool) ([]Node, []Declaration) {
	var (
		nodes []Node
		decls []Declaration
	)
	for {
		gt, _, data := p.p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.p.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.warn("%v", err)
			} else if nested {
				p.warn("unexpected end of stylesheet inside at-rule")
			}
			return nodes, decls

		case css.EndAtRuleGrammar:
			if nested {
				return nodes, decls
			}
			p.warn("unbalanced closing brace")

		case css.CommentGrammar:
			nodes = append(nodes, &Comment{Text: string(data)})

		case css.AtRuleGrammar:
			nodes = append(nodes, &AtRule{
				Name:    strings.TrimPrefix(string(data), "@"),
				Prelude: p.values(),
			})

		case css.BeginAtRuleGrammar:
			at := &AtRule{
				Name:    strings.TrimPrefix(string(data), "@"),
				Prelude: p.values(),
				Block:   true,
			}
			at.Nodes, at.Decls = p.nodes(true)
			nodes = append(nodes, at)

		case css.QualifiedRuleGrammar:
			p.pending = append(p.pending, splitSelectors(p.selector(data))...)

		case css.BeginRulesetGrammar:
			rule := &Rule{Selectors: append(p.pending, splitSelectors(p.selector(data))...)}
			p.pending = nil
			rule.Decls = p.declarations()
			nodes = append(nodes, rule)

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls = append(decls, p.declaration(gt, data))

		case css.TokenGrammar:
			// CDO/CDC and stray tokens carry no meaning here
		default:
			p.warn("unexpected grammar %v", gt)
		}
	}
}

// declarations reads rule body.
func (p *parser) declarations() []Declaration {
	var decls []Declaration
	for {
		gt, _, data := p.p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.p.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.warn("%v", err)
			} else {
				p.warn("unexpected end of stylesheet inside rule")
			}
			return decls
		case css.EndRulesetGrammar:
			return decls
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls = append(decls, p.declaration(gt, data))
		case css.TokenGrammar:
		default:
			p.warn("unexpected grammar %v inside rule", gt)
		}
	}
}

func (p *parser) declaration(gt css.GrammarType, data []byte) Declaration {
	d := Declaration{Property: string(data)}
	vals := p.p.Values()
	if gt == css.CustomPropertyGrammar {
		var sb strings.Builder
		for _, v := range vals {
			sb.Write(v.Data)
		}
		d.Value = strings.TrimSpace(sb.String())
		return d
	}
	d.Property = strings.ToLower(d.Property)
	vals, d.Important = trimImportant(vals)
	d.Value = joinTokens(vals)
	return d
}

// trimImportant removes trailing "! important" tokens.
func trimImportant(vals []css.Token) ([]css.Token, bool) {
	end := len(vals)
	for end > 0 && vals[end-1].TokenType == css.WhitespaceToken {
		end--
	}
	if end == 0 || vals[end-1].TokenType != css.IdentToken || !strings.EqualFold(string(vals[end-1].Data), "important") {
		return vals, false
	}
	i := end - 1
	for i > 0 && vals[i-1].TokenType == css.WhitespaceToken {
		i--
	}
	if i == 0 || vals[i-1].TokenType != css.DelimToken || string(vals[i-1].Data) != "!" {
		return vals, false
	}
	return vals[:i-1], true
}

func (p *parser) selector(data []byte) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range p.p.Values() {
		sb.Write(v.Data)
	}
	return strings.TrimSpace(sb.String())
}

func (p *parser) values() string {
	return joinTokens(p.p.Values())
}

// joinTokens concatenates token text collapsing whitespace.
func joinTokens(vals []css.Token) string {
	var sb strings.Builder
	space := false
	for _, v := range vals {
		if v.TokenType == css.WhitespaceToken {
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(v.Data)
	}
	return sb.String()
}

// splitSelectors splits selector group on top level commas.
func splitSelectors(s string) []string {
	var (
		res   []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			if sel := strings.TrimSpace(s[start:i]); sel != "" {
				res = append(res, sel)
			}
			start = i + 1
		}
	}
	if sel := strings.TrimSpace(s[start:]); sel != "" {
		res = append(res, sel)
	}
	return res
}
