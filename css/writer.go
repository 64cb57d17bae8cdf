package css

import (
	"bufio"
	"io"
	"strings"
)

const indentUnit = "  "

// WriteTo serializes stylesheet in readable form, one declaration per line.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	return s.write(w, false)
}

// WriteCompact serializes stylesheet without comments and optional
// whitespace.
func (s *Stylesheet) WriteCompact(w io.Writer) (int64, error) {
	return s.write(w, true)
}

// String returns readable serialization.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	_, _ = s.WriteTo(&sb)
	return sb.String()
}

type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (c *countingWriter) str(s string) {
	n, _ := c.w.WriteString(s)
	c.n += int64(n)
}

func (s *Stylesheet) write(w io.Writer, compact bool) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	if compact {
		writeCompactNodes(cw, s.Nodes)
	} else {
		writeNodes(cw, s.Nodes, "")
	}
	return cw.n, cw.w.Flush()
}

func writeNodes(cw *countingWriter, nodes []Node, indent string) {
	for i, n := range nodes {
		if i > 0 {
			cw.str("\n")
		}
		switch n := n.(type) {
		case *Comment:
			cw.str(indent + n.Text + "\n")
		case *Rule:
			cw.str(indent + strings.Join(n.Selectors, ",\n"+indent) + " {\n")
			writeDecls(cw, n.Decls, indent+indentUnit)
			cw.str(indent + "}\n")
		case *AtRule:
			cw.str(indent + "@" + n.Name)
			if n.Prelude != "" {
				cw.str(" " + n.Prelude)
			}
			if !n.Block {
				cw.str(";\n")
				continue
			}
			cw.str(" {\n")
			writeDecls(cw, n.Decls, indent+indentUnit)
			if len(n.Decls) > 0 && len(n.Nodes) > 0 {
				cw.str("\n")
			}
			writeNodes(cw, n.Nodes, indent+indentUnit)
			cw.str(indent + "}\n")
		}
	}
}

func writeDecls(cw *countingWriter, decls []Declaration, indent string) {
	for _, d := range decls {
		cw.str(indent + d.String() + ";\n")
	}
}

func writeCompactNodes(cw *countingWriter, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Rule:
			if len(n.Decls) == 0 {
				continue
			}
			cw.str(strings.Join(n.Selectors, ",") + "{")
			writeCompactDecls(cw, n.Decls)
			cw.str("}")
		case *AtRule:
			cw.str("@" + n.Name)
			if n.Prelude != "" {
				cw.str(" " + n.Prelude)
			}
			if !n.Block {
				cw.str(";")
				continue
			}
			cw.str("{")
			writeCompactDecls(cw, n.Decls)
			if len(n.Decls) > 0 && len(n.Nodes) > 0 {
				cw.str(";")
			}
			writeCompactNodes(cw, n.Nodes)
			cw.str("}")
		}
	}
}

func writeCompactDecls(cw *countingWriter, decls []Declaration) {
	for i, d := range decls {
		if i > 0 {
			cw.str(";")
		}
		cw.str(d.Property + ":" + d.Value)
		if d.Important {
			cw.str("!important")
		}
	}
}
