package vmstate

import (
	"fmt"
	"io"
	"strings"
)

// nameColumnWidth is the column values are aligned to.
const nameColumnWidth = 23

// Fprint renders nodes the way the monitor shows device state: one line per
// scalar, values aligned to a fixed column, buffers as hex byte dumps.
func Fprint(w io.Writer, nodes []*Node) {
	p := printer{w: w}
	for _, n := range nodes {
		p.field(n, 2)
	}
}

type printer struct {
	w io.Writer
}

func (p printer) field(n *Node, indent int) {
	for i, el := range n.Elems {
		pos := indent + len(n.Name)
		if n.Array {
			fmt.Fprintf(p.w, "%s%s", spaces(indent), n.Name)
			for _, item := range items(el) {
				p.elem(item, n.Size, pos, indent+2)
				pos = -1
			}
			continue
		}
		if i == 0 {
			fmt.Fprintf(p.w, "%s%s", spaces(indent), n.Name)
		} else {
			pos = -1
		}
		for _, item := range items(el) {
			p.elem(item, n.Size, pos, indent)
			pos = -1
		}
	}
}

// items flattens a struct element into its fields.
func items(v Value) []any {
	if s, ok := v.(Struct); ok {
		out := make([]any, len(s.Fields))
		for i, f := range s.Fields {
			out[i] = f
		}
		return out
	}
	return []any{v}
}

// elem prints one element. pos is the current column, or -1 on a
// continuation line.
func (p printer) elem(item any, size, pos, indent int) {
	if n, ok := item.(*Node); ok {
		if pos >= 0 {
			fmt.Fprint(p.w, ".\n")
		}
		p.field(n, indent+2)
		return
	}

	fmt.Fprint(p.w, ":")
	pos++
	if pos < nameColumnWidth {
		fmt.Fprint(p.w, spaces(nameColumnWidth-pos))
	}

	switch v := item.(type) {
	case Buffer:
		for n := 0; n < len(v.Data); {
			fmt.Fprintf(p.w, " %02x", v.Data[n])
			n++
			if n < size {
				if n%16 == 0 {
					fmt.Fprintf(p.w, "\n%s", spaces(nameColumnWidth))
				} else if n%8 == 0 {
					fmt.Fprint(p.w, " -")
				}
			}
		}
		if len(v.Data) < size {
			fmt.Fprint(p.w, " ...")
		}
		fmt.Fprint(p.w, "\n")
	case Int:
		fmt.Fprintf(p.w, "%0*x\n", size*2, uint64(v))
	case Bool:
		b := 0
		if v {
			b = 1
		}
		fmt.Fprintf(p.w, "%0*x\n", size*2, b)
	case Text:
		fmt.Fprintf(p.w, "%s\n", string(v))
	}
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
