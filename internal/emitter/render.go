// Package emitter serializes output declaration sets and writes them to the
// mirrored output tree.
package emitter

import (
	"strings"

	"github.com/mvp-joe/typeshape/internal/syntax"
)

// DefaultIndent is the number of spaces used to indent shape fields.
const DefaultIndent = 4

// Renderer turns declarations back into TypeScript source.
type Renderer struct {
	indent string
}

// NewRenderer creates a renderer indenting shape fields by indent spaces.
// A non-positive indent selects DefaultIndent.
func NewRenderer(indent int) *Renderer {
	if indent <= 0 {
		indent = DefaultIndent
	}
	return &Renderer{indent: strings.Repeat(" ", indent)}
}

// Render renders decls with the default indentation.
func Render(decls []syntax.Declaration) []byte {
	return NewRenderer(DefaultIndent).Render(decls)
}

// Render serializes decls in order, each followed by a newline. Parsed
// declarations are reproduced from their source span; shapes are printed as
// exported interfaces.
func (r *Renderer) Render(decls []syntax.Declaration) []byte {
	var b strings.Builder
	for _, decl := range decls {
		if shape, ok := decl.(*syntax.ShapeDecl); ok {
			r.shape(&b, shape)
		} else {
			b.WriteString(decl.Source().Text)
		}
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func (r *Renderer) shape(b *strings.Builder, shape *syntax.ShapeDecl) {
	b.WriteString("export interface ")
	b.WriteString(shape.Name)
	b.WriteString(shape.TypeParameters)
	b.WriteString(" {\n")

	for _, f := range shape.Fields {
		b.WriteString(r.indent)
		b.WriteString(f.Name)
		if f.Optional {
			b.WriteByte('?')
		}
		if f.Type != "" {
			b.WriteString(": ")
			b.WriteString(f.Type)
		}
		b.WriteString(";\n")
	}

	b.WriteString("}")
}
