package shapes

import (
	log "github.com/sirupsen/logrus"

	"github.com/mvp-joe/typeshape/internal/syntax"
)

// Filter returns the declarations of file that survive extraction, in source
// order. Enums, interfaces, type aliases, export directives and relative
// imports are kept as they are; classes go through t; everything else is
// dropped.
func Filter(file *syntax.File, t *Transformer) []syntax.Declaration {
	out := make([]syntax.Declaration, 0, len(file.Declarations))

	for _, decl := range file.Declarations {
		if kept := classify(file.Path, decl, t); kept != nil {
			out = append(out, kept)
		}
	}

	return out
}

// classify returns the output form of decl, or nil when it is dropped.
func classify(path string, decl syntax.Declaration, t *Transformer) syntax.Declaration {
	switch d := decl.(type) {
	case *syntax.EnumDecl, *syntax.InterfaceDecl, *syntax.TypeAliasDecl:
		return d

	case *syntax.ExportDecl:
		return d

	case *syntax.ImportDecl:
		if d.Relative() {
			return d
		}
		log.WithFields(log.Fields{
			"file":   path,
			"module": d.Specifier,
		}).Debug("Dropping package import")
		return nil

	case *syntax.ClassDecl:
		log.WithFields(log.Fields{
			"file":  path,
			"class": d.Name,
		}).Debug("Processing class declaration")
		return t.Transform(path, d)

	case *syntax.ShapeDecl:
		return d

	case *syntax.OtherDecl:
		return nil
	}

	return nil
}
