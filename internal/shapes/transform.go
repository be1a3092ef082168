// Package shapes reduces a file's top-level declarations to their data shape.
//
// Filter decides, per declaration, whether it is copied verbatim, transformed
// or dropped. Transformer turns data-bearing classes into interface shapes,
// folding in the fields of their direct parent.
package shapes

import (
	log "github.com/sirupsen/logrus"

	"github.com/mvp-joe/typeshape/internal/syntax"
)

// Resolver looks up the declaration a type reference in file from denotes.
// It returns nil when the reference cannot be resolved.
type Resolver interface {
	Resolve(from string, ref syntax.TypeRef) syntax.Declaration
}

// Transformer converts classes into shape declarations.
type Transformer struct {
	resolver Resolver
}

// NewTransformer creates a transformer resolving parents through resolver.
func NewTransformer(resolver Resolver) *Transformer {
	return &Transformer{resolver: resolver}
}

// Transform returns the shape of class, or class itself when it cannot be
// converted. Any static field keeps the whole class unchanged, and so does a
// missing name.
//
// Shape fields are the instance fields of each resolved parent class, in
// heritage order, followed by the class's own instance fields. Grandparent
// fields are never included.
func (t *Transformer) Transform(from string, class *syntax.ClassDecl) syntax.Declaration {
	logger := log.WithFields(log.Fields{
		"file":  from,
		"class": class.Name,
	})

	if class.Name == "" {
		logger.Debug("Keeping anonymous class")
		return class
	}

	if statics := class.StaticFields(); len(statics) > 0 {
		logger.WithField("static_fields", len(statics)).Debug("Keeping class with static fields")
		return class
	}

	var fields []syntax.Field
	for _, ref := range class.Heritage {
		fields = append(fields, t.inherited(from, ref, logger)...)
	}
	fields = append(fields, class.InstanceFields()...)

	return &syntax.ShapeDecl{
		Name:           class.Name,
		TypeParameters: class.TypeParameters,
		Fields:         fields,
	}
}

// inherited returns the own instance fields of the class ref resolves to.
func (t *Transformer) inherited(from string, ref syntax.TypeRef, logger *log.Entry) []syntax.Field {
	if t.resolver == nil {
		return nil
	}

	decl := t.resolver.Resolve(from, ref)
	if decl == nil {
		logger.WithField("parent", ref.Expr).Debug("Parent not resolved, no inherited fields")
		return nil
	}

	parent, ok := decl.(*syntax.ClassDecl)
	if !ok {
		logger.WithField("parent", ref.Expr).Debugf("Parent is a %T, no inherited fields", decl)
		return nil
	}

	fields := parent.InstanceFields()
	logger.WithFields(log.Fields{
		"parent": parent.Name,
		"fields": len(fields),
	}).Debug("Folding parent fields")
	return fields
}
