// Package syntax defines the declaration model extracted from TypeScript source files.
//
// A File is an ordered list of top-level Declarations. Declaration is a closed
// union: only the types in this package implement it, so consumers can switch
// over it exhaustively.
package syntax

import "strings"

// Span is the raw source text of a declaration together with its line range.
// It is carried opaquely and only used to re-emit the declaration unchanged.
type Span struct {
	Text      string
	StartLine int
	EndLine   int
}

// File is a parsed source file.
type File struct {
	Path         string
	Declarations []Declaration
	// Module reports whether the file has any top-level import or export.
	// Declarations of non-module files are visible program-wide.
	Module bool
	// HasErrors reports whether the parser had to recover from syntax errors.
	HasErrors bool
	// DefaultExport is the local name bound by `export default <name>`.
	DefaultExport string
}

// Declaration is one top-level declaration of a File.
type Declaration interface {
	// Source returns the raw span of the declaration. Output-only declarations
	// return an empty span.
	Source() Span
	declaration()
}

// EnumDecl is an enum declaration (`enum`, `const enum`, `declare enum`).
type EnumDecl struct {
	Name     string
	Exported bool
	Span     Span
}

// InterfaceDecl is an interface declaration.
type InterfaceDecl struct {
	Name     string
	Exported bool
	Span     Span
}

// TypeAliasDecl is a `type X = ...` declaration.
type TypeAliasDecl struct {
	Name     string
	Exported bool
	Span     Span
}

// ExportSpecifier is one entry of an export clause.
type ExportSpecifier struct {
	Local    string
	Exported string
}

// ExportDecl is an export directive: `export { a, b as c }`, `export { a } from "./x"`,
// `export * from "./x"` or `export * as ns from "./x"`.
type ExportDecl struct {
	// Specifier is the module source, empty when the directive has none.
	Specifier  string
	Specifiers []ExportSpecifier
	// Star is set for `export * from`.
	Star bool
	// Namespace holds the name of an `export * as ns from` directive.
	Namespace string
	Span      Span
}

// Import binding sentinels for ImportBinding.Imported.
const (
	ImportDefault   = "default"
	ImportNamespace = "*"
)

// ImportBinding binds a local name to a name exported by the imported module.
type ImportBinding struct {
	Local    string
	Imported string
}

// ImportDecl is an `import ... from "x"` or side-effect `import "x"` directive.
type ImportDecl struct {
	Specifier string
	Bindings  []ImportBinding
	Span      Span
}

// Relative reports whether the import points at a path rather than a package.
func (d *ImportDecl) Relative() bool {
	return IsRelativeSpecifier(d.Specifier)
}

// IsRelativeSpecifier reports whether a module specifier is a relative path.
func IsRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, ".")
}

// Field is a data-holding class member or shape field.
type Field struct {
	Name     string
	Optional bool
	// Type is the declared type text, empty when the member has no annotation.
	Type   string
	Static bool
}

// TypeRef is a type reference taken from a heritage clause.
type TypeRef struct {
	// Expr is the full expression text, e.g. `ns.Base` or `Mixin(Base)`.
	Expr string
	// Path holds the dotted name segments. It is empty when the expression is
	// not a plain or qualified name and therefore cannot be resolved.
	Path []string
}

// Name returns the last segment of the reference path.
func (r TypeRef) Name() string {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[len(r.Path)-1]
}

// ClassDecl is a class declaration, abstract or not.
type ClassDecl struct {
	Name           string
	TypeParameters string
	Fields         []Field
	// Heritage lists the types named by the `extends` clause in order.
	Heritage []TypeRef
	Exported bool
	Default  bool
	Span     Span
}

// InstanceFields returns the non-static fields in declaration order.
func (d *ClassDecl) InstanceFields() []Field {
	fields := make([]Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		if !f.Static {
			fields = append(fields, f)
		}
	}
	return fields
}

// StaticFields returns the static fields in declaration order.
func (d *ClassDecl) StaticFields() []Field {
	var fields []Field
	for _, f := range d.Fields {
		if f.Static {
			fields = append(fields, f)
		}
	}
	return fields
}

// OtherDecl is any top-level node that is not one of the declarations above:
// functions, variables, statements, namespaces, `import x = require()` and
// non-directive exports.
type OtherDecl struct {
	Kind string
	Span Span
}

// ShapeDecl is the structural shape derived from a class. It only exists in
// output declaration sets.
type ShapeDecl struct {
	Name           string
	TypeParameters string
	Fields         []Field
}

func (d *EnumDecl) Source() Span      { return d.Span }
func (d *InterfaceDecl) Source() Span { return d.Span }
func (d *TypeAliasDecl) Source() Span { return d.Span }
func (d *ExportDecl) Source() Span    { return d.Span }
func (d *ImportDecl) Source() Span    { return d.Span }
func (d *ClassDecl) Source() Span     { return d.Span }
func (d *OtherDecl) Source() Span     { return d.Span }
func (d *ShapeDecl) Source() Span     { return Span{} }

func (*EnumDecl) declaration()      {}
func (*InterfaceDecl) declaration() {}
func (*TypeAliasDecl) declaration() {}
func (*ExportDecl) declaration()    {}
func (*ImportDecl) declaration()    {}
func (*ClassDecl) declaration()     {}
func (*OtherDecl) declaration()     {}
func (*ShapeDecl) declaration()     {}

// NameOf returns the declared name of a declaration, or "" when it has none.
func NameOf(d Declaration) string {
	switch d := d.(type) {
	case *EnumDecl:
		return d.Name
	case *InterfaceDecl:
		return d.Name
	case *TypeAliasDecl:
		return d.Name
	case *ClassDecl:
		return d.Name
	case *ShapeDecl:
		return d.Name
	}
	return ""
}
