package parsers

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/typeshape/internal/syntax"
)

// TypeScriptParser parses TypeScript and TSX files into top-level declarations.
type TypeScriptParser struct {
	ts  *treeSitterParser
	tsx *treeSitterParser
}

// NewTypeScriptParser creates a new TypeScript parser.
func NewTypeScriptParser() *TypeScriptParser {
	return &TypeScriptParser{
		ts:  newTreeSitterParser(sitter.NewLanguage(typescript.LanguageTypescript()), "typescript"),
		tsx: newTreeSitterParser(sitter.NewLanguage(typescript.LanguageTSX()), "tsx"),
	}
}

// ParseFile reads and parses a TypeScript source file.
func (p *TypeScriptParser) ParseFile(ctx context.Context, filePath string) (*syntax.File, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return p.ParseSource(ctx, filePath, source)
}

// ParseSource parses TypeScript source. The grammar is picked from the file extension.
func (p *TypeScriptParser) ParseSource(ctx context.Context, filePath string, source []byte) (*syntax.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grammar := p.ts
	if strings.EqualFold(filepath.Ext(filePath), ".tsx") {
		grammar = p.tsx
	}

	tree, err := grammar.parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	file := &syntax.File{
		Path:      filePath,
		HasErrors: root.HasError(),
	}

	for _, node := range namedChildren(root) {
		decl, module := p.topLevel(node, source, file)
		if module {
			file.Module = true
		}
		file.Declarations = append(file.Declarations, decl)
	}

	return file, nil
}

// topLevel classifies one top-level statement. It also reports whether the
// statement makes the file a module.
func (p *TypeScriptParser) topLevel(node *sitter.Node, source []byte, file *syntax.File) (syntax.Declaration, bool) {
	span := nodeSpan(node, source)

	switch node.Kind() {
	case "import_statement":
		return p.importDecl(node, source, span), true

	case "export_statement":
		return p.exportStatement(node, source, span, file), true

	case "ambient_declaration":
		// declare enum / declare class / declare interface ...
		children := namedChildren(node)
		if len(children) == 1 {
			return p.declaration(children[0], source, span), false
		}
		return &syntax.OtherDecl{Kind: node.Kind(), Span: span}, false
	}

	return p.declaration(node, source, span), false
}

// declaration classifies a declaration node. The span is the one of the
// outermost statement so wrappers like `export` and `declare` are kept.
func (p *TypeScriptParser) declaration(node *sitter.Node, source []byte, span syntax.Span) syntax.Declaration {
	name := extractNodeText(node.ChildByFieldName("name"), source)

	switch node.Kind() {
	case "enum_declaration":
		return &syntax.EnumDecl{Name: name, Span: span}
	case "interface_declaration":
		return &syntax.InterfaceDecl{Name: name, Span: span}
	case "type_alias_declaration":
		return &syntax.TypeAliasDecl{Name: name, Span: span}
	case "class_declaration", "abstract_class_declaration", "class":
		return p.classDecl(node, source, span)
	case "ambient_declaration":
		children := namedChildren(node)
		if len(children) == 1 {
			return p.declaration(children[0], source, span)
		}
	}

	return &syntax.OtherDecl{Kind: node.Kind(), Span: span}
}

// exportStatement handles every form of `export ...`.
func (p *TypeScriptParser) exportStatement(node *sitter.Node, source []byte, span syntax.Span, file *syntax.File) syntax.Declaration {
	isDefault := findChildByType(node, "default") != nil

	if inner := node.ChildByFieldName("declaration"); inner != nil {
		decl := p.declaration(inner, source, span)
		markExported(decl, isDefault)
		return decl
	}

	if value := node.ChildByFieldName("value"); value != nil && isDefault {
		switch value.Kind() {
		case "class":
			// export default class { ... }
			decl := p.classDecl(value, source, span)
			markExported(decl, true)
			return decl
		case "identifier":
			file.DefaultExport = extractNodeText(value, source)
		}
		return &syntax.OtherDecl{Kind: "export_default", Span: span}
	}

	clause := findChildByType(node, "export_clause")
	namespace := findChildByType(node, "namespace_export")
	star := findChildByType(node, "*")
	if clause == nil && namespace == nil && star == nil {
		// export = x, export as namespace X
		return &syntax.OtherDecl{Kind: node.Kind(), Span: span}
	}

	decl := &syntax.ExportDecl{
		Specifier: unquote(extractNodeText(node.ChildByFieldName("source"), source)),
		Star:      star != nil,
		Span:      span,
	}

	if namespace != nil {
		if children := namedChildren(namespace); len(children) > 0 {
			decl.Namespace = unquote(extractNodeText(children[0], source))
		}
	}

	for _, spec := range findChildrenByType(clause, "export_specifier") {
		local := unquote(extractNodeText(spec.ChildByFieldName("name"), source))
		exported := local
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			exported = unquote(extractNodeText(alias, source))
		}
		decl.Specifiers = append(decl.Specifiers, syntax.ExportSpecifier{
			Local:    local,
			Exported: exported,
		})
	}

	return decl
}

// markExported flags a declaration found under an export statement.
func markExported(decl syntax.Declaration, isDefault bool) {
	switch d := decl.(type) {
	case *syntax.EnumDecl:
		d.Exported = true
	case *syntax.InterfaceDecl:
		d.Exported = true
	case *syntax.TypeAliasDecl:
		d.Exported = true
	case *syntax.ClassDecl:
		d.Exported = true
		d.Default = isDefault
	}
}

// importDecl handles `import ... from "x"` and `import "x"`. The
// `import x = require("x")` form is not an import directive.
func (p *TypeScriptParser) importDecl(node *sitter.Node, source []byte, span syntax.Span) syntax.Declaration {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return &syntax.OtherDecl{Kind: "import_require", Span: span}
	}

	decl := &syntax.ImportDecl{
		Specifier: unquote(extractNodeText(sourceNode, source)),
		Span:      span,
	}

	clause := findChildByType(node, "import_clause")
	for _, child := range namedChildren(clause) {
		switch child.Kind() {
		case "identifier":
			decl.Bindings = append(decl.Bindings, syntax.ImportBinding{
				Local:    extractNodeText(child, source),
				Imported: syntax.ImportDefault,
			})
		case "namespace_import":
			if ids := namedChildren(child); len(ids) > 0 {
				decl.Bindings = append(decl.Bindings, syntax.ImportBinding{
					Local:    extractNodeText(ids[0], source),
					Imported: syntax.ImportNamespace,
				})
			}
		case "named_imports":
			for _, spec := range findChildrenByType(child, "import_specifier") {
				imported := unquote(extractNodeText(spec.ChildByFieldName("name"), source))
				local := imported
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = extractNodeText(alias, source)
				}
				decl.Bindings = append(decl.Bindings, syntax.ImportBinding{
					Local:    local,
					Imported: imported,
				})
			}
		}
	}

	return decl
}

// classDecl extracts the name, type parameters, heritage and field members of a class.
func (p *TypeScriptParser) classDecl(node *sitter.Node, source []byte, span syntax.Span) *syntax.ClassDecl {
	decl := &syntax.ClassDecl{
		Name:           extractNodeText(node.ChildByFieldName("name"), source),
		TypeParameters: extractNodeText(node.ChildByFieldName("type_parameters"), source),
		Span:           span,
	}

	heritage := findChildByType(node, "class_heritage")
	for _, clause := range findChildrenByType(heritage, "extends_clause") {
		for _, value := range namedChildren(clause) {
			if value.Kind() == "type_arguments" {
				continue
			}
			decl.Heritage = append(decl.Heritage, syntax.TypeRef{
				Expr: extractNodeText(value, source),
				Path: qualifiedPath(value, source),
			})
		}
	}

	body := node.ChildByFieldName("body")
	for _, member := range namedChildren(body) {
		if member.Kind() != "public_field_definition" {
			continue
		}
		if field, ok := p.field(member, source); ok {
			decl.Fields = append(decl.Fields, field)
		}
	}

	return decl
}

// field extracts a field member. Modifiers before the name decide whether
// the field is static; a `?` after the name makes it optional.
func (p *TypeScriptParser) field(node *sitter.Node, source []byte) (syntax.Field, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return syntax.Field{}, false
	}

	field := syntax.Field{Name: extractNodeText(nameNode, source)}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.IsNamed() {
			continue
		}
		beforeName := child.EndByte() <= nameNode.StartByte()
		switch child.Kind() {
		case "static":
			if beforeName {
				field.Static = true
			}
		case "?":
			if !beforeName {
				field.Optional = true
			}
		}
	}

	annotation := node.ChildByFieldName("type")
	if annotation == nil {
		annotation = findChildByType(node, "type_annotation")
	}
	if annotation != nil {
		if types := namedChildren(annotation); len(types) > 0 {
			field.Type = extractNodeText(types[0], source)
		} else {
			field.Type = strings.TrimSpace(strings.TrimPrefix(extractNodeText(annotation, source), ":"))
		}
	}

	return field, true
}

// qualifiedPath returns the dotted segments of an identifier or member
// expression, or nil for any other expression.
func qualifiedPath(node *sitter.Node, source []byte) []string {
	switch node.Kind() {
	case "identifier", "type_identifier":
		return []string{extractNodeText(node, source)}
	case "member_expression", "nested_identifier", "nested_type_identifier":
		object := node.ChildByFieldName("object")
		if object == nil {
			object = node.ChildByFieldName("module")
		}
		property := node.ChildByFieldName("property")
		if property == nil {
			property = node.ChildByFieldName("name")
		}
		if object == nil || property == nil {
			return nil
		}
		prefix := qualifiedPath(object, source)
		if prefix == nil {
			return nil
		}
		return append(prefix, extractNodeText(property, source))
	}
	return nil
}
