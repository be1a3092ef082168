// Package symbols resolves type references across a set of parsed files.
//
// An Index is built once from every loaded file and is read-only afterwards,
// so it can be shared between goroutines without locking.
package symbols

import (
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mvp-joe/typeshape/internal/syntax"
)

// moduleSuffixes are tried in order when a relative specifier names a module
// without its extension.
var moduleSuffixes = []string{
	"",
	".ts",
	".tsx",
	".d.ts",
	"/index.ts",
	"/index.tsx",
	"/index.d.ts",
}

// target points at a name inside a module. An empty specifier means the
// module that declares the target; the ImportNamespace name denotes the whole
// module.
type target struct {
	specifier string
	name      string
}

// scope is the top-level name table of one file.
type scope struct {
	file    *syntax.File
	locals  map[string]syntax.Declaration
	imports map[string]target
	exports map[string]target
	stars   []string
}

// symbol is the result of a name lookup: a declaration or a whole module.
type symbol struct {
	decl   syntax.Declaration
	module string
}

// Index maps names to declarations across all loaded files.
type Index struct {
	paths   []string
	scopes  map[string]*scope
	globals map[string]syntax.Declaration
	owners  map[syntax.Declaration]string
}

// NewIndex builds an index over files. Files are keyed by their cleaned path.
func NewIndex(files []*syntax.File) *Index {
	ix := &Index{
		scopes:  make(map[string]*scope, len(files)),
		globals: make(map[string]syntax.Declaration),
		owners:  make(map[syntax.Declaration]string),
	}

	for _, file := range files {
		path := filepath.Clean(file.Path)
		if _, dup := ix.scopes[path]; dup {
			continue
		}
		ix.paths = append(ix.paths, path)
		ix.scopes[path] = newScope(file)
	}
	sort.Strings(ix.paths)

	// Script files share one global scope; the first declaration wins in path order.
	for _, path := range ix.paths {
		sc := ix.scopes[path]
		for _, decl := range sc.file.Declarations {
			if syntax.NameOf(decl) != "" {
				ix.owners[decl] = path
			}
		}
		if sc.file.Module {
			continue
		}
		for name, decl := range sc.locals {
			declare(ix.globals, name, decl)
		}
	}

	return ix
}

func newScope(file *syntax.File) *scope {
	sc := &scope{
		file:    file,
		locals:  make(map[string]syntax.Declaration),
		imports: make(map[string]target),
		exports: make(map[string]target),
	}

	for _, decl := range file.Declarations {
		switch d := decl.(type) {
		case *syntax.ImportDecl:
			for _, b := range d.Bindings {
				sc.imports[b.Local] = target{specifier: d.Specifier, name: b.Imported}
			}

		case *syntax.ExportDecl:
			if d.Star {
				sc.stars = append(sc.stars, d.Specifier)
				continue
			}
			if d.Namespace != "" {
				sc.exports[d.Namespace] = target{specifier: d.Specifier, name: syntax.ImportNamespace}
				continue
			}
			for _, spec := range d.Specifiers {
				sc.exports[spec.Exported] = target{specifier: d.Specifier, name: spec.Local}
			}

		case *syntax.ClassDecl:
			if d.Name != "" {
				declare(sc.locals, d.Name, d)
			}
			if d.Exported && d.Name != "" && !d.Default {
				sc.exports[d.Name] = target{name: d.Name}
			}
			if d.Default {
				if d.Name != "" {
					sc.exports[syntax.ImportDefault] = target{name: d.Name}
				} else {
					// Anonymous default classes are only reachable through the default export.
					sc.locals[syntax.ImportDefault] = d
					sc.exports[syntax.ImportDefault] = target{name: syntax.ImportDefault}
				}
			}

		default:
			name := syntax.NameOf(decl)
			if name == "" {
				continue
			}
			declare(sc.locals, name, decl)
			if exported(decl) {
				sc.exports[name] = target{name: name}
			}
		}
	}

	if file.DefaultExport != "" {
		sc.exports[syntax.ImportDefault] = target{name: file.DefaultExport}
	}

	return sc
}

// declare binds name in table. A class replaces any other declaration of the
// same name; otherwise the first declaration wins.
func declare(table map[string]syntax.Declaration, name string, decl syntax.Declaration) {
	existing, ok := table[name]
	if !ok {
		table[name] = decl
		return
	}
	if _, isClass := existing.(*syntax.ClassDecl); isClass {
		return
	}
	if _, isClass := decl.(*syntax.ClassDecl); isClass {
		table[name] = decl
	}
}

func exported(decl syntax.Declaration) bool {
	switch d := decl.(type) {
	case *syntax.EnumDecl:
		return d.Exported
	case *syntax.InterfaceDecl:
		return d.Exported
	case *syntax.TypeAliasDecl:
		return d.Exported
	}
	return false
}

// Files returns the indexed files in path order.
func (ix *Index) Files() []*syntax.File {
	files := make([]*syntax.File, 0, len(ix.paths))
	for _, path := range ix.paths {
		files = append(files, ix.scopes[path].file)
	}
	return files
}

// File returns the indexed file at path.
func (ix *Index) File(path string) (*syntax.File, bool) {
	sc, ok := ix.scopes[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	return sc.file, true
}

// PathOf returns the path of the file declaring decl, or "" for declarations
// that are not part of the index.
func (ix *Index) PathOf(decl syntax.Declaration) string {
	return ix.owners[decl]
}

// ResolveModule maps a relative module specifier used in from to the path of
// an indexed file. Package specifiers never resolve.
func (ix *Index) ResolveModule(from, specifier string) (string, bool) {
	if !syntax.IsRelativeSpecifier(specifier) {
		return "", false
	}

	base := filepath.Join(filepath.Dir(filepath.Clean(from)), specifier)
	candidates := make([]string, 0, len(moduleSuffixes)+2)
	for _, suffix := range moduleSuffixes {
		candidates = append(candidates, base+suffix)
	}
	// Compiled-output specifiers (`./user.js`) point at the TypeScript source.
	switch ext := filepath.Ext(base); ext {
	case ".js", ".mjs", ".cjs":
		trimmed := strings.TrimSuffix(base, ext)
		candidates = append(candidates, trimmed+".ts", trimmed+".tsx")
	case ".jsx":
		candidates = append(candidates, strings.TrimSuffix(base, ext)+".tsx")
	}

	for _, candidate := range candidates {
		if _, ok := ix.scopes[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

// Resolve returns the declaration a type reference in file from denotes, or
// nil when it cannot be resolved. Lookup order is the file's own top-level
// declarations, then its imports, then the global scope of script files.
func (ix *Index) Resolve(from string, ref syntax.TypeRef) syntax.Declaration {
	if len(ref.Path) == 0 {
		return nil
	}

	from = filepath.Clean(from)
	visited := make(map[string]bool)

	sym, ok := ix.lookup(from, ref.Path[0], visited)
	for _, segment := range ref.Path[1:] {
		if !ok || sym.module == "" {
			ok = false
			break
		}
		sym, ok = ix.export(sym.module, segment, visited)
	}

	if !ok || sym.decl == nil {
		log.WithFields(log.Fields{
			"file": from,
			"ref":  ref.Expr,
		}).Debug("Type reference not resolved")
		return nil
	}
	return sym.decl
}

// lookup resolves a name in the top-level scope of path.
func (ix *Index) lookup(path, name string, visited map[string]bool) (symbol, bool) {
	sc, ok := ix.scopes[path]
	if ok {
		if decl, ok := sc.locals[name]; ok {
			return symbol{decl: decl}, true
		}
		if t, ok := sc.imports[name]; ok {
			return ix.follow(path, t, visited)
		}
	}

	if decl, ok := ix.globals[name]; ok {
		return symbol{decl: decl}, true
	}
	return symbol{}, false
}

// follow resolves a target as seen from the file at path.
func (ix *Index) follow(path string, t target, visited map[string]bool) (symbol, bool) {
	if t.specifier == "" {
		return ix.lookup(path, t.name, visited)
	}

	module, ok := ix.ResolveModule(path, t.specifier)
	if !ok {
		return symbol{}, false
	}
	if t.name == syntax.ImportNamespace {
		return symbol{module: module}, true
	}
	return ix.export(module, t.name, visited)
}

// export resolves a name exported by the module at path, following re-export
// chains and star re-exports.
func (ix *Index) export(path, name string, visited map[string]bool) (symbol, bool) {
	key := path + "#" + name
	if visited[key] {
		return symbol{}, false
	}
	visited[key] = true

	sc, ok := ix.scopes[path]
	if !ok {
		return symbol{}, false
	}

	if t, ok := sc.exports[name]; ok {
		return ix.follow(path, t, visited)
	}

	// `export *` never forwards the default export.
	if name == syntax.ImportDefault {
		return symbol{}, false
	}
	for _, specifier := range sc.stars {
		module, ok := ix.ResolveModule(path, specifier)
		if !ok {
			continue
		}
		if sym, ok := ix.export(module, name, visited); ok {
			return sym, true
		}
	}
	return symbol{}, false
}
