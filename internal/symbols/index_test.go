package symbols

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/typeshape/internal/extractor/parsers"
	"github.com/mvp-joe/typeshape/internal/syntax"
)

// Test Plan for Index:
// - Local declarations resolve; a class wins over a same-named interface
// - Named, aliased, default and namespace imports resolve across files
// - Re-export chains and star re-exports are followed
// - Script file declarations resolve from anywhere as globals
// - Extensionless, index and .js specifiers map to indexed files
// - Package imports, call expressions and unknown names do not resolve
// - Re-export cycles terminate

const projectDir = "../../testdata/code/typescript/project/src"

// loadProject parses every TypeScript file of the fixture project.
func loadProject(t *testing.T) *Index {
	t.Helper()

	parser := parsers.NewTypeScriptParser()
	var files []*syntax.File
	err := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !(strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".tsx")) {
			return nil
		}
		file, err := parser.ParseFile(context.Background(), path)
		if err != nil {
			return err
		}
		files = append(files, file)
		return nil
	})
	require.NoError(t, err)
	return NewIndex(files)
}

// buildIndex parses in-memory sources keyed by path.
func buildIndex(t *testing.T, sources map[string]string) *Index {
	t.Helper()

	parser := parsers.NewTypeScriptParser()
	var files []*syntax.File
	for path, source := range sources {
		file, err := parser.ParseSource(context.Background(), path, []byte(source))
		require.NoError(t, err)
		files = append(files, file)
	}
	return NewIndex(files)
}

func ref(path ...string) syntax.TypeRef {
	return syntax.TypeRef{Expr: strings.Join(path, "."), Path: path}
}

func requireClass(t *testing.T, decl syntax.Declaration, name string) *syntax.ClassDecl {
	t.Helper()

	class, ok := decl.(*syntax.ClassDecl)
	require.True(t, ok, "expected a class, got %T", decl)
	assert.Equal(t, name, class.Name)
	return class
}

func TestIndex_ResolvesFixtureProject(t *testing.T) {
	t.Parallel()

	ix := loadProject(t)
	models := filepath.Join(projectDir, "models")
	base := filepath.Join(models, "base.ts")

	tests := []struct {
		name      string
		from      string
		ref       syntax.TypeRef
		wantClass string
		wantPath  string
	}{
		{"named import", filepath.Join(models, "user.ts"), ref("BaseClass"), "BaseClass", base},
		{"aliased import through star re-export", filepath.Join(models, "channel.ts"), ref("Base"), "BaseClass", base},
		{"namespace import", filepath.Join(models, "guild.ts"), ref("models", "BaseClass"), "BaseClass", base},
		{"one level up", filepath.Join(models, "admin.ts"), ref("User"), "User", filepath.Join(models, "user.ts")},
		{"global script declaration", filepath.Join(projectDir, "local.ts"), ref("GlobalBase"), "GlobalBase", filepath.Join(projectDir, "globals.ts")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := ix.Resolve(tt.from, tt.ref)
			requireClass(t, decl, tt.wantClass)
			assert.Equal(t, filepath.Clean(tt.wantPath), ix.PathOf(decl))
		})
	}
}

func TestIndex_UnresolvedReferences(t *testing.T) {
	t.Parallel()

	ix := loadProject(t)
	models := filepath.Join(projectDir, "models")

	assert.Nil(t, ix.Resolve(filepath.Join(models, "orphan.ts"), ref("Unknown")))
	assert.Nil(t, ix.Resolve(filepath.Join(models, "base.ts"), ref("Column")), "package imports never resolve")
	assert.Nil(t, ix.Resolve(filepath.Join(models, "user.ts"), syntax.TypeRef{Expr: "Mixin(Base)"}))
	assert.Nil(t, ix.Resolve(filepath.Join(models, "guild.ts"), ref("models", "Missing")))
	assert.Nil(t, ix.Resolve(filepath.Join(models, "guild.ts"), ref("models")), "a namespace is not a declaration")
}

func TestIndex_ClassWinsOverInterface(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"/p/merged.ts": `export interface Entity { tag: string }
export class Entity { id: number; }
export class Child extends Entity { name: string; }
`,
	})

	decl := ix.Resolve("/p/merged.ts", ref("Entity"))
	requireClass(t, decl, "Entity")
}

func TestIndex_ResolvesNonClassDeclarations(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"/p/shape.ts": `export interface Shape { area: number }`,
		"/p/use.ts":   `import { Shape } from "./shape"; export class Square extends Shape { side: number; }`,
	})

	decl := ix.Resolve("/p/use.ts", ref("Shape"))
	require.IsType(t, &syntax.InterfaceDecl{}, decl)
}

func TestIndex_DefaultImports(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"/p/named.ts":     `export default class Named { a: string; }`,
		"/p/anonymous.ts": `export default class { b: string; }`,
		"/p/late.ts":      `class Late { c: string; }
export default Late;`,
		"/p/use.ts": `import Named from "./named";
import Anon from "./anonymous";
import L from "./late";
`,
	})

	requireClass(t, ix.Resolve("/p/use.ts", ref("Named")), "Named")
	requireClass(t, ix.Resolve("/p/use.ts", ref("Anon")), "")
	requireClass(t, ix.Resolve("/p/use.ts", ref("L")), "Late")
}

func TestIndex_ReExportChains(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"/p/core/base.ts":  `export class Base { id: string; }`,
		"/p/core/index.ts": `export { Base as CoreBase } from "./base";`,
		"/p/api.ts":        `import { Base } from "./core/base"; export { Base as Root };`,
		"/p/ns.ts":         `export * as core from "./core/index";`,
		"/p/use.ts": `import { CoreBase } from "./core";
import { Root } from "./api.js";
import { core } from "./ns";
`,
	})

	requireClass(t, ix.Resolve("/p/use.ts", ref("CoreBase")), "Base")
	requireClass(t, ix.Resolve("/p/use.ts", ref("Root")), "Base")
	requireClass(t, ix.Resolve("/p/use.ts", ref("core", "CoreBase")), "Base")
}

func TestIndex_StarCycleTerminates(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"/p/a.ts":   `export * from "./b";`,
		"/p/b.ts":   `export * from "./a";`,
		"/p/use.ts": `import { Missing } from "./a";`,
	})

	assert.Nil(t, ix.Resolve("/p/use.ts", ref("Missing")))
}

func TestIndex_ResolveModule(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"/p/a.ts":             ``,
		"/p/b.tsx":            ``,
		"/p/c.d.ts":           ``,
		"/p/dir/index.ts":     ``,
		"/p/nested/deep/x.ts": ``,
	})

	tests := []struct {
		from      string
		specifier string
		want      string
		ok        bool
	}{
		{"/p/use.ts", "./a", "/p/a.ts", true},
		{"/p/use.ts", "./a.ts", "/p/a.ts", true},
		{"/p/use.ts", "./a.js", "/p/a.ts", true},
		{"/p/use.ts", "./b", "/p/b.tsx", true},
		{"/p/use.ts", "./c", "/p/c.d.ts", true},
		{"/p/use.ts", "./dir", "/p/dir/index.ts", true},
		{"/p/nested/deep/x.ts", "../../a", "/p/a.ts", true},
		{"/p/dir/index.ts", ".", "/p/dir/index.ts", true},
		{"/p/use.ts", "./missing", "", false},
		{"/p/use.ts", "lodash", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.specifier, func(t *testing.T) {
			got, ok := ix.ResolveModule(tt.from, tt.specifier)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestIndex_Files(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"/p/b.ts": `export enum B { X }`,
		"/p/a.ts": `export enum A { X }`,
	})

	files := ix.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "/p/a.ts", files[0].Path)
	assert.Equal(t, "/p/b.ts", files[1].Path)

	file, ok := ix.File("/p/./b.ts")
	require.True(t, ok)
	assert.Same(t, files[1], file)

	_, ok = ix.File("/p/c.ts")
	assert.False(t, ok)
}
