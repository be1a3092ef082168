package symbols

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for WriteTree:
// - Roots are written in id order with children indented below
// - Rejected cycle edges are listed after the forest
// - A nil label falls back to the class id

func TestHierarchy_WriteTree(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"/p/a.ts": `class Base { id: string; }
class Child extends Base { x: number; }
class Leaf extends Child { y: number; }
class Solo { z: number; }
`,
	})
	h, err := ix.Hierarchy()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.WriteTree(&buf, func(n ClassNode) string { return n.Name }))

	assert.Equal(t, "Base\n  Child\n    Leaf\nSolo\n", buf.String())
}

func TestHierarchy_WriteTreeCycles(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"/p/a.ts": `class A extends B { a: string; }
class B extends A { b: string; }
`,
	})
	h, err := ix.Hierarchy()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.WriteTree(&buf, func(n ClassNode) string { return n.Name }))

	assert.Equal(t, "B\n  A\ncycle: B -> A\n", buf.String())
}

func TestHierarchy_WriteTreeDefaultLabel(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"/p/a.ts": "class Solo { z: number; }\n",
	})
	h, err := ix.Hierarchy()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.WriteTree(&buf, nil))

	assert.Equal(t, ClassID(ix.Files()[0].Path, "Solo")+"\n", buf.String())
}
