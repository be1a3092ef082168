package cli

// Test Plan for Extract and Hierarchy Commands:
// - executeExtract writes mirrored declaration-only files under the output folder
// - --quiet prints a one-line summary instead of progress bars
// - --dry-run writes nothing
// - --root, --source and --output override the configuration
// - Overrides that place the output inside or over the source folder are rejected
// - --clean removes stale outputs
// - printHierarchy prints the class forest with root-relative labels
// - printSummary reports dry runs and syntax errors

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/typeshape/internal/config"
	"github.com/mvp-joe/typeshape/internal/extractor"
)

const fixtureSource = "../../testdata/code/typescript/project/src"

// setupProject copies the fixture sources into a temporary project root.
func setupProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	err := filepath.WalkDir(fixtureSource, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(fixtureSource, path)
		if err != nil {
			return err
		}
		target := filepath.Join(root, "src", rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, content, 0644)
	})
	require.NoError(t, err)
	return root
}

func projectConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Paths.Root = root
	return cfg
}

func TestExecuteExtract_WritesOutputs(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	var out bytes.Buffer

	err := executeExtract(context.Background(), projectConfig(root), extractOptions{quiet: true}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Extraction complete: 10 files, 8 shapes")

	content, err := os.ReadFile(filepath.Join(root, "types", "src", "models", "orphan.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export interface Orphan {\n    name: string;\n}\n", string(content))

	// .tsx is not in the default include patterns
	_, err = os.Stat(filepath.Join(root, "types", "src", "components", "widget.tsx"))
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteExtract_ProgressOutput(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	var out bytes.Buffer

	err := executeExtract(context.Background(), projectConfig(root), extractOptions{}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "✓ Extraction complete: 10 files")
	assert.Contains(t, out.String(), "Wrote 10 output files")
}

func TestExecuteExtract_DryRun(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	var out bytes.Buffer

	err := executeExtract(context.Background(), projectConfig(root), extractOptions{dryRun: true}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Would write 10 output files")
	_, err = os.Stat(filepath.Join(root, "types"))
	assert.True(t, os.IsNotExist(err), "dry run should not create the output folder")
}

func TestExecuteExtract_Overrides(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	cfg := projectConfig("/does/not/exist")

	opts := extractOptions{
		root:   root,
		source: "src/models",
		output: "gen",
		quiet:  true,
	}
	var out bytes.Buffer
	require.NoError(t, executeExtract(context.Background(), cfg, opts, &out))

	assert.Contains(t, out.String(), "Extraction complete: 7 files")
	_, err := os.Stat(filepath.Join(root, "gen", "src", "models", "user.ts"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "gen", "src", "local.ts"))
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteExtract_RejectsOutputInsideSource(t *testing.T) {
	t.Parallel()

	root := setupProject(t)

	err := executeExtract(context.Background(), projectConfig(root), extractOptions{output: "src/types"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrOutputInsideSource)
}

func TestExecuteExtract_RejectsCleaningTheRoot(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	opts := extractOptions{output: ".", clean: true, quiet: true}

	err := executeExtract(context.Background(), projectConfig(root), opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrOutputContainsSource)

	_, err = os.Stat(filepath.Join(root, "src", "models", "user.ts"))
	assert.NoError(t, err)
}

func TestExecuteExtract_Clean(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	stale := filepath.Join(root, "types", "src", "removed.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	err := executeExtract(context.Background(), projectConfig(root), extractOptions{clean: true, quiet: true}, &bytes.Buffer{})
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteExtract_Cancelled(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := executeExtract(ctx, projectConfig(root), extractOptions{quiet: true}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extraction cancelled")
}

func TestPrintHierarchy(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	var out bytes.Buffer

	require.NoError(t, printHierarchy(context.Background(), projectConfig(root), &out))

	assert.Equal(t, `src/globals.ts#GlobalBase
  src/local.ts#Local
src/models/base.ts#BaseClass
  src/models/channel.ts#Channel
  src/models/guild.ts#Guild
  src/models/user.ts#User
    src/models/admin.ts#Admin
src/models/base.ts#Registry
src/models/orphan.ts#Orphan
`, out.String())
}

func TestPrintHierarchy_NoClasses(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.ts"), []byte("export type A = string;\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, printHierarchy(context.Background(), projectConfig(root), &out))
	assert.Equal(t, "No classes found\n", out.String())
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	printSummary(&out, &extractor.Stats{
		FilesProcessed:      3,
		FilesWithErrors:     1,
		DeclarationsKept:    5,
		DeclarationsDropped: 2,
		Shapes:              2,
		VerbatimClasses:     1,
		Outputs:             []string{"a", "b", "c"},
		DryRun:              true,
		Duration:            1500 * time.Millisecond,
	})

	assert.Equal(t, `✓ Extraction complete: 3 files in 1.5s
  Would write 3 output files
  Shapes:           2
  Verbatim classes: 1
  Declarations:     5 kept, 2 dropped
  Files with syntax errors: 1
`, out.String())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), "Typeshape dev")
	assert.Contains(t, out.String(), "Git commit: none")
}
