package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/typeshape/internal/config"
	"github.com/mvp-joe/typeshape/internal/extractor"
	"github.com/mvp-joe/typeshape/internal/mcp"
)

// hierarchyCmd represents the hierarchy command
var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "Print the class inheritance tree of the source tree",
	Long: `Hierarchy parses the source tree and prints every named class as
'path#Name', indented below the class it extends. Classes whose parent
cannot be resolved to a class are printed as roots. Inheritance cycles are
listed at the end.

Example:
  typeshape hierarchy`,
	RunE: runHierarchy,
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	return printHierarchy(cmd.Context(), cfg, cmd.OutOrStdout())
}

// printHierarchy loads the source tree of cfg and writes its class forest to out.
func printHierarchy(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ex, err := extractor.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	program, err := ex.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	if program.Hierarchy == nil {
		return fmt.Errorf("class hierarchy is unavailable")
	}
	if program.Hierarchy.Size() == 0 {
		fmt.Fprintln(out, "No classes found")
		return nil
	}

	return program.Hierarchy.WriteTree(out, mcp.RelativeLabel(cfg.Paths.Root))
}
