package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

// WorkspaceInit is the WorkspaceInitializer used by the init command.
// Set during application wiring.
var WorkspaceInit core.WorkspaceInitializer

// sampleTodos seed an empty list with init --samples.
var sampleTodos = []string{
	"Learn the todo basics",
	"Finish the core features of the project",
	"Write a technical blog post",
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a todo workspace",
	Long: `Write a default .todoconfig and create the storage directory.

Safe to run on an existing workspace: files and directories that already
exist are skipped and not overwritten. With --samples, three example todos
are added when the current list is empty.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if WorkspaceInit == nil {
			return fmt.Errorf("workspace initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		backend, _ := cmd.Flags().GetString("backend")
		samples, _ := cmd.Flags().GetBool("samples")

		result, err := WorkspaceInit.Init(core.InitConfig{
			BasePath: absPath,
			Backend:  models.StorageBackend(backend),
		})
		if err != nil {
			return fmt.Errorf("initializing workspace: %w", err)
		}

		if len(result.Created) > 0 {
			fmt.Println("Created:")
			for _, p := range result.Created {
				fmt.Printf("  %s\n", relOrSelf(absPath, p))
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Println("Skipped (already exist):")
			for _, p := range result.Skipped {
				fmt.Printf("  %s\n", relOrSelf(absPath, p))
			}
		}

		if samples {
			if err := seedSamples(absPath); err != nil {
				return err
			}
		}

		fmt.Printf("\nWorkspace initialized at %s\n", absPath)
		return nil
	},
}

func seedSamples(absPath string) error {
	if TodoMgr == nil {
		return errNotInitialized
	}
	if BasePath != "" && filepath.Clean(BasePath) != absPath {
		return fmt.Errorf("--samples can only seed the active workspace %s", BasePath)
	}
	if TodoMgr.GetStats().Total > 0 {
		fmt.Println("List is not empty; skipping sample todos.")
		return nil
	}
	for _, text := range sampleTodos {
		if _, err := TodoMgr.AddTodo(text); err != nil {
			return fmt.Errorf("adding sample todo: %w", err)
		}
	}
	fmt.Printf("Added %d sample todos.\n", len(sampleTodos))
	return nil
}

func relOrSelf(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return p
	}
	return rel
}

func init() {
	initCmd.Flags().String("backend", "", "Storage backend to configure (file, nutsdb, memory)")
	initCmd.Flags().Bool("samples", false, "Seed an empty list with example todos")
	rootCmd.AddCommand(initCmd)
}
