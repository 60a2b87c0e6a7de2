package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/GromitDog/GUMS-sub000/internal/importer"
)

func newImportCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Post payment batches from CSV files in import/",
		Long: "Reads payment CSV files and posts each row as a payment receipt.\n" +
			"With no --file flag, every CSV in the workspace import/ directory is\n" +
			"processed and moved to import/processed/.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if file != "" {
				return importFile(cmd, ws, file, false)
			}

			files, err := importer.Scan(ws.dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				cmd.Println("No files to import")
				return nil
			}
			for _, f := range files {
				if err := importFile(cmd, ws, f.Path, true); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().String("dir", ".", "workspace directory")
	cmd.Flags().StringVar(&file, "file", "", "import a single CSV file in place")
	return cmd
}

// importFile parses and posts one CSV. Bad rows are reported and skipped;
// the rest of the batch still posts. Files from the import/ directory are
// moved to import/processed/ afterwards.
func importFile(cmd *cobra.Command, ws *workspace, path string, moveWhenDone bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	payments, err := importer.ParsePayments(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	result := importer.PostPayments(cmd.Context(), ws.posting, payments)
	for _, rowErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "%s row %d: %v\n", filepath.Base(path), rowErr.Row, rowErr.Err)
	}
	ws.audit("import", fmt.Sprintf("%s: %d posted, %d failed", filepath.Base(path), result.Posted, len(result.Errors)), 0)
	cmd.Printf("%s: posted %d of %d payments\n", filepath.Base(path), result.Posted, len(payments))

	if moveWhenDone {
		if err := importer.MarkProcessed(ws.dir, filepath.Base(path)); err != nil {
			return err
		}
	}
	return nil
}
