package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// importCmd uploads a CSV of businesses
var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import businesses from a CSV file",
	Long: `Upload a CSV with the columns title, phone, city and type.

Rows without a title are skipped. Rows the server fails to store are
listed with the reason; the rest are still imported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := newClient().ImportCSV(ctx, filepath.Base(args[0]), f)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.Message)
		fmt.Fprintf(out, "imported=%d failed=%d\n", res.Imported, res.Failed)
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  %q: %s\n", e.Business.Title, e.Error)
		}
		return nil
	},
}

var exportDir string

// exportCmd downloads a CSV export
var exportCmd = &cobra.Command{
	Use:       "export <businesses|users>",
	Short:     "Export businesses or users to CSV",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"businesses", "users"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c := newClient()
		var (
			name string
			body []byte
			err  error
		)
		switch args[0] {
		case "businesses":
			name, body, err = c.ExportBusinesses(ctx)
		case "users":
			name, body, err = c.ExportUsers(ctx)
		}
		if err != nil {
			return err
		}
		if name == "" {
			name = args[0] + ".csv"
		}

		path := filepath.Join(exportDir, name)
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(body))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "Output directory")
}
