package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newCSVCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export, import or delete questions in the spreadsheet layout",
	}
	cmd.AddCommand(newCSVExportCmd(a), newCSVImportCmd(a), newCSVDeleteCmd(a))
	return cmd
}

func newCSVExportCmd(a *app) *cobra.Command {
	var out, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every question to a CSV or XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repos, svcs, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer repos.Close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			switch strings.ToLower(format) {
			case "csv":
				return svcs.Transfer.ExportCSV(ctx, w)
			case "xlsx":
				return svcs.Transfer.ExportXLSX(ctx, w)
			default:
				return fmt.Errorf("unknown format %q (want csv or xlsx)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or xlsx")
	return cmd
}

func printSummary(cmd *cobra.Command, summary interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func newCSVImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create or overwrite the questions listed in a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			repos, svcs, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer repos.Close()

			summary, err := svcs.Transfer.Import(ctx, f)
			if err != nil {
				return fmt.Errorf("CSV processing failed: %w", err)
			}
			return printSummary(cmd, summary)
		},
	}
}

func newCSVDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file.csv>",
		Short: "Delete the questions whose ids fill the first CSV column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			repos, svcs, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer repos.Close()

			summary, err := svcs.Transfer.DeleteFromCSV(ctx, f)
			if err != nil {
				return fmt.Errorf("CSV processing failed: %w", err)
			}
			return printSummary(cmd, summary)
		},
	}
}
