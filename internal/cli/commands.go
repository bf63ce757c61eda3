package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/converter"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/repository"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/schema"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/types"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/ui"

	"github.com/spf13/cobra"
)

func entityArg(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing entity, one of: %s", strings.Join(schema.NewCatalog().Entities(), ", "))
	}
	return nil
}

func (a *app) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create any missing sheets and tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.repos.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render("✓ Schema ready in "+a.cfg.Workbook))
			return nil
		},
	}
}

func (a *app) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill empty tables with demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.repos.SeedDemo(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render("✓ Demo data seeded in "+a.cfg.Workbook))
			return nil
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List every row of a table",
		Args:  cobra.MatchAll(entityArg, cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.repos.ByEntity(args[0])
			if err != nil {
				return err
			}
			records, err := t.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return writeTable(cmd.OutOrStdout(), t.Schema().Headers(), records)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

func (a *app) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <entity> key=value...",
		Short: "Append a row",
		Example: `  carrental add vehicles plate=ZZZ-0001 make=Ford year=2022
  carrental add rentals "Rental ID=RENT-2025-003" customer="Jane Doe" vehiclePlate=NAB-1234`,
		Args: cobra.MatchAll(entityArg, cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.repos.ByEntity(args[0])
			if err != nil {
				return err
			}
			input, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			if err := t.Add(cmd.Context(), input); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render("✓ Added to "+t.Schema().Table))
			return nil
		},
	}
}

func (a *app) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update <entity> <position> key=value...",
		Short: "Overwrite the row at a position taken from the latest list",
		Long: `Overwrite the row at a position taken from the latest list.

Fields that are not given are reset to their defaults. Positions shift when
rows are added or deleted, so list again before updating.`,
		Args: cobra.MatchAll(entityArg, cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.repos.ByEntity(args[0])
			if err != nil {
				return err
			}
			position, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			input, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}
			if err := t.Update(cmd.Context(), position, input); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render(fmt.Sprintf("✓ Updated %s row %d", t.Schema().Table, position)))
			return nil
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <position>",
		Short: "Delete the row at a position taken from the latest list",
		Args:  cobra.MatchAll(entityArg, cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.repos.ByEntity(args[0])
			if err != nil {
				return err
			}
			position, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			if err := t.Delete(cmd.Context(), position); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render(fmt.Sprintf("✓ Deleted %s row %d", t.Schema().Table, position)))
			return nil
		},
	}
}

func (a *app) exportCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export <entity>",
		Short: "Write a table as CSV",
		Args:  cobra.MatchAll(entityArg, cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.repos.ByEntity(args[0])
			if err != nil {
				return err
			}
			records, err := t.List(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return converter.WriteCSV(w, t.Schema().Headers(), records)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <entity> <file.csv|file.xlsx>",
		Short: "Append every row of a CSV or XLSX file",
		Args:  cobra.MatchAll(entityArg, cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.repos.ByEntity(args[0])
			if err != nil {
				return err
			}
			result, err := importFile(cmd, t, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render(
				fmt.Sprintf("✓ Imported %d row(s) into %s", result.RowsProcessed, result.Table)))
			return nil
		},
	}
}

func importFile(cmd *cobra.Command, t repository.Table, path string) (*types.ImportResult, error) {
	data, err := converter.ReadFileData(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	result := &types.ImportResult{
		InputFile:    path,
		Table:        t.Schema().Table,
		ColumnsFound: data.Headers,
	}
	inputs := converter.Inputs(data)
	if err := t.AddAll(cmd.Context(), inputs); err != nil {
		return result, err
	}
	result.RowsProcessed = len(inputs)
	return result, nil
}

func (a *app) tuiCommand() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the workbook interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, pick)
		},
	}
	cmd.Flags().BoolVar(&pick, "pick", false, "Choose the workbook with a file picker")
	return cmd
}

func (a *app) runTUI(cmd *cobra.Command, pick bool) error {
	var m ui.Model
	if pick {
		m = ui.PickerModel(openRepositories)
	} else {
		m = ui.InitialModel(a.repos)
	}
	return ui.Run(cmd.Context(), m)
}

func parseAssignments(args []string) (map[string]types.Value, error) {
	input := make(map[string]types.Value, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid field %q, want key=value", arg)
		}
		input[key] = value
	}
	return input, nil
}

func parsePosition(s string) (int, error) {
	position, err := strconv.Atoi(s)
	if err != nil || position < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return position, nil
}

func writeTable(w io.Writer, headers []string, records []types.Record) error {
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := []string{strconv.Itoa(rec.Position)}
		for _, h := range headers {
			row = append(row, converter.ToText(rec.Get(schema.Normalize(h))))
		}
		rows[i] = row
	}

	_, err := fmt.Fprintln(w, ui.RecordTable(append([]string{"#"}, headers...), rows))
	return err
}

type jsonRecord struct {
	Position int                    `json:"position"`
	Fields   map[string]types.Value `json:"fields"`
}

func writeJSON(w io.Writer, records []types.Record) error {
	out := make([]jsonRecord, len(records))
	for i, rec := range records {
		out[i] = jsonRecord{Position: rec.Position, Fields: rec.Fields}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
