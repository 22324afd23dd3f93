package main

import (
	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/exclave-go/exclave/internal/manager"
	"github.com/exclave-go/exclave/internal/unit"
	"github.com/exclave-go/exclave/internal/unitfile"
)

var titleCaser = cases.Title(language.English)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every unit found in the configured unit directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := appFrom(cmd)
			return listUnits(app)
		},
	}
}

func listUnits(app *App) error {
	results, errs := unitfile.LoadDir(app.Config.GetUnitDir())
	for path, err := range errs {
		app.Logger.Error("unit file failed to parse", "path", path, "error", err)
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()
	tbl := table.New("Kind", "ID", "Name", "Detail")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)

	for _, r := range results {
		switch {
		case r.Jig != nil:
			tbl.AddRow(titleCaser.String(unit.Jig.String()), r.Jig.ID, r.Jig.DisplayName, r.Jig.DefaultScenario)
		case r.Scenario != nil:
			tbl.AddRow(titleCaser.String(unit.Scenario.String()), r.Scenario.ID, r.Scenario.DisplayName, joinTests(r.Scenario))
		case r.Test != nil:
			tbl.AddRow(titleCaser.String(unit.Test.String()), r.Test.ID, r.Test.DisplayName, r.Test.ExecStart)
		case r.Interface != nil:
			tbl.AddRow(titleCaser.String(unit.Interface.String()), r.Interface.ID, r.Interface.DisplayName, "")
		}
	}

	tbl.Print()
	return nil
}

func joinTests(s *manager.ScenarioDescription) string {
	out := ""
	for i, t := range s.Tests {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}
