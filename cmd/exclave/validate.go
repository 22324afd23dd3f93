package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/exclave-go/exclave/internal/depgraph"
	"github.com/exclave-go/exclave/internal/manager"
	"github.com/exclave-go/exclave/internal/unitfile"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Parse every unit file in the unit directory and report problems without starting the rig server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := appFrom(cmd)
			return validateUnits(app)
		},
	}
}

// validateUnits parses every unit file in the configured directory and
// loads it into a throwaway Manager, whose owning goroutine runs only
// until this function returns, purely so internal/depgraph can check
// cross-unit references — a jig naming a
// default scenario that isn't loaded, a scenario naming a test that
// isn't loaded — the same whole-library check a real `run` would only
// discover piecemeal, at select time.
func validateUnits(app *App) (err error) {
	results, parseErrs := unitfile.LoadDir(app.Config.GetUnitDir())

	failed := false
	for path, e := range parseErrs {
		failed = true
		fmt.Printf("%s %s: %v\n", color.RedString("FAIL"), path, e)
	}
	for _, r := range results {
		for _, w := range r.Warnings {
			fmt.Printf("%s %s\n", color.YellowString("WARN"), w)
		}
	}

	m := manager.New(app.Config, app.Logger, app.Runner)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = m.Run(ctx)
	}()
	defer func() { cancel(); <-runDone }()

	for _, r := range results {
		switch {
		case r.Jig != nil:
			if _, e := m.LoadJig(r.Jig); e != nil {
				failed = true
				fmt.Printf("%s jig %s: %v\n", color.RedString("FAIL"), r.Jig.ID, e)
			}
		case r.Scenario != nil:
			if _, e := m.LoadScenario(r.Scenario); e != nil {
				failed = true
				fmt.Printf("%s scenario %s: %v\n", color.RedString("FAIL"), r.Scenario.ID, e)
			}
		case r.Test != nil:
			if _, e := m.LoadTest(r.Test); e != nil {
				failed = true
				fmt.Printf("%s test %s: %v\n", color.RedString("FAIL"), r.Test.ID, e)
			}
		case r.Interface != nil:
			if _, e := m.LoadInterface(r.Interface, nil); e != nil {
				failed = true
				fmt.Printf("%s interface %s: %v\n", color.RedString("FAIL"), r.Interface.ID, e)
			}
		}
	}

	diagnostics, dgErr := depgraph.Validate(m)
	if dgErr != nil {
		return dgErr
	}
	for _, d := range diagnostics {
		failed = true
		fmt.Printf("%s %s\n", color.RedString("FAIL"), d.Error())
	}

	if failed {
		return fmt.Errorf("validation failed")
	}
	fmt.Println(color.GreenString("OK"))
	return nil
}
