package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/chatflow/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow-id...]",
	Short: "Check flows for consistency",
	Long: `Loads each flow (all flows when none is given) and reports every edge
or port problem found, such as a trigger with incoming edges or a condition with
duplicate branches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := loadApp(ctx, cmd, args)
		if err != nil {
			return err
		}
		defer app.Close()

		ids := args
		if len(ids) == 0 {
			if ids, err = app.Engine.ListFlows(ctx); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, id := range ids {
			g, err := app.Engine.Inspect(ctx, id)
			if err == nil {
				err = schema.ValidateGraph(g)
			}
			if err == nil {
				fmt.Fprintf(out, "%s: valid ✅\n", id)
				for _, n := range schema.Unreachable(g) {
					fmt.Fprintf(out, "  ! node %s is unreachable from the trigger\n", n)
				}
				continue
			}
			failed++
			fmt.Fprintf(out, "%s: invalid ❌\n", id)
			problems := schema.ValidationErrors(err)
			if len(problems) == 0 {
				problems = []error{err}
			}
			for _, p := range problems {
				fmt.Fprintf(out, "  - %v\n", p)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d flows failed validation", failed, len(ids))
		}
		if len(ids) == 0 {
			return errors.New("no flows found")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
