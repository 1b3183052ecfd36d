package commands

import (
	"fmt"
	"strconv"

	"attendance-bot/internal/app"

	"github.com/spf13/cobra"
)

func newHolidaysCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Manage the non-working day calendar",
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the years in FILE with its non-working days",
		Args:  cobra.ExactArgs(1),
		RunE: rt.withServices(func(cmd *cobra.Command, args []string, s *app.Services) error {
			n, err := s.Calendar.LoadFromJSON(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d non-working days from %s\n", n, args[0])
			return err
		}),
	}

	listCmd := &cobra.Command{
		Use:   "list YEAR MONTH",
		Short: "Show the non-working days of one month",
		Args:  cobra.ExactArgs(2),
		RunE: rt.withServices(func(cmd *cobra.Command, args []string, s *app.Services) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			month, err := strconv.Atoi(args[1])
			if err != nil || month < 1 || month > 12 {
				return fmt.Errorf("invalid month %q", args[1])
			}

			days, err := s.Calendar.GetNonWorkingDaysForMonth(cmd.Context(), year, month)
			if err != nil {
				return err
			}
			if rt.asJSON {
				return rt.printJSON(cmd.OutOrStdout(), days)
			}
			for _, d := range days {
				fmt.Fprintln(cmd.OutOrStdout(), d.Date)
			}
			return nil
		}),
	}

	cmd.AddCommand(importCmd, listCmd)
	return cmd
}
