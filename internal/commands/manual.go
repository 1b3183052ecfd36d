package commands

import (
	"fmt"

	"attendance-bot/internal/app"
	"attendance-bot/internal/handler"
	"attendance-bot/internal/service"

	"github.com/spf13/cobra"
)

func newManualCmd(rt *runtime) *cobra.Command {
	var user, date, in, out string

	cmd := &cobra.Command{
		Use:     "manual",
		Short:   "Record a past day by hand",
		Long:    "Record a past day for a user. Without --out the session stays open until the user checks out.",
		Example: `  attendancectl manual --user 123456789 --date 2024-03-04 --in 09:00 --out 18:00`,
		RunE: rt.withServices(func(cmd *cobra.Command, args []string, s *app.Services) error {
			input := service.ManualEntryInput{Date: date, CheckIn: in}
			if out != "" {
				input.CheckOut = &out
			}

			res, err := s.Attendance.ManualEntry(cmd.Context(), user, input)
			if err != nil {
				return err
			}
			if rt.asJSON {
				return rt.printJSON(cmd.OutOrStdout(), res)
			}

			line := fmt.Sprintf("%s %s: %s", user, res.Date, res.CheckIn)
			if res.CheckOut != nil {
				line += fmt.Sprintf(" ~ %s (%s)", *res.CheckOut, handler.FormatMinutes(res.WorkMinutes))
			} else {
				line += " ~ (open)"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), line)
			return err
		}),
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "User id")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date as YYYY-MM-DD")
	cmd.Flags().StringVar(&in, "in", "", "Check-in time as HH:MM")
	cmd.Flags().StringVar(&out, "out", "", "Check-out time as HH:MM")
	for _, name := range []string{"user", "date", "in"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
