package commands

import (
	"fmt"

	"attendance-bot/internal/app"
	"attendance-bot/internal/clock"
	"attendance-bot/internal/handler"

	"github.com/spf13/cobra"
)

func newReportCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print attendance reports",
	}

	var user, month string
	monthly := &cobra.Command{
		Use:     "monthly",
		Short:   "Monthly report for one user",
		Example: `  attendancectl report monthly --user 123456789 --month 2024-03`,
		RunE: rt.withServices(func(cmd *cobra.Command, args []string, s *app.Services) error {
			if month == "" {
				month = s.Clock.Now().Format(clock.MonthLayout)
			}
			report, err := s.Reports.GetMonthlyReport(cmd.Context(), user, month)
			if err != nil {
				return err
			}
			if rt.asJSON {
				return rt.printJSON(cmd.OutOrStdout(), report)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), handler.FormatReport(month+" 월간 리포트 ("+user+")", report))
			return err
		}),
	}
	monthly.Flags().StringVarP(&user, "user", "u", "", "User id")
	monthly.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	_ = monthly.MarkFlagRequired("user")

	var weeklyUser string
	weekly := &cobra.Command{
		Use:   "weekly",
		Short: "Report for the current week",
		RunE: rt.withServices(func(cmd *cobra.Command, args []string, s *app.Services) error {
			report, err := s.Reports.GetWeeklyReport(cmd.Context(), weeklyUser)
			if err != nil {
				return err
			}
			if rt.asJSON {
				return rt.printJSON(cmd.OutOrStdout(), report)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), handler.FormatReport("주간 리포트 "+report.Label+" ("+weeklyUser+")", report))
			return err
		}),
	}
	weekly.Flags().StringVarP(&weeklyUser, "user", "u", "", "User id")
	_ = weekly.MarkFlagRequired("user")

	cmd.AddCommand(monthly, weekly)
	return cmd
}
