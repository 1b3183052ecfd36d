package commands

import (
	"fmt"
	"text/tabwriter"

	"attendance-bot/internal/app"

	"github.com/spf13/cobra"
)

func newUsersCmd(rt *runtime) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"ls"},
		Short:   "List known users",
		RunE: rt.withServices(func(cmd *cobra.Command, args []string, s *app.Services) error {
			list := s.Users.GetAllUsers
			if activeOnly {
				list = s.Users.ListActiveUsers
			}
			users, err := list(cmd.Context())
			if err != nil {
				return err
			}

			if rt.asJSON {
				return rt.printJSON(cmd.OutOrStdout(), users)
			}
			if len(users) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDEPARTMENT\tLAST ACTIVE")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.UserID, u.DisplayName(), u.Department, u.LastActive.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		}),
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only users seen within ACTIVE_USER_DAYS")

	return cmd
}
