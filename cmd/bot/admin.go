package main

import (
	"fmt"
	"os"
	"strconv"

	"hr-ops-bot/internal/config"
	"hr-ops-bot/internal/models"
	"hr-ops-bot/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cliActor is recorded as the actor of changes made from the command line.
const cliActor = "cli"

func withStores(fn func(st *stores) error) error {
	st, err := openStores(config.Load())
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(st)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the bot tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(func(st *stores) error {
				logrus.Info("Database schema is up to date")
				return nil
			})
		},
	}
}

func holidaysCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "holidays", Short: "Manage the non-working days calendar"}
	cmd.AddCommand(holidaysImportCmd())
	cmd.AddCommand(holidaysListCmd())
	return cmd
}

func holidaysImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored non-working days with a calendar JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(func(st *stores) error {
				n, err := service.NewNonWorkingDayService(st.holidays).LoadFromJSON(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d non-working days from %s\n", n, args[0])
				return nil
			})
		},
	}
}

func holidaysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored non-working days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(func(st *stores) error {
				days, err := service.NewNonWorkingDayService(st.holidays).GetNonWorkingDays(cmd.Context())
				if err != nil {
					return err
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Date", "Weekday"})
				for _, d := range days {
					tw.AppendRow(table.Row{d.Key(), d.Date.Weekday()})
				}
				tw.AppendFooter(table.Row{"Total", len(days)})
				tw.Render()
				return nil
			})
		},
	}
}

func approverCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "approver", Short: "Manage team approvers"}
	cmd.AddCommand(approverSetCmd())
	cmd.AddCommand(approverRemoveCmd())
	cmd.AddCommand(approverListCmd())
	return cmd
}

func parseTeam(arg string) (uint, error) {
	team, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || team == 0 {
		return 0, fmt.Errorf("invalid team id %q", arg)
	}
	return uint(team), nil
}

func approverSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <team-id> <discord-user-id>",
		Short: "Assign the approver of a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := parseTeam(args[0])
			if err != nil {
				return err
			}

			return withStores(func(st *stores) error {
				if err := service.NewApproverService(st.teams).Assign(cmd.Context(), cliActor, team, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Team %d is now approved by %s\n", team, args[1])
				return nil
			})
		},
	}
}

func approverRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <team-id>",
		Short: "Remove the approver of a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := parseTeam(args[0])
			if err != nil {
				return err
			}

			return withStores(func(st *stores) error {
				removed, err := service.NewApproverService(st.teams).Unassign(cmd.Context(), cliActor, team)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Team %d had no approver\n", team)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Approver of team %d removed\n", team)
				return nil
			})
		},
	}
}

func approverListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List team approvers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(func(st *stores) error {
				list, err := service.NewApproverService(st.teams).List(cmd.Context())
				if err != nil {
					return err
				}
				printApprovers(list)
				return nil
			})
		},
	}
}

func printApprovers(list []models.TeamApprover) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Team", "Approver", "Updated"})
	for _, a := range list {
		tw.AppendRow(table.Row{a.TeamID, a.ApproverID, a.UpdatedAt.Format("2006-01-02 15:04")})
	}
	tw.Render()
}
