package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"rental-service/internal/model"
	"rental-service/internal/paystatus"
	"rental-service/internal/store"

	"github.com/spf13/cobra"
)

// opener connects to the configured database, migrating it on the way
type opener func() (*store.Store, error)

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "rentctl",
		Short:         "Rental service administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		migrateCmd(open),
		createAdminCmd(open),
		setAdminPasswordCmd(open),
		monthStatusCmd(open, time.Now),
	)
	return root
}

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := open(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func createAdminCmd(open opener) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}

			admin, err := s.CreateAdmin(username, password)
			if errors.Is(err, store.ErrUsernameTaken) {
				return fmt.Errorf("administrator %q already exists", username)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Administrator %s created (id %d).\n", admin.Username, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "administrator username")
	cmd.Flags().StringVar(&password, "password", "", "administrator password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func setAdminPasswordCmd(open opener) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "set-admin-password",
		Short: "Replace an administrator's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}

			err = s.SetAdminPassword(username, password)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("administrator %q does not exist", username)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s.\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "administrator username")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func monthStatusCmd(open opener, now func() time.Time) *cobra.Command {
	var month string
	var year int

	cmd := &cobra.Command{
		Use:   "month-status",
		Short: "Print who has and has not paid for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			current := now().UTC()
			m := current.Month()
			if month != "" {
				var ok bool
				if m, ok = model.MonthNumber(month); !ok {
					return fmt.Errorf("unknown month %q, expected a full English name such as March", month)
				}
			}
			if year == 0 {
				year = current.Year()
			}
			if year < 1 || year > 9999 {
				return fmt.Errorf("year %d out of range", year)
			}

			s, err := open()
			if err != nil {
				return err
			}
			report, err := paystatus.NewAggregator(s).Report(paystatus.NewPeriod(m, year))
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month name, defaults to the current month")
	cmd.Flags().IntVar(&year, "year", 0, "year, defaults to the current year")
	return cmd
}

func printReport(out io.Writer, report *paystatus.Report) error {
	fmt.Fprintf(out, "%s: %d paid, %d not paid\n\n", report.Period, len(report.Paid), len(report.Unpaid))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tTENANT\tSTATUS\tAMOUNT\tPAID ON")
	for _, rows := range [][]paystatus.Row{report.Paid, report.Unpaid} {
		for _, row := range rows {
			amount, paidOn := "-", "-"
			if row.Payment != nil {
				amount = row.Payment.Amount.StringFixed(2)
				paidOn = row.Payment.Date().Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.Tenant.RoomNumber, row.Tenant.Name, row.Label, amount, paidOn)
		}
	}
	return w.Flush()
}
