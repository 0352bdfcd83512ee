package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwulff/fileforge/internal/store"
)

func newAccountCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect or delete the local account",
	}
	cmd.AddCommand(newAccountShowCmd(opts))
	cmd.AddCommand(newAccountDeleteCmd(opts))
	return cmd
}

func newAccountShowCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored account",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatTable, formatJSON, formatYAML:
			default:
				return fmt.Errorf("unknown output format %q", format)
			}

			st, err := store.Open(opts.cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			w := cmd.OutOrStdout()
			u := st.LoadUser()
			if u == nil {
				fmt.Fprintln(w, "No account. Start fileforge and log in to create one.")
				return nil
			}
			if format != formatTable {
				return printOutput(w, format, u)
			}

			t := NewTable(w, "NAME", "SUBSCRIPTION", "TRIAL ENDS", "DARK MODE", "NOTIFICATIONS")
			trialEnds := "-"
			if u.TrialEndsAt != nil {
				trialEnds = u.TrialEndsAt.Local().Format("2006-01-02 15:04")
			}
			t.AddRow(u.Name, string(u.Subscription), trialEnds, fmt.Sprint(u.Settings.DarkMode), fmt.Sprint(u.Settings.Notifications))
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, json, yaml")
	return cmd
}

func newAccountDeleteCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the stored account; conversion history is kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete the account without --yes")
			}
			st, err := store.Open(opts.cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if st.LoadUser() == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No account to delete.")
				return nil
			}
			if err := st.SaveUser(nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}
