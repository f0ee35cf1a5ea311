package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/molview/config"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or reset remembered viewer preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := openPrefs(config.Cfg())
		if err != nil {
			return err
		}
		defer prefs.Store().Close()

		snap, err := prefs.Load(cmd.Context())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "molecule:    %s\n", orUnset(snap.Molecule))
		if snap.Speed > 0 {
			fmt.Fprintf(w, "speed:       %g\n", snap.Speed)
		} else {
			fmt.Fprintln(w, "speed:       (unset)")
		}
		if snap.AutoRotate != nil {
			fmt.Fprintf(w, "auto_rotate: %t\n", *snap.AutoRotate)
		} else {
			fmt.Fprintln(w, "auto_rotate: (unset)")
		}
		fmt.Fprintf(w, "favorites:   %s\n", orUnset(strings.Join(snap.Favorites, ", ")))
		return nil
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every stored preference",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := openPrefs(config.Cfg())
		if err != nil {
			return err
		}
		defer prefs.Store().Close()

		if err := prefs.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "preferences reset")
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsResetCmd)
}
