package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kezhenxu94/after-hours/pkg/controller"
	"github.com/kezhenxu94/after-hours/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change the stored Delay Send settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := settingsManager(cmd)
		if err != nil {
			return err
		}
		s, err := m.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load settings: %v", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Delay Send:     %s\n", enabledString(s.DelaySendEnabled))
		fmt.Fprintf(out, "Business hours: %s\n", controller.HoursSummary(s))
		return nil
	},
}

var settingsToggleCmd = &cobra.Command{
	Use:   "toggle [on|off]",
	Short: "Flip Delay Send, or set it explicitly",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled *bool
		if len(args) == 1 {
			switch args[0] {
			case "on":
				v := true
				enabled = &v
			case "off":
				v := false
				enabled = &v
			default:
				return fmt.Errorf("invalid state %q, expected on or off", args[0])
			}
		}

		m, err := settingsManager(cmd)
		if err != nil {
			return err
		}
		state, err := m.Toggle(cmd.Context(), enabled)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Delay Send feature is now %s\n", enabledString(state))
		return nil
	},
}

var settingsHoursCmd = &cobra.Command{
	Use:   "hours START END",
	Short: "Set business hours as whole hours from 0 to 23",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid start hour %q: %v", args[0], err)
		}
		end, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid end hour %q: %v", args[1], err)
		}

		m, err := settingsManager(cmd)
		if err != nil {
			return err
		}
		s, err := m.SetBusinessHours(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Business hours updated to %s - %s.\n",
			controller.FormatHour(s.BusinessStartHour), controller.FormatHour(s.BusinessEndHour))
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsToggleCmd, settingsHoursCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingsManager(cmd *cobra.Command) (*settings.Manager, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	client, err := localClient(cfg)
	if err != nil {
		return nil, err
	}
	return newManager(cmd.Context(), cfg, client)
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
