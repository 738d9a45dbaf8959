package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kezhenxu94/after-hours/pkg/controller"
	"github.com/kezhenxu94/after-hours/pkg/schedule"
	"github.com/kezhenxu94/after-hours/pkg/server"
)

var at string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether a message composed now would be delayed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := parseAt(at)
		if err != nil {
			return err
		}
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		client, err := localClient(cfg)
		if err != nil {
			return err
		}
		c, err := newController(cmd.Context(), cfg, client)
		if err != nil {
			return err
		}

		current, err := c.Settings(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load settings: %v", err)
		}
		hours := current.BusinessHours()
		denial, err := c.Scheduler(hours).Denial(cmd.Context(), now)
		if err != nil {
			return fmt.Errorf("failed to check business hours: %v", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Time:           %s\n", now.Format(server.TimeLayout))
		fmt.Fprintf(out, "Business hours: %s\n", controller.HoursSummary(current))
		if name, ok := schedule.HolidayName(now); ok {
			fmt.Fprintf(out, "Holiday:        %s\n", name)
		}
		switch {
		case denial == nil:
			fmt.Fprintln(out, "Inside business hours, the message sends immediately.")
		case !current.DelaySendEnabled:
			fmt.Fprintln(out, "Outside business hours, but Delay Send is disabled.")
		default:
			deliverAt := schedule.CalculateNextBusinessDayStart(now, hours)
			fmt.Fprintf(out, "Outside business hours, delivery deferred to %s.\n", controller.FormatDeliveryTime(deliverAt))
		}
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the start of the next business day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := parseAt(at)
		if err != nil {
			return err
		}
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		client, err := localClient(cfg)
		if err != nil {
			return err
		}
		c, err := newController(cmd.Context(), cfg, client)
		if err != nil {
			return err
		}

		current, err := c.Settings(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load settings: %v", err)
		}
		next := schedule.CalculateNextBusinessDayStart(now, current.BusinessHours())
		fmt.Fprintln(cmd.OutOrStdout(), next.Format(server.TimeLayout))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{checkCmd, nextCmd} {
		c.Flags().StringVar(&at, "at", "", "Local time to evaluate instead of now ("+server.TimeLayout+")")
		rootCmd.AddCommand(c)
	}
}

// parseAt reads a zone-less local time, defaulting to now.
func parseAt(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(server.TimeLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: expected %s", value, server.TimeLayout)
	}
	return t, nil
}
