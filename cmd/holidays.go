package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kezhenxu94/after-hours/pkg/schedule"
)

var (
	holidayYear   int
	holidayFormat string
)

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "List the US holidays on which no business day starts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch holidayFormat {
		case "ics":
			if err := schedule.WriteHolidayCalendar(out, holidayYear, time.Local); err != nil {
				return fmt.Errorf("failed to write calendar: %v", err)
			}
			return nil
		case "json":
			type holiday struct {
				Name string `json:"name"`
				Date string `json:"date"`
			}
			var list []holiday
			for _, h := range schedule.HolidaysInYear(holidayYear, time.Local) {
				list = append(list, holiday{Name: h.Name, Date: h.Date.Format("2006-01-02")})
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		default:
			return fmt.Errorf("unsupported format %q, expected json or ics", holidayFormat)
		}
	},
}

func init() {
	holidaysCmd.Flags().IntVar(&holidayYear, "year", time.Now().Year(), "Calendar year")
	holidaysCmd.Flags().StringVar(&holidayFormat, "format", "json", "Output format (json, ics)")
	rootCmd.AddCommand(holidaysCmd)
}
