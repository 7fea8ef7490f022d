package report

import (
	"math"
	"time"
)

// Row is one store's finished uptime/downtime figures. The last-hour columns
// are whole minutes; the day and week columns are hours with two decimals.
type Row struct {
	StoreID string

	UptimeLastHourMinutes   int64
	UptimeLastDayHours      float64
	UptimeLastWeekHours     float64
	DowntimeLastHourMinutes int64
	DowntimeLastDayHours    float64
	DowntimeLastWeekHours   float64
}

// Tally is a per-window pair of raw durations before presentation rounding.
type Tally struct {
	Up   time.Duration
	Down time.Duration
}

// Totals carries the raw walk output for all three windows.
type Totals struct {
	Hour Tally
	Day  Tally
	Week Tally
}

// NewRow rounds raw totals into presentation units: the hour window is floored
// to whole minutes, day and week are rounded half-up to two decimal hours.
func NewRow(storeID string, totals Totals) Row {
	return Row{
		StoreID:                 storeID,
		UptimeLastHourMinutes:   wholeMinutes(totals.Hour.Up),
		DowntimeLastHourMinutes: wholeMinutes(totals.Hour.Down),
		UptimeLastDayHours:      roundHours(totals.Day.Up),
		DowntimeLastDayHours:    roundHours(totals.Day.Down),
		UptimeLastWeekHours:     roundHours(totals.Week.Up),
		DowntimeLastWeekHours:   roundHours(totals.Week.Down),
	}
}

func wholeMinutes(d time.Duration) int64 {
	return int64(d / time.Minute)
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}
