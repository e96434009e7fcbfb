package loader

import (
	"time"

	"clifgo/clif"
)

// convertTimezone re-anchors every timestamp column's wall-clock time into
// siteTZ. Source timestamps carry no zone of their own (§2 "converts
// timestamp columns from unspecified local zone"), so conversion means
// reinterpreting the same year/month/day/hour/.../nanosecond values as
// having been observed in siteTZ, not a UTC offset shift.
func convertTimezone(t *clif.Table, siteTZ *time.Location) {
	if siteTZ == nil {
		return
	}
	for _, row := range t.Rows {
		for col, v := range row {
			if v.Kind != clif.KindTimestamp {
				continue
			}
			orig := v.Time
			row[col] = clif.Timestamp(time.Date(
				orig.Year(), orig.Month(), orig.Day(),
				orig.Hour(), orig.Minute(), orig.Second(), orig.Nanosecond(),
				siteTZ,
			))
		}
	}
}
