package utils

import (
	"fmt"
	"time"
)

// LocalClockToUTC converts an HH:MM wall-clock time in the named zone to the
// UTC HH:MM it falls on at the date of ref.
func LocalClockToUTC(clock, zone string, ref time.Time) (string, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", fmt.Errorf("unknown time zone %q", zone)
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return "", fmt.Errorf("reminder time must be HH:MM, got %q", clock)
	}
	ref = ref.In(loc)
	local := time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	return local.UTC().Format("15:04"), nil
}
