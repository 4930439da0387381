package workouts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/gymlog"
)

// MaxOffsetMinutes bounds the client offset; real zones span UTC-12 to UTC+14.
const MaxOffsetMinutes = 14 * 60

// ResolveDayWindow returns the half-open UTC interval [start, end) covering the
// calendar day dateStr (YYYY-MM-DD) in a client timezone. utcOffsetMinutes uses
// the browser getTimezoneOffset convention: minutes to add to local time to get
// UTC, so UTC+2 is -120 and UTC-5 is 300. Offsets beyond MaxOffsetMinutes
// either way are rejected.
//
// Only the three numeric components are checked; out of range values
// normalise the way time.Date does (2024-02-30 is March 1st).
func ResolveDayWindow(dateStr string, utcOffsetMinutes int) (start, end time.Time, err error) {
	if err := checkOffset(utcOffsetMinutes); err != nil {
		return time.Time{}, time.Time{}, err
	}

	parts := strings.Split(strings.TrimSpace(dateStr), "-")
	if len(parts) != 3 {
		return time.Time{}, time.Time{}, gymlog.NewValidationError("date", "expected YYYY-MM-DD")
	}

	var ymd [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, time.Time{}, gymlog.NewValidationError("date", "expected YYYY-MM-DD")
		}
		ymd[i] = n
	}

	start = time.Date(ymd[0], time.Month(ymd[1]), ymd[2], 0, 0, 0, 0, time.UTC).
		Add(time.Duration(utcOffsetMinutes) * time.Minute)
	return start, start.Add(24 * time.Hour), nil
}

// ParseOffset parses the offset query value; empty means UTC.
func ParseOffset(offset string) (int, error) {
	offset = strings.TrimSpace(offset)
	if offset == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(offset)
	if err != nil {
		return 0, gymlog.NewValidationError("offset", "expected whole minutes")
	}
	if err := checkOffset(n); err != nil {
		return 0, err
	}
	return n, nil
}

func checkOffset(minutes int) error {
	if minutes < -MaxOffsetMinutes || minutes > MaxOffsetMinutes {
		return gymlog.NewValidationError(
			"offset",
			fmt.Sprintf("must be between -%d and %d minutes", MaxOffsetMinutes, MaxOffsetMinutes),
		)
	}
	return nil
}
