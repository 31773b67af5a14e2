package fitness

import (
	"sort"
	"time"

	"github.com/sakif/fittrack/internal/model"
)

// Streak counts the consecutive calendar days, ending at the most recent
// logged day, that have at least one log. Input order and duplicates do not
// matter. Days are UTC.
func Streak(logTimes []time.Time) int {
	if len(logTimes) == 0 {
		return 0
	}

	seen := make(map[time.Time]struct{}, len(logTimes))
	days := make([]time.Time, 0, len(logTimes))
	for _, t := range logTimes {
		d := model.StartOfDay(t)
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	streak := 1
	for i := 1; i < len(days); i++ {
		if !days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			break
		}
		streak++
	}
	return streak
}
