package session

import (
	"fmt"
	"time"
)

// DurationString formats the session's elapsed time as hours/minutes/seconds.
// For an active session the duration runs to now; for a closed one it runs
// to the recorded end time. Pure function of the session fields.
func (s *Session) DurationString(now time.Time) string {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}

	d := end.Sub(s.StartTime)
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	default:
		return fmt.Sprintf("%ds", sec)
	}
}
