package backtest

import "time"

// Timestamps returns start, start+step, ... while before end, then end itself.
func Timestamps(start, end time.Time, step time.Duration) []time.Time {
	if step <= 0 {
		step = time.Minute
	}
	if end.Before(start) {
		return nil
	}
	out := make([]time.Time, 0, int(end.Sub(start)/step)+2)
	for t := start; t.Before(end); t = t.Add(step) {
		out = append(out, t)
	}
	return append(out, end)
}

// CeilMinute rounds up to the next whole minute; whole minutes are unchanged.
func CeilMinute(t time.Time) time.Time {
	f := t.Truncate(time.Minute)
	if f.Equal(t) {
		return t
	}
	return f.Add(time.Minute)
}
