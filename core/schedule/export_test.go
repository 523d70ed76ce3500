package schedule

import "time"

// SetNow freezes the service clock and returns a func restoring it.
func SetNow(t time.Time) (restore func()) {
	prev := nowFunc
	nowFunc = func() time.Time { return t }
	return func() { nowFunc = prev }
}
