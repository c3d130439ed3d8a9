package ledger

import "time"

// rippleEpochOffset is the number of seconds between the Unix epoch and the
// ledger epoch (2000-01-01T00:00:00Z).
const rippleEpochOffset = 946684800

// TimeFromRippleEpoch converts a ledger timestamp to wall-clock time.
func TimeFromRippleEpoch(secs int64) time.Time {
	return time.Unix(secs+rippleEpochOffset, 0).UTC()
}

// RippleEpochFromTime converts wall-clock time to a ledger timestamp.
func RippleEpochFromTime(t time.Time) int64 {
	return t.Unix() - rippleEpochOffset
}
