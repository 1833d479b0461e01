package vault

import (
	"encoding/json"
	"math"
	"time"

	"github.com/iov-one/vault/errors"
)

// UnixTime is a point in time with a second precision, stored as the
// number of seconds since the epoch.
type UnixTime int64

// AsUnixTime truncates t to seconds.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// Time returns the UTC time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add shifts the time by d, truncated to seconds.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// AddDuration shifts the time by d. Unlike Add, it fails with ErrOverflow
// if the result is out of range.
func (t UnixTime) AddDuration(d UnixDuration) (UnixTime, error) {
	if (d > 0 && t > math.MaxInt64-UnixTime(d)) || (d < 0 && t < math.MinInt64-UnixTime(d)) {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d shifted by %d", t, d)
	}
	return t + UnixTime(d), nil
}

func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

func (t UnixTime) String() string {
	return t.Time().String()
}

// UnmarshalJSON accepts a number of seconds or, for readability of
// configuration files, an RFC 3339 string. Times before the epoch are
// rejected.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var (
		secs int64
		std  time.Time
	)
	switch {
	case json.Unmarshal(raw, &secs) == nil:
	case json.Unmarshal(raw, &std) == nil:
		secs = std.Unix()
	default:
		return errors.Wrap(errors.ErrInput, "invalid time format")
	}
	if secs < 0 {
		return errors.Wrap(errors.ErrInput, "time before epoch")
	}
	*t = UnixTime(secs)
	return nil
}

// UnixDuration is a time span with a second precision.
type UnixDuration int32

// AsUnixDuration truncates d to seconds.
func AsUnixDuration(d time.Duration) UnixDuration {
	return UnixDuration(d / time.Second)
}

func (d UnixDuration) Duration() time.Duration {
	return time.Duration(d) * time.Second
}

func (d UnixDuration) String() string {
	return d.Duration().String()
}

// MarshalJSON writes the number of seconds.
func (d UnixDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(int32(d))
}

// UnmarshalJSON accepts a number of seconds or a string parsed by
// time.ParseDuration, for example "72h".
func (d *UnixDuration) UnmarshalJSON(raw []byte) error {
	var secs int32
	if json.Unmarshal(raw, &secs) == nil {
		*d = UnixDuration(secs)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "invalid duration format")
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "duration: %s", err)
	}
	*d = AsUnixDuration(parsed)
	return nil
}
