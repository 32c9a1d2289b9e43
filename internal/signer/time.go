package signer

import "time"

// SigningTime wraps the signing instant with cached format strings.
type SigningTime struct {
	time.Time
	timeFormat      string
	shortTimeFormat string
}

// NewSigningTime creates a SigningTime from t, converted to UTC.
func NewSigningTime(t time.Time) SigningTime {
	return SigningTime{
		Time: t.UTC(),
	}
}

// TimeFormat returns the time formatted for X-Goog-Date.
// Format: YYYYMMDDTHHMMSSZ (e.g., 20220610T000000Z)
func (st *SigningTime) TimeFormat() string {
	if st.timeFormat == "" {
		st.timeFormat = st.Time.Format(TimeFormat)
	}
	return st.timeFormat
}

// ShortTimeFormat returns the time formatted for the credential scope.
// Format: YYYYMMDD (e.g., 20220610)
func (st *SigningTime) ShortTimeFormat() string {
	if st.shortTimeFormat == "" {
		st.shortTimeFormat = st.Time.Format(ShortTimeFormat)
	}
	return st.shortTimeFormat
}
