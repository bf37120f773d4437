package util

// Sentinel histogram labels for missing click metadata
const (
	LabelUnknown = "Unknown"
	LabelDirect  = "Direct"
)

// DefaultAnalyticsWindowDays is the lookback applied when the days query
// parameter is absent or unparsable.
const DefaultAnalyticsWindowDays = 30

// ReservedUsernames are route segments that can never be claimed as a
// public profile username.
var ReservedUsernames = []string{"api", "auth", "admin", "favicon.ico", "robots.txt"}

// IsReservedUsername reports whether a username collides with a route.
func IsReservedUsername(username string) bool {
	for _, r := range ReservedUsernames {
		if username == r {
			return true
		}
	}
	return false
}
