package util

import (
	ua "github.com/mileusna/useragent"
)

// ClientInfo is the parsed projection of a User-Agent header stored on
// every click row.
type ClientInfo struct {
	Device  string
	Browser string
	OS      string
}

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

// ParseUserAgent extracts device/browser/OS from a raw User-Agent string.
// Parsing is best-effort: anything without a recognizable device class is
// treated as desktop, and missing names fall back to "Unknown".
func ParseUserAgent(raw string) ClientInfo {
	parsed := ua.Parse(raw)

	device := DeviceDesktop
	switch {
	case parsed.Mobile:
		device = DeviceMobile
	case parsed.Tablet:
		device = DeviceTablet
	case parsed.Bot:
		device = DeviceBot
	}

	browser := parsed.Name
	if browser == "" {
		browser = LabelUnknown
	}

	osName := parsed.OS
	if osName == "" {
		osName = LabelUnknown
	}

	return ClientInfo{Device: device, Browser: browser, OS: osName}
}
