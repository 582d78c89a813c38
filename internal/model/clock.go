// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// ClockFormat selects how message timestamps are rendered.
type ClockFormat string

const (
	ClockAuto ClockFormat = "auto" // follow the locale
	Clock12h  ClockFormat = "12h"
	Clock24h  ClockFormat = "24h"
)

const (
	layout12h = "03:04 PM"
	layout24h = "15:04"
)

// twelveHourRegions lists regions whose locales conventionally use a 12-hour clock.
var twelveHourRegions = map[string]bool{
	"US": true, "CA": true, "AU": true, "NZ": true, "IN": true, "PH": true,
	"PK": true, "BD": true, "EG": true, "SA": true, "JO": true, "MY": true,
	"CO": true, "MX": true, "SV": true, "HN": true, "NI": true,
}

// ParseClockFormat parses a config or flag value.
func ParseClockFormat(s string) (ClockFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ClockAuto, nil
	case "12h", "12":
		return Clock12h, nil
	case "24h", "24":
		return Clock24h, nil
	default:
		return "", fmt.Errorf("invalid clock format %q, must be one of: auto, 12h, 24h", s)
	}
}

// Toggle flips between the 12- and 24-hour forms. Auto is resolved first.
func (f ClockFormat) Toggle() ClockFormat {
	if f.Resolve(EnvLocale()) == Clock12h {
		return Clock24h
	}
	return Clock12h
}

// Resolve turns ClockAuto into a concrete format for the given POSIX or
// BCP 47 locale string. Unknown or empty locales resolve to 24h.
func (f ClockFormat) Resolve(locale string) ClockFormat {
	if f == Clock12h || f == Clock24h {
		return f
	}
	if uses12Hour(locale) {
		return Clock12h
	}
	return Clock24h
}

// FormatClock renders t as hour:minute in the local time zone.
func FormatClock(t time.Time, format ClockFormat) string {
	if format.Resolve(EnvLocale()) == Clock12h {
		return t.Local().Format(layout12h)
	}
	return t.Local().Format(layout24h)
}

// EnvLocale returns the locale governing time formatting, following the
// POSIX precedence LC_ALL > LC_TIME > LANG.
func EnvLocale() string {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// uses12Hour reports whether the locale's region conventionally uses a 12-hour clock.
func uses12Hour(locale string) bool {
	tag, ok := parseLocale(locale)
	if !ok {
		return false
	}
	region, conf := tag.Region()
	if conf == language.No {
		return false
	}
	return twelveHourRegions[region.String()]
}

// parseLocale accepts POSIX forms such as "en_US.UTF-8" or "de_DE@euro" as
// well as BCP 47 tags.
func parseLocale(locale string) (language.Tag, bool) {
	s := locale
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" || s == "C" || s == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
