package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned for durations that cannot be used for a sanction or cooldown.
var ErrInvalidDuration = errors.New("invalid duration")

// dayUnits splits an optional week and day prefix from the time.ParseDuration remainder.
var dayUnits = regexp.MustCompile(`^(?:(\d+)w)?(?:(\d+)d)?(.*)$`)

// ParseDuration extends time.ParseDuration with leading weeks (w) and days (d),
// e.g. "7d", "1w", "1d12h". The result is always positive.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}

	m := dayUnits.FindStringSubmatch(s)
	var total time.Duration
	for idx, unit := range []time.Duration{7 * 24 * time.Hour, 24 * time.Hour} {
		raw := m[idx+1]
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n > (math.MaxInt64-int64(total))/int64(unit) {
			return 0, fmt.Errorf("%w: %q is too long", ErrInvalidDuration, s)
		}
		total += time.Duration(n) * unit
	}

	if rest := m[3]; rest != "" {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		if d < 0 {
			return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidDuration, s)
		}
		if d > math.MaxInt64-total {
			return 0, fmt.Errorf("%w: %q is too long", ErrInvalidDuration, s)
		}
		total += d
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidDuration, s)
	}
	return total, nil
}

// FormatDuration renders d compactly, e.g. "2d 3h" or "45m".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return strings.Join(parts, " ")
}
