package listing

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned when a short-form period can't be decoded
var ErrInvalidPeriod = errors.New("invalid time period")

var shortPeriodPattern = regexp.MustCompile(`^(\d+)([hd])$`)

// MaxPeriodHours is the longest period accepted, ten years
const MaxPeriodHours = 10 * 365 * 24

// Period is a time period made up of whole hours. Periods compare by value.
type Period struct {
	hours int
}

// NewPeriod creates a period of the given number of hours
func NewPeriod(hours int) (Period, error) {
	if hours <= 0 || hours > MaxPeriodHours {
		return Period{}, fmt.Errorf("%w: %d hours", ErrInvalidPeriod, hours)
	}
	return Period{hours: hours}, nil
}

// Hours returns a period of the given number of hours, panicking on
// values NewPeriod rejects. Intended for constants.
func Hours(hours int) Period {
	p, err := NewPeriod(hours)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePeriod decodes the short form of a period: "12h", "3d", or "all".
// "all" means no time restriction and decodes to nil.
func ParsePeriod(value string) (*Period, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "all" {
		return nil, nil
	}

	match := shortPeriodPattern.FindStringSubmatch(value)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
	}

	count, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
	}
	if match[2] == "d" {
		if count > MaxPeriodHours/24 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
		}
		count *= 24
	}

	p, err := NewPeriod(count)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Hours returns the length of the period in hours
func (p Period) Hours() int {
	return p.hours
}

// Duration returns the period as a time.Duration
func (p Period) Duration() time.Duration {
	return time.Duration(p.hours) * time.Hour
}

// String returns the short form of the period
func (p Period) String() string {
	if p.hours%24 == 0 {
		return fmt.Sprintf("%dd", p.hours/24)
	}
	return fmt.Sprintf("%dh", p.hours)
}

// FormatPeriod returns the short form of an optional period
func FormatPeriod(p *Period) string {
	if p == nil {
		return "all"
	}
	return p.String()
}

// SamePeriod reports whether two optional periods are equal
func SamePeriod(a, b *Period) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// StandardPeriodOptions returns the periods offered in listing menus
func StandardPeriodOptions() []Period {
	return []Period{Hours(1), Hours(12), Hours(24), Hours(72)}
}

// PeriodOptions returns the standard options, with current appended when it
// isn't one of them
func PeriodOptions(current *Period) []Period {
	options := StandardPeriodOptions()
	if current == nil {
		return options
	}
	for _, option := range options {
		if option == *current {
			return options
		}
	}
	return append(options, *current)
}
