package calendar

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// gameworldZone is the zone gameworld start times are published in.
var gameworldZone = mustLoadZone("Europe/London")

func mustLoadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

var dateLayouts = map[string]string{
	"en-US": "01/02/2006",
	"de":    "02.01.2006",
	"fr":    "02/01/2006",
	"it":    "02/01/2006",
	"es":    "02/01/2006",
	"pl":    "02.01.2006",
	"ru":    "02.01.2006",
	"tr":    "02.01.2006",
	"nl":    "02-01-2006",
	"ja":    "2006/01/02",
	"zh":    "2006/01/02",
}

// StartDate formats gameworld dates. A start at midnight means the time is
// not decided yet, so only the date is shown.
type StartDate struct {
	t time.Time
}

// NewStartDate wraps a unix timestamp.
func NewStartDate(unix int64) StartDate {
	return StartDate{t: time.Unix(unix, 0).In(gameworldZone)}
}

// HasTime reports whether the start time is known.
func (d StartDate) HasTime() bool {
	return d.t.Hour() != 0 || d.t.Minute() != 0
}

// Time returns the instant in the gameworld zone.
func (d StartDate) Time() time.Time {
	return d.t
}

// Date renders the date only.
func (d StartDate) Date(locale string) string {
	return d.t.Format(dateLayout(locale))
}

// DateTimeShort renders date and time, or only the date when the time is not
// known.
func (d StartDate) DateTimeShort(locale string) string {
	if !d.HasTime() {
		return d.Date(locale)
	}
	return d.t.Format(dateLayout(locale) + " 15:04")
}

// TimeShort renders the time, or "" when it is not known.
func (d StartDate) TimeShort() string {
	if !d.HasTime() {
		return ""
	}
	return d.t.Format("15:04")
}

// Zone renders the UTC offset such as "UTC+1".
func (d StartDate) Zone() string {
	_, offset := d.t.Zone()
	if offset == 0 {
		return "UTC"
	}
	sign := "+"
	if offset < 0 {
		sign, offset = "-", -offset
	}
	h, m := offset/3600, offset%3600/60
	if m != 0 {
		return fmt.Sprintf("UTC%s%d:%02d", sign, h, m)
	}
	return fmt.Sprintf("UTC%s%d", sign, h)
}

func dateLayout(locale string) string {
	if l, ok := dateLayouts[locale]; ok {
		return l
	}
	lang, _, _ := strings.Cut(locale, "-")
	if l, ok := dateLayouts[lang]; ok {
		return l
	}
	return "02/01/2006"
}
