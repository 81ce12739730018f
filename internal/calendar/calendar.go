// Package calendar holds the presentation rules of the gameworld calendar:
// which entry comes next, whether its details are complete, how it is
// tagged and what a player can do with it.
package calendar

import (
	"net/url"
	"strings"
	"time"

	"lobbyctl/internal/lobby"
)

var backgrounds = map[string]string{
	"default":               "default",
	"speed":                 "defaultSpeed",
	"new years special":     "newYearsSpecial",
	"new year special 2025": "newYearSpecial2025",
	"qualification":         "final",
	"final":                 "final",
	"ptr":                   "ptr",
	"domain special":        "domainSpecial",
	"tides of conquest":     "tidesOfConquest",
	"glory of sparta":       "gloryOfSparta",
	"codex victoria":        "codexVictoria",
	"shores of war":         "shoresOfWar",
	"northern legends":      "northernLegends",
	"reign of fire":         "reignOfFire",
}

var tribeClasses = map[int]string{
	1: "roman",
	2: "teuton",
	3: "gaul",
	6: "egyptian",
	7: "hun",
	8: "spartan",
	9: "viking",
}

// hiddenTribes are the non-playable nature and natar tribes.
var hiddenTribes = map[int]bool{4: true, 5: true}

// NextGameworld returns the first entry starting after now, or nil.
func NextGameworld(entries []lobby.CalendarEntry, now time.Time) *lobby.CalendarEntry {
	for i := range entries {
		if entries[i].Start > now.Unix() {
			return &entries[i]
		}
	}
	return nil
}

// Find returns the entry with the calendar id, or nil.
func Find(entries []lobby.CalendarEntry, id string) *lobby.CalendarEntry {
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i]
		}
	}
	return nil
}

// FindByUUID returns the entry of a running gameworld, or nil.
func FindByUUID(entries []lobby.CalendarEntry, uuid string) *lobby.CalendarEntry {
	if uuid == "" {
		return nil
	}
	for i := range entries {
		if entries[i].UUID == uuid {
			return &entries[i]
		}
	}
	return nil
}

// BackgroundClass names the artwork of an entry.
func BackgroundClass(e lobby.CalendarEntry) string {
	bg := backgrounds["default"]
	if e.Metadata.MainpageBackground != "" {
		if named, ok := backgrounds[strings.ToLower(e.Metadata.MainpageBackground)]; ok {
			bg = named
		}
	}
	if e.Metadata.Speed > 1 && bg == backgrounds["default"] {
		bg = backgrounds["speed"]
	}
	return bg
}

// TribeClass names a tribe, or returns "" for unknown ids.
func TribeClass(id int) string {
	return tribeClasses[id]
}

// VisibleTribes drops the tribes players cannot pick.
func VisibleTribes(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !hiddenTribes[id] {
			out = append(out, id)
		}
	}
	return out
}

func hasEnd(e lobby.CalendarEntry) bool {
	return e.End != nil
}

// IsIndeterminate reports whether some details of the entry are still
// undecided: speed, tribes, a real start time, and the artefact and
// construction plan dates unless the end date is known.
func IsIndeterminate(e lobby.CalendarEntry) bool {
	var tribes []int
	var artefacts, plans int64
	if e.Info != nil {
		tribes, artefacts, plans = e.Info.Tribes, e.Info.ArtefactsDate, e.Info.ConstructionPlansDate
	}
	complete := e.Metadata.Speed != 0 &&
		tribes != nil &&
		NewStartDate(e.Start).HasTime() &&
		(artefacts != 0 || hasEnd(e)) &&
		(plans != 0 || hasEnd(e))
	return !complete
}

// HasStarted reports whether a created gameworld is already running.
func HasStarted(e lobby.CalendarEntry, now time.Time) bool {
	return e.UUID != "" && e.Start < now.Unix()
}

// IsPlayable reports whether the gameworld accepts players now.
func IsPlayable(e lobby.CalendarEntry, now time.Time) bool {
	return e.Start < now.Unix() && !e.RegistrationClosed && !e.Flags.RegistrationClosed
}

// Tag is a remark shown with an entry.
type Tag string

const (
	TagMobileOnly Tag = "mobileOnly"
	TagInviteOnly Tag = "inviteOnly"
	TagSpecial    Tag = "special"
)

// Tags returns the remarks that apply to e.
func Tags(e lobby.CalendarEntry) []Tag {
	var tags []Tag
	if isMobileOnly(e) {
		tags = append(tags, TagMobileOnly)
	}
	if e.Flags.RegistrationKeyRequired {
		tags = append(tags, TagInviteOnly)
	}
	if e.Metadata.Type != "normal" {
		tags = append(tags, TagSpecial)
	}
	return tags
}

func isMobileOnly(e lobby.CalendarEntry) bool {
	for _, f := range e.Metadata.Filter {
		if f == "mobile" {
			return true
		}
	}
	return false
}

// Action is what the player can do with a calendar entry.
type Action int

const (
	// ActionNone means the gameworld cannot be joined yet or any more.
	ActionNone Action = iota
	ActionMobileOnly
	// ActionRegistrationKey asks for an invitation code first.
	ActionRegistrationKey
	ActionPlay
	// ActionJoin sends an anonymous player to the registration.
	ActionJoin
)

func (a Action) String() string {
	switch a {
	case ActionMobileOnly:
		return "mobileOnly"
	case ActionRegistrationKey:
		return "registrationKey"
	case ActionPlay:
		return "play"
	case ActionJoin:
		return "join"
	}
	return "none"
}

// ActionFor decides the action for entry. running is the calendar entry of
// the created gameworld (matched by uuid), or nil.
func ActionFor(entry lobby.CalendarEntry, running *lobby.CalendarEntry, loggedIn bool, now time.Time) Action {
	if running == nil || !IsPlayable(*running, now) {
		return ActionNone
	}
	if isMobileOnly(entry) {
		return ActionMobileOnly
	}
	if !loggedIn {
		return ActionJoin
	}
	if running.Flags.RegistrationKeyRequired {
		return ActionRegistrationKey
	}
	return ActionPlay
}

// PlayURL is the lobby join page for the gameworld with the current query.
func PlayURL(host *url.URL, params url.Values, uuid string) string {
	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	q.Set("server", uuid)
	join := host.ResolveReference(&url.URL{Path: "/account/join"})
	join.RawQuery = q.Encode()
	return join.String()
}

// TrackingPingURL marks a tracking URL as a ping request.
func TrackingPingURL(trackingURL string) (string, error) {
	u, err := url.Parse(trackingURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if !q.Has("ping") {
		q.Set("ping", "")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
