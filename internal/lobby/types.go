package lobby

import (
	"encoding/json"
	"fmt"
)

// Account is the identity behind the current lobby session.
type Account struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}

// NewsItem is one news article. FullHTMLText is only present when the
// article is fetched on its own.
type NewsItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PreviewText  string `json:"previewText,omitempty"`
	HeaderImage  string `json:"headerImage,omitempty"`
	Date         int64  `json:"date"`
	FullHTMLText string `json:"fullHTMLText,omitempty"`
}

// CalendarEntry is a gameworld announced in the calendar. UUID is empty
// until the gameworld exists.
type CalendarEntry struct {
	ID                      string           `json:"_id"`
	UUID                    string           `json:"uuid,omitempty"`
	Name                    string           `json:"name,omitempty"`
	URL                     string           `json:"url,omitempty"`
	Start                   int64            `json:"start"`
	End                     *int64           `json:"end,omitempty"`
	TrackingURL             string           `json:"trackingUrl,omitempty"`
	AdCode                  string           `json:"adcode,omitempty"`
	Notification            bool             `json:"notification,omitempty"`
	RegistrationClosed      bool             `json:"registrationClosed,omitempty"`
	RegistrationKeyRequired bool             `json:"registrationKeyRequired,omitempty"`
	Metadata                CalendarMetadata `json:"metadata"`
	Flags                   CalendarFlags    `json:"flags"`
	Info                    *CalendarInfo    `json:"info,omitempty"`
}

// CalendarMetadata describes the ruleset of a calendar entry.
type CalendarMetadata struct {
	Name               string   `json:"name,omitempty"`
	Subtitle           string   `json:"subtitle,omitempty"`
	Speed              float64  `json:"speed,omitempty"`
	Type               string   `json:"type,omitempty"`
	MainpageBackground string   `json:"mainpageBackground,omitempty"`
	Tribes             []string `json:"tribes,omitempty"`
	Artefacts          string   `json:"artefacts,omitempty"`
	ConstructionPlans  string   `json:"constructionPlans,omitempty"`
	EndCondition       int      `json:"endCondition,omitempty"`
	Filter             []string `json:"filter,omitempty"`
	Recommended        []string `json:"recommended,omitempty"`
	MainpageGroups     []string `json:"mainpageGroups,omitempty"`
	URL                string   `json:"url,omitempty"`
}

// CalendarFlags are the registration flags of a calendar entry.
type CalendarFlags struct {
	RegistrationClosed      bool `json:"registrationClosed,omitempty"`
	RegistrationKeyRequired bool `json:"registrationKeyRequired,omitempty"`
	IsActive                bool `json:"isActive,omitempty"`
}

// CalendarInfo carries details known once a gameworld is configured.
type CalendarInfo struct {
	Tribes                []int                `json:"tribes,omitempty"`
	ArtefactsDate         int64                `json:"artefactsDate,omitempty"`
	ConstructionPlansDate int64                `json:"constructionPlansDate,omitempty"`
	ServerConfiguration   *ServerConfiguration `json:"serverConfiguration,omitempty"`
}

// ServerConfiguration lists the languages offered on a gameworld.
type ServerConfiguration struct {
	Languages []string `json:"languages,omitempty"`
}

// DisplayName prefers the metadata name over the entry name.
func (e CalendarEntry) DisplayName() string {
	if e.Metadata.Name != "" {
		return e.Metadata.Name
	}
	return e.Name
}

// GameworldURL prefers the metadata URL over the entry URL.
func (e CalendarEntry) GameworldURL() string {
	if e.Metadata.URL != "" {
		return e.Metadata.URL
	}
	return e.URL
}

// Gameworld is a running gameworld as listed in the lobby metadata.
type Gameworld struct {
	UUID                    string         `json:"uuid"`
	Name                    string         `json:"name,omitempty"`
	Subtitle                string         `json:"subtitle,omitempty"`
	Speed                   float64        `json:"speed,omitempty"`
	Region                  string         `json:"region,omitempty"`
	URL                     string         `json:"url,omitempty"`
	RegistrationKeyRequired bool           `json:"registrationKeyRequired,omitempty"`
	Flags                   GameworldFlags `json:"flags"`
}

// GameworldFlags are the registration flags of a gameworld.
type GameworldFlags struct {
	RegistrationKeyRequired bool `json:"registrationKeyRequired,omitempty"`
}

// RequiresRegistrationKey reports whether joining needs an invitation code.
func (g Gameworld) RequiresRegistrationKey() bool {
	return g.RegistrationKeyRequired || g.Flags.RegistrationKeyRequired
}

// Metadata is the lobby metadata document.
type Metadata struct {
	Gameworlds []Gameworld `json:"gameworlds"`
}

// UnmarshalJSON accepts both a bare gameworld array and an object with a
// gameworlds field.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var list []Gameworld
	if err := json.Unmarshal(data, &list); err == nil {
		m.Gameworlds = list
		return nil
	}

	type plain Metadata
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unexpected metadata document: %w", err)
	}
	*m = Metadata(obj)
	return nil
}

// Gameworld returns the gameworld with uuid, if listed.
func (m *Metadata) Gameworld(uuid string) (Gameworld, bool) {
	for _, gw := range m.Gameworlds {
		if gw.UUID == uuid {
			return gw, true
		}
	}
	return Gameworld{}, false
}

// GameworldInfo is the public info document of a gameworld.
type GameworldInfo struct {
	AgeInDays int     `json:"ageInDays,omitempty"`
	Tribes    []Tribe `json:"tribes,omitempty"`
}

// Tribe is a playable tribe of a gameworld.
type Tribe struct {
	ID string `json:"id"`
}

// Avatar is a player's presence on one gameworld.
type Avatar struct {
	UUID      string        `json:"uuid"`
	Name      string        `json:"name"`
	Gameworld *GameworldRef `json:"gameworld,omitempty"`
}

// GameworldRef references a gameworld from an avatar.
type GameworldRef struct {
	UUID string `json:"uuid"`
}

// AccountInfo is the overview fetched after an activation completes.
type AccountInfo struct {
	Avatars []Avatar
	Name    string
}

// CalendarNotifications are the unread calendar notifications of the account.
type CalendarNotifications struct {
	UnreadCount int                    `json:"unreadCount"`
	List        []CalendarNotification `json:"list"`
}

// CalendarNotification points to a calendar entry.
type CalendarNotification struct {
	CalendarGameworldID string `json:"calendarGameworldId"`
}

// RegisterAvatarRequest asks for a new avatar on a gameworld.
type RegisterAvatarRequest struct {
	WUID            string `json:"wuid"`
	AdCode          string `json:"adCode,omitempty"`
	InvitedBy       string `json:"invitedBy,omitempty"`
	RegistrationKey string `json:"registrationKey,omitempty"`
}

// GTLTargets is the result of an avatar search during a gold transfer.
// Targets lists every gameworld where the name exists; TransferTargets maps
// the eligible gameworld uuids to the avatar receiving the gold.
type GTLTargets struct {
	Targets         []string          `json:"targets"`
	TransferTargets map[string]string `json:"transferTargets"`
}

// TransferState is the outcome of a gold transfer.
type TransferState string

const (
	// TransferConsumed means the gold was credited immediately.
	TransferConsumed TransferState = "consumed"
	// TransferPending means the recipient must complete an in-game step.
	TransferPending TransferState = "pending"
)
