package domain

import "strings"

// Actor identifies the platform user behind a request.
type Actor struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	ChannelID int64  `json:"channel_id,omitempty"`
	Locale    string `json:"locale,omitempty"`
}

// String renders the actor the way the audit log shows it: "name (id)".
func (a Actor) String() string {
	name := strings.TrimSpace(a.Name)
	switch {
	case name == "" && a.ID == "":
		return "system"
	case name == "":
		return a.ID
	case a.ID == "":
		return name
	default:
		return name + " (" + a.ID + ")"
	}
}
