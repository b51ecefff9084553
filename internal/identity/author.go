// Package identity tracks the process-wide author used to attribute
// comments, persisting it locally so the same browser/installation keeps
// its identity across sessions.
package identity

import (
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Author is the current commenting identity.
type Author struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Initials    string `json:"initials"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	AccentColor string `json:"accentColor,omitempty"`
}

var accentPalette = []string{
	"#f97316", // orange
	"#8b5cf6", // violet
	"#0ea5e9", // sky
	"#10b981", // emerald
	"#ef4444", // red
	"#eab308", // amber
}

// Initials derives up to two uppercase initials from a display name.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// AccentFor picks a palette color deterministically from an author id.
func AccentFor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return accentPalette[int(h.Sum32())%len(accentPalette)]
}

// Placeholder builds the default identity used until the user names
// themselves.
func Placeholder() Author {
	id := uuid.NewString()
	return Author{
		ID:          id,
		Name:        "Guest",
		Initials:    "G",
		AccentColor: AccentFor(id),
	}
}
