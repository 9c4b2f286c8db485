package models

import (
	"crypto/rand"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Theme is a display tag consumed by the rendering layer. It carries no
// behavior in the core.
type Theme string

const (
	ThemeMinimal   Theme = "minimal"
	ThemeChristmas Theme = "christmas"
	ThemeDiwali    Theme = "diwali"
	ThemeBirthday  Theme = "birthday"
)

// ValidTheme reports whether t is one of the closed set of display themes.
func ValidTheme(t Theme) bool {
	switch t {
	case ThemeMinimal, ThemeChristmas, ThemeDiwali, ThemeBirthday:
		return true
	}
	return false
}

// Event is one published event page. ManagementKey is only ever serialized
// in the creation response; every other surface must send Public().
type Event struct {
	ID                  uuid.UUID `json:"id"`
	ShortCode           string    `json:"short_code,omitempty"`
	ManagementKey       string    `json:"management_key,omitempty"`
	OwnerAccount        string    `json:"-"`
	Title               string    `json:"title"`
	Date                time.Time `json:"date"`
	Location            string    `json:"location"`
	Description         string    `json:"description,omitempty"`
	Theme               Theme     `json:"theme"`
	PricePerAdult       float64   `json:"price_per_adult"`
	PricePerChild       float64   `json:"price_per_child"`
	PaymentInstructions string    `json:"payment_instructions,omitempty"`
	BannerReference     string    `json:"banner_reference,omitempty"`
	IsSuspended         bool      `json:"is_suspended,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// Public returns a copy of the event safe to show to anyone: the management
// key is the capability itself and is shown exactly once, at creation.
func (e Event) Public() Event {
	e.ManagementKey = ""
	return e
}

// canonicalIDRe is the fixed 8-4-4-4-12 hex shape of a canonical event id.
// References that match it are looked up by id; everything else is treated
// as a short code. This lets old id links and newer short links coexist.
var canonicalIDRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsCanonicalID reports whether ref is a canonical event id rather than a
// short code.
func IsCanonicalID(ref string) bool {
	return canonicalIDRe.MatchString(ref)
}

// shortCodeAlphabet deliberately excludes uppercase so codes survive being
// read aloud or typed from a printed invite.
const shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// ShortCodeLength is the size of generated share codes.
const ShortCodeLength = 6

// NewShortCode generates a random share code. Collisions are possible at
// this length; callers retry on a uniqueness violation.
func NewShortCode() string {
	b := make([]byte, ShortCodeLength)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform is broken.
		panic(err)
	}
	for i := range b {
		b[i] = shortCodeAlphabet[int(b[i])%len(shortCodeAlphabet)]
	}
	return string(b)
}
