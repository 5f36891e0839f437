package referee

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// LoginIDPrefix prefixes every generated referee login.
const LoginIDPrefix = "ref_"

// MaxLoginAttempts bounds the search for an unused login ID.
const MaxLoginAttempts = 100

// Domain errors.
var (
	ErrEmptyComp     = errors.New("competitionId is required")
	ErrEmptyUniqueID = errors.New("referee login ID is required")
	ErrNoFreeLoginID = errors.New("could not allocate a unique referee login ID")
)

// Referee links a referee login account to one competition.
type Referee struct {
	ID            string
	UserID        string // account ID
	UniqueID      string // login, e.g. ref_12345
	CompetitionID string
	Email         string
	CreatedAt     time.Time
}

// Validate checks the referee's invariants.
func (r *Referee) Validate() error {
	if r.CompetitionID == "" {
		return ErrEmptyComp
	}
	if r.UniqueID == "" {
		return ErrEmptyUniqueID
	}
	return nil
}

var adjectives = []string{
	"Swift", "Bold", "Calm", "Bright", "Keen", "Wise", "Quick", "Sharp",
	"Clear", "Fair", "Deep", "Cool", "Pure", "Fine", "Agile", "Brave",
	"Crisp", "Firm", "Free", "Grand", "High", "Kind", "Loud", "Mild",
	"Nice", "Open", "Proud", "Real", "Safe", "True", "Vast", "Warm",
}

var nouns = []string{
	"Dolphin", "Wave", "Tide", "Stream", "Current", "Reef", "Shore",
	"Splash", "Foam", "Ripple", "Surge", "Flow", "Drift", "Glide",
	"Diver", "Swimmer", "Coach", "Whistle", "Lane", "Pool", "Cap",
	"Sprint", "Stroke", "Kick", "Lap", "Turn", "Anchor", "Relay",
}

// GenerateLoginID returns a login like "ref_73821".
func GenerateLoginID() (string, error) {
	n, err := randInt(90000)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", LoginIDPrefix, 10000+n), nil
}

// GenerateUniqueLoginID draws login IDs until one is not in taken.
// PRE: taken holds the IDs already in use
// POST: returns an unused ID or ErrNoFreeLoginID after MaxLoginAttempts
func GenerateUniqueLoginID(taken map[string]bool) (string, error) {
	for i := 0; i < MaxLoginAttempts; i++ {
		id, err := GenerateLoginID()
		if err != nil {
			return "", err
		}
		if !taken[id] {
			return id, nil
		}
	}
	return "", ErrNoFreeLoginID
}

// GeneratePassword returns a human-friendly password like "SwiftDolphin42".
func GeneratePassword() (string, error) {
	a, err := randInt(len(adjectives))
	if err != nil {
		return "", err
	}
	n, err := randInt(len(nouns))
	if err != nil {
		return "", err
	}
	d, err := randInt(90)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%d", adjectives[a], nouns[n], 10+d), nil
}

func randInt(max int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
