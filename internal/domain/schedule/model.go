package schedule

import "github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"

// TeamRef is a normalized reference to one side of a provider event.
type TeamRef struct {
	ExternalID string
	Slug       string
	Name       string
	ShortName  string
	LogoURL    string
	Score      *int
}

// Game is a normalized schedule entry.
type Game struct {
	ExternalID         string
	Season             *int
	Date               *int64
	Status             string
	NeutralSite        *bool
	Venue              string
	RecapURL           string
	BoxscoreURL        string
	HomeTeam           TeamRef
	AwayTeam           TeamRef
	IsHome             *bool
	TeamExternalID     string
	OpponentExternalID string
}

// Teams returns both sides, home first.
func (g Game) Teams() []TeamRef {
	return []TeamRef{g.HomeTeam, g.AwayTeam}
}

// BoxscoreTeam is one team's row of a box score.
type BoxscoreTeam struct {
	Team   TeamRef
	IsHome *bool
	Stats  teamstat.Line
}

// Boxscore is the normalized summary of a single game.
type Boxscore struct {
	ExternalID string
	Season     *int
	Date       *int64
	Status     string
	HomeTeam   *TeamRef
	AwayTeam   *TeamRef
	Teams      []BoxscoreTeam
}

// ConferenceTeam is a roster entry from the provider's conference listing.
type ConferenceTeam struct {
	ExternalID string
	Slug       string
	Name       string
	ShortName  string
	LogoURL    string
}
