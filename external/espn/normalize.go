package espn

import (
	"strings"

	"github.com/riskibarqy/b1g-analytics/internal/domain/roster"
	"github.com/riskibarqy/b1g-analytics/internal/domain/schedule"
	"github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"
)

const defaultStatus = "Scheduled"

var (
	fieldGoalStatNames  = []string{"fieldGoalsMade-fieldGoalsAttempted", "fieldGoals", "fg"}
	threePointStatNames = []string{
		"threePointFieldGoalsMade-threePointFieldGoalsAttempted",
		"threePointFieldGoals",
		"threePointersMade-threePointersAttempted",
		"3ptFieldGoals",
		"threePointers",
	}
	freeThrowStatNames = []string{"freeThrowsMade-freeThrowsAttempted", "freeThrows", "ft"}
)

// teamSlug prefers a roster match on any display field, then slugifies the
// short display name, display name or abbreviation, in that order.
func teamSlug(team map[string]any) string {
	if team == nil {
		return roster.UnknownTeamSlug
	}
	displayName := getString(team, "displayName")
	shortDisplayName := getString(team, "shortDisplayName")
	abbreviation := getString(team, "abbreviation")

	if slug, ok := roster.KnownSlug(displayName, shortDisplayName, abbreviation); ok {
		return slug
	}
	return roster.ResolveSlug(shortDisplayName, displayName, abbreviation)
}

func teamLogo(team map[string]any) string {
	return firstNonEmpty(getString(team, "logo"), getString(firstMap(team, "logos"), "href"))
}

func teamNames(team map[string]any, slug string) (string, string) {
	known, _ := roster.Lookup(slug)
	name := firstNonEmpty(getString(team, "displayName"), known.Name, slug)
	shortName := firstNonEmpty(getString(team, "shortDisplayName"), getString(team, "abbreviation"), known.ShortName, name)
	return name, shortName
}

// parseTeamRef returns nil when the competitor carries no team object.
func parseTeamRef(competitor map[string]any) *schedule.TeamRef {
	team := getMap(competitor, "team")
	if team == nil {
		return nil
	}

	slug := teamSlug(team)
	name, shortName := teamNames(team, slug)
	return &schedule.TeamRef{
		ExternalID: getID(team, "id"),
		Slug:       slug,
		Name:       name,
		ShortName:  shortName,
		LogoURL:    teamLogo(team),
		Score:      toInt(competitor["score"]),
	}
}

func parseConferenceTeam(team map[string]any) (schedule.ConferenceTeam, bool) {
	externalID := getID(team, "id")
	if externalID == "" {
		return schedule.ConferenceTeam{}, false
	}
	slug := teamSlug(team)
	name, shortName := teamNames(team, slug)
	return schedule.ConferenceTeam{
		ExternalID: externalID,
		Slug:       slug,
		Name:       name,
		ShortName:  shortName,
		LogoURL:    teamLogo(team),
	}, true
}

func pickCompetitors(competitors []map[string]any) (map[string]any, map[string]any) {
	var home, away map[string]any
	for _, item := range competitors {
		switch getString(item, "homeAway") {
		case "home":
			if home == nil {
				home = item
			}
		case "away":
			if away == nil {
				away = item
			}
		}
	}
	if home == nil && len(competitors) > 0 {
		home = competitors[0]
	}
	if away == nil && len(competitors) > 1 {
		away = competitors[1]
	}
	return home, away
}

func parseStatus(competition map[string]any) string {
	statusType := getMap(getMap(competition, "status"), "type")
	return firstNonEmpty(
		getString(statusType, "shortDetail"),
		getString(statusType, "description"),
		getString(statusType, "name"),
		defaultStatus,
	)
}

// extractLink returns the first link whose text and rel values contain needle.
func extractLink(links []map[string]any, needle string) string {
	for _, link := range links {
		parts := []string{getString(link, "text")}
		for _, rel := range getSlice(link, "rel") {
			if value, ok := rel.(string); ok {
				parts = append(parts, value)
			}
		}
		text := strings.ToLower(strings.Join(parts, " "))
		href := getString(link, "href")
		if href != "" && strings.Contains(text, needle) {
			return href
		}
	}
	return ""
}

// parseScheduleEvent normalizes one event from the schedule or scoreboard
// endpoints. requestedTeamID may be empty.
func parseScheduleEvent(event map[string]any, requestedTeamID string) *schedule.Game {
	externalID := getID(event, "id")
	if externalID == "" {
		return nil
	}

	competition := firstMap(event, "competitions")
	homeCompetitor, awayCompetitor := pickCompetitors(getMaps(competition, "competitors"))
	home := parseTeamRef(homeCompetitor)
	away := parseTeamRef(awayCompetitor)
	if home == nil || away == nil {
		return nil
	}

	out := &schedule.Game{
		ExternalID:  externalID,
		Season:      toInt(getMap(event, "season")["year"]),
		Date:        toEpochSeconds(firstNonEmpty(getString(competition, "date"), getString(event, "date"))),
		Status:      parseStatus(competition),
		NeutralSite: getBool(competition, "neutralSite"),
		Venue:       getString(getMap(competition, "venue"), "fullName"),
		HomeTeam:    *home,
		AwayTeam:    *away,
	}

	links := getMaps(event, "links")
	out.RecapURL = extractLink(links, "recap")
	out.BoxscoreURL = extractLink(links, "box")

	if requestedTeamID != "" {
		out.TeamExternalID = requestedTeamID
		switch requestedTeamID {
		case home.ExternalID:
			isHome := true
			out.IsHome = &isHome
			out.OpponentExternalID = away.ExternalID
		case away.ExternalID:
			isHome := false
			out.IsHome = &isHome
			out.OpponentExternalID = home.ExternalID
		}
	}

	return out
}

// parseBoxscore returns nil when the summary carries neither side nor any
// team statistics.
func parseBoxscore(eventID string, payload map[string]any) *schedule.Boxscore {
	competition := firstMap(getMap(payload, "header"), "competitions")
	homeCompetitor, awayCompetitor := pickCompetitors(getMaps(competition, "competitors"))
	home := parseTeamRef(homeCompetitor)
	away := parseTeamRef(awayCompetitor)

	homeByID := make(map[string]bool, 2)
	for _, item := range getMaps(competition, "competitors") {
		id := getID(getMap(item, "team"), "id")
		if id == "" {
			continue
		}
		homeByID[id] = getString(item, "homeAway") == "home"
	}

	rows := getMaps(getMap(payload, "boxscore"), "teams")
	teams := make([]schedule.BoxscoreTeam, 0, len(rows))
	for _, row := range rows {
		team := getMap(row, "team")
		if team == nil {
			continue
		}
		// Box score rows carry no score; points come from the stat line.
		ref := parseTeamRef(map[string]any{"team": team})
		item := schedule.BoxscoreTeam{
			Team:  *ref,
			Stats: parseStatLine(getMaps(row, "statistics")),
		}
		if isHome, ok := homeByID[ref.ExternalID]; ok && ref.ExternalID != "" {
			item.IsHome = &isHome
		}
		teams = append(teams, item)
	}

	if home == nil && away == nil && len(teams) == 0 {
		return nil
	}

	return &schedule.Boxscore{
		ExternalID: eventID,
		Date:       toEpochSeconds(getString(competition, "date")),
		Status:     parseStatus(competition),
		HomeTeam:   home,
		AwayTeam:   away,
		Teams:      teams,
	}
}

// statValue returns the raw value of the first stat row matching one of names.
func statValue(stats []map[string]any, names []string) any {
	for _, name := range names {
		row := findStat(stats, name)
		if row == nil {
			continue
		}
		if display, ok := row["displayValue"].(string); ok {
			return display
		}
		if value, ok := row["value"]; ok && value != nil {
			return value
		}
	}
	return nil
}

func findStat(stats []map[string]any, name string) map[string]any {
	for _, row := range stats {
		if getString(row, "name") == name {
			return row
		}
	}
	return nil
}

// parseMadeAttempt splits values like "25-60" into made and attempted.
func parseMadeAttempt(value any) (*int, *int) {
	text, ok := value.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return nil, nil
	}
	parts := strings.Split(text, "-")
	made := toInt(parts[0])
	if len(parts) < 2 {
		return made, nil
	}
	return made, toInt(parts[1])
}

func parseStatLine(stats []map[string]any) teamstat.Line {
	fgm, fga := parseMadeAttempt(statValue(stats, fieldGoalStatNames))
	fg3m, fg3a := parseMadeAttempt(statValue(stats, threePointStatNames))
	ftm, fta := parseMadeAttempt(statValue(stats, freeThrowStatNames))

	return teamstat.Line{
		Points:      toInt(statValue(stats, []string{"points"})),
		FGM:         fgm,
		FGA:         fga,
		FG3M:        fg3m,
		FG3A:        fg3a,
		FTM:         ftm,
		FTA:         fta,
		OREB:        toInt(statValue(stats, []string{"offensiveRebounds"})),
		DREB:        toInt(statValue(stats, []string{"defensiveRebounds"})),
		REB:         toInt(statValue(stats, []string{"rebounds", "totalRebounds"})),
		AST:         toInt(statValue(stats, []string{"assists"})),
		STL:         toInt(statValue(stats, []string{"steals"})),
		BLK:         toInt(statValue(stats, []string{"blocks"})),
		TOV:         toInt(statValue(stats, []string{"turnovers"})),
		PF:          toInt(statValue(stats, []string{"totalFouls", "fouls"})),
		Possessions: toFloat(statValue(stats, []string{"possessions", "estimatedPossessions"})),
	}
}
