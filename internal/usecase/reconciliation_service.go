package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/b1g-analytics/internal/domain/game"
	"github.com/riskibarqy/b1g-analytics/internal/domain/roster"
	"github.com/riskibarqy/b1g-analytics/internal/domain/schedule"
	"github.com/riskibarqy/b1g-analytics/internal/domain/team"
	"github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"
	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
)

// TeamIDLookup maps team slugs to stored team ids for the duration of one
// ingest step.
type TeamIDLookup map[string]int64

// ReconcileCounts tallies inserted and updated rows per entity.
type ReconcileCounts struct {
	TeamsInserted int `json:"teamsInserted"`
	TeamsUpdated  int `json:"teamsUpdated"`
	GamesInserted int `json:"gamesInserted"`
	GamesUpdated  int `json:"gamesUpdated"`
	StatsInserted int `json:"statsInserted"`
	StatsUpdated  int `json:"statsUpdated"`
}

func (c *ReconcileCounts) Add(other ReconcileCounts) {
	c.TeamsInserted += other.TeamsInserted
	c.TeamsUpdated += other.TeamsUpdated
	c.GamesInserted += other.GamesInserted
	c.GamesUpdated += other.GamesUpdated
	c.StatsInserted += other.StatsInserted
	c.StatsUpdated += other.StatsUpdated
}

func (c *ReconcileCounts) addTeam(inserted bool) {
	if inserted {
		c.TeamsInserted++
		return
	}
	c.TeamsUpdated++
}

// ReconciliationService writes normalized provider entities into storage
// without duplicating rows across runs.
type ReconciliationService struct {
	teamRepo team.Repository
	gameRepo game.Repository
	statRepo teamstat.Repository
	logger   *logging.Logger
}

func NewReconciliationService(
	teamRepo team.Repository,
	gameRepo game.Repository,
	statRepo teamstat.Repository,
	logger *logging.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ReconciliationService{
		teamRepo: teamRepo,
		gameRepo: gameRepo,
		statRepo: statRepo,
		logger:   logger,
	}
}

// TeamRefSlug is the storage slug of a team reference.
func TeamRefSlug(ref schedule.TeamRef) string {
	if slug := strings.TrimSpace(ref.Slug); slug != "" {
		return slug
	}
	if slug := roster.Slugify(firstNonBlank(ref.Name, ref.ShortName, "team")); slug != "" {
		return slug
	}
	return roster.UnknownTeamSlug
}

func (s *ReconciliationService) EnsureTeam(ctx context.Context, ref schedule.TeamRef) (team.UpsertResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.EnsureTeam")
	defer span.End()

	slug := TeamRefSlug(ref)
	name := firstNonBlank(ref.Name, ref.ShortName, slug)
	item := team.Team{
		Slug:      slug,
		Name:      name,
		ShortName: firstNonBlank(ref.ShortName, name),
		LogoURL:   optionalString(ref.LogoURL),
	}
	if known, ok := roster.Lookup(slug); ok {
		conference := roster.Conference
		item.Conference = &conference
		item.ShortName = known.ShortName
	}

	result, err := s.teamRepo.Upsert(ctx, item)
	if err != nil {
		return team.UpsertResult{}, fmt.Errorf("ensure team slug=%s: %w", slug, err)
	}
	return result, nil
}

// EnsureScheduleTeams upserts every distinct team referenced by games, in
// first-seen order, and returns their ids keyed by slug.
func (s *ReconciliationService) EnsureScheduleTeams(ctx context.Context, games []schedule.Game) (TeamIDLookup, ReconcileCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.EnsureScheduleTeams")
	defer span.End()

	order := make([]string, 0, len(games)*2)
	refs := make(map[string]schedule.TeamRef, len(games)*2)
	for _, item := range games {
		for _, ref := range item.Teams() {
			slug := TeamRefSlug(ref)
			if _, exists := refs[slug]; !exists {
				order = append(order, slug)
			}
			// the latest reference carries the freshest names and logo
			refs[slug] = ref
		}
	}

	lookup := make(TeamIDLookup, len(order))
	var counts ReconcileCounts
	for _, slug := range order {
		result, err := s.EnsureTeam(ctx, refs[slug])
		if err != nil {
			return nil, counts, err
		}
		lookup[slug] = result.ID
		counts.addTeam(result.Inserted)
	}

	return lookup, counts, nil
}

// SeedKnownTeams upserts every team on the conference roster.
func (s *ReconciliationService) SeedKnownTeams(ctx context.Context) (ReconcileCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.SeedKnownTeams")
	defer span.End()

	var counts ReconcileCounts
	for _, known := range roster.Teams() {
		result, err := s.EnsureTeam(ctx, schedule.TeamRef{
			Slug:      known.Slug,
			Name:      known.Name,
			ShortName: known.ShortName,
		})
		if err != nil {
			return counts, err
		}
		counts.addTeam(result.Inserted)
	}

	s.logger.InfoContext(ctx, "seeded known teams",
		"inserted", counts.TeamsInserted,
		"updated", counts.TeamsUpdated,
	)
	return counts, nil
}

// UpsertGame resolves both sides through lookup, ensuring any team it has
// not seen yet, and stores the game keyed by its external id.
func (s *ReconciliationService) UpsertGame(ctx context.Context, item schedule.Game, lookup TeamIDLookup) (game.UpsertResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.UpsertGame")
	defer span.End()

	if lookup == nil {
		return game.UpsertResult{}, fmt.Errorf("%w: team id lookup is required", ErrInvalidInput)
	}

	homeTeamID, err := s.resolveTeamID(ctx, item.HomeTeam, lookup)
	if err != nil {
		return game.UpsertResult{}, err
	}
	awayTeamID, err := s.resolveTeamID(ctx, item.AwayTeam, lookup)
	if err != nil {
		return game.UpsertResult{}, err
	}
	if homeTeamID <= 0 || awayTeamID <= 0 || homeTeamID == awayTeamID {
		return game.UpsertResult{}, fmt.Errorf("%w: invalid team mapping for game %s", ErrDataIntegrity, item.ExternalID)
	}

	row := game.Game{
		ExternalID:  strings.TrimSpace(item.ExternalID),
		Season:      item.Season,
		Date:        item.Date,
		Status:      item.Status,
		NeutralSite: item.NeutralSite,
		HomeTeamID:  homeTeamID,
		AwayTeamID:  awayTeamID,
		HomeScore:   item.HomeTeam.Score,
		AwayScore:   item.AwayTeam.Score,
		Venue:       optionalString(item.Venue),
		RecapURL:    optionalString(item.RecapURL),
		BoxscoreURL: optionalString(item.BoxscoreURL),
	}
	if err := row.Validate(); err != nil {
		return game.UpsertResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	result, err := s.gameRepo.Upsert(ctx, row)
	if err != nil {
		return game.UpsertResult{}, fmt.Errorf("upsert game external_id=%s: %w", row.ExternalID, err)
	}
	return result, nil
}

func (s *ReconciliationService) resolveTeamID(ctx context.Context, ref schedule.TeamRef, lookup TeamIDLookup) (int64, error) {
	slug := TeamRefSlug(ref)
	if id, ok := lookup[slug]; ok && id > 0 {
		return id, nil
	}

	result, err := s.EnsureTeam(ctx, ref)
	if err != nil {
		return 0, err
	}
	lookup[slug] = result.ID
	return result.ID, nil
}

// UpsertTeamGameStats stores one row per resolvable box-score side. Sides
// whose team is not in lookup are skipped.
func (s *ReconciliationService) UpsertTeamGameStats(ctx context.Context, gameID int64, lookup TeamIDLookup, box schedule.Boxscore) (teamstat.UpsertCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.UpsertTeamGameStats")
	defer span.End()

	var counts teamstat.UpsertCounts
	if gameID <= 0 {
		return counts, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	for _, entry := range box.Teams {
		slug := TeamRefSlug(entry.Team)
		teamID, ok := lookup[slug]
		if !ok || teamID <= 0 {
			s.logger.DebugContext(ctx, "skip box score side without known team",
				"game_id", gameID,
				"event_id", box.ExternalID,
				"team_slug", slug,
			)
			continue
		}

		row := teamstat.Stat{
			GameID: gameID,
			TeamID: teamID,
			IsHome: entry.IsHome,
			Line:   entry.Stats,
		}
		if row.Line.Points == nil {
			row.Line.Points = entry.Team.Score
		}

		opponent, hasOpponent := findOpponent(box.Teams, slug)
		if hasOpponent {
			if oppID, ok := lookup[TeamRefSlug(opponent.Team)]; ok && oppID > 0 {
				row.OppTeamID = &oppID
			}
		}
		switch {
		case entry.Stats.Possessions != nil:
			value := *entry.Stats.Possessions
			row.PossessionsEst = &value
		case hasOpponent:
			row.PossessionsEst = teamstat.EstimatePossessions(entry.Stats, opponent.Stats)
		}

		result, err := s.statRepo.Upsert(ctx, row)
		if err != nil {
			return counts, fmt.Errorf("upsert team game stat game_id=%d team_id=%d: %w", gameID, teamID, err)
		}
		if result.Inserted {
			counts.Inserted++
		} else {
			counts.Updated++
		}
	}

	return counts, nil
}

func findOpponent(rows []schedule.BoxscoreTeam, slug string) (schedule.BoxscoreTeam, bool) {
	for _, candidate := range rows {
		if TeamRefSlug(candidate.Team) != slug {
			return candidate, true
		}
	}
	return schedule.BoxscoreTeam{}, false
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
