package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/b1g-analytics/internal/domain/game"
	"github.com/riskibarqy/b1g-analytics/internal/domain/team"
	"github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"
)

const (
	defaultTeamGamesLimit = 100
	maxTeamGamesLimit     = 500
)

type GameDetails struct {
	Game  game.Game
	Stats []teamstat.Stat
}

// TeamService serves stored teams and games to readers.
type TeamService struct {
	teamRepo team.Repository
	gameRepo game.Repository
	statRepo teamstat.Repository
}

func NewTeamService(
	teamRepo team.Repository,
	gameRepo game.Repository,
	statRepo teamstat.Repository,
) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		gameRepo: gameRepo,
		statRepo: statRepo,
	}
}

func (s *TeamService) ListTeams(ctx context.Context, conference string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListTeams")
	defer span.End()

	items, err := s.teamRepo.List(ctx, team.ListFilter{Conference: strings.TrimSpace(conference)})
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return items, nil
}

func (s *TeamService) GetTeam(ctx context.Context, slug string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetTeam")
	defer span.End()

	return s.getTeam(ctx, slug)
}

func (s *TeamService) ListTeamGames(ctx context.Context, slug string, season, limit int) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListTeamGames")
	defer span.End()

	if season < 0 {
		return nil, fmt.Errorf("%w: season must be a positive year", ErrInvalidInput)
	}
	switch {
	case limit <= 0:
		limit = defaultTeamGamesLimit
	case limit > maxTeamGamesLimit:
		limit = maxTeamGamesLimit
	}

	teamItem, err := s.getTeam(ctx, slug)
	if err != nil {
		return nil, err
	}

	items, err := s.gameRepo.ListByTeam(ctx, game.ListFilter{TeamID: teamItem.ID, Season: season, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list games by team: %w", err)
	}
	return items, nil
}

func (s *TeamService) GetGame(ctx context.Context, externalID string) (GameDetails, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetGame")
	defer span.End()

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return GameDetails{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	item, exists, err := s.gameRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return GameDetails{}, fmt.Errorf("get game by external id: %w", err)
	}
	if !exists {
		return GameDetails{}, fmt.Errorf("%w: game=%s", ErrNotFound, externalID)
	}

	stats, err := s.statRepo.ListByGame(ctx, item.ID)
	if err != nil {
		return GameDetails{}, fmt.Errorf("list team game stats: %w", err)
	}

	return GameDetails{Game: item, Stats: stats}, nil
}

func (s *TeamService) getTeam(ctx context.Context, slug string) (team.Team, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return team.Team{}, fmt.Errorf("%w: team slug is required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetBySlug(ctx, slug)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team by slug: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, slug)
	}

	return item, nil
}
