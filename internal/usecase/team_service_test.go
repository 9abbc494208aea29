package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/b1g-analytics/internal/domain/game"
	"github.com/riskibarqy/b1g-analytics/internal/domain/team"
	"github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"
	gamemock "github.com/riskibarqy/b1g-analytics/internal/mocks/domain/game"
	teammock "github.com/riskibarqy/b1g-analytics/internal/mocks/domain/team"
	teamstatmock "github.com/riskibarqy/b1g-analytics/internal/mocks/domain/teamstat"
	"github.com/stretchr/testify/mock"
)

func TestTeamService_ListTeamGames_UsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teamRepo := teammock.NewRepository(t)
	gameRepo := gamemock.NewRepository(t)
	service := NewTeamService(teamRepo, gameRepo, teamstatmock.NewRepository(t))

	teamRepo.
		On("GetBySlug", ctx, "iowa").
		Return(team.Team{ID: 4, Slug: "iowa"}, true, nil).
		Once()
	gameRepo.
		On("ListByTeam", ctx, game.ListFilter{TeamID: 4, Season: 2025, Limit: defaultTeamGamesLimit}).
		Return([]game.Game{{ID: 1, ExternalID: "401"}}, nil).
		Once()

	items, err := service.ListTeamGames(ctx, " IOWA ", 2025, 0)
	if err != nil {
		t.Fatalf("list team games: %v", err)
	}
	if len(items) != 1 || items[0].ExternalID != "401" {
		t.Fatalf("unexpected games: %+v", items)
	}
}

func TestTeamService_GetTeam_NotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teamRepo := teammock.NewRepository(t)
	service := NewTeamService(teamRepo, gamemock.NewRepository(t), teamstatmock.NewRepository(t))

	teamRepo.On("GetBySlug", ctx, "gonzaga").Return(team.Team{}, false, nil).Once()

	if _, err := service.GetTeam(ctx, "gonzaga"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
	if _, err := service.GetTeam(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}

func TestTeamService_GetGame_UsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gameRepo := gamemock.NewRepository(t)
	statRepo := teamstatmock.NewRepository(t)
	service := NewTeamService(teammock.NewRepository(t), gameRepo, statRepo)

	gameRepo.
		On("GetByExternalID", ctx, "401").
		Return(game.Game{ID: 12, ExternalID: "401"}, true, nil).
		Once()
	statRepo.
		On("ListByGame", ctx, int64(12)).
		Return([]teamstat.Stat{{GameID: 12, TeamID: 1}, {GameID: 12, TeamID: 2}}, nil).
		Once()
	gameRepo.
		On("GetByExternalID", ctx, mock.AnythingOfType("string")).
		Return(game.Game{}, false, nil).
		Once()

	details, err := service.GetGame(ctx, "401")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if details.Game.ID != 12 || len(details.Stats) != 2 {
		t.Fatalf("unexpected details: %+v", details)
	}

	if _, err := service.GetGame(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}
