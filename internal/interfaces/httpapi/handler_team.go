package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/domain/game"
	"github.com/riskibarqy/b1g-analytics/internal/domain/team"
	"github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"
	"github.com/riskibarqy/b1g-analytics/internal/usecase"
)

type teamDTO struct {
	ID         int64   `json:"id"`
	Slug       string  `json:"slug"`
	Name       string  `json:"name"`
	ShortName  string  `json:"shortName"`
	Conference *string `json:"conference,omitempty"`
	LogoURL    *string `json:"logoUrl,omitempty"`
}

type gameDTO struct {
	ID          int64   `json:"id"`
	ExternalID  string  `json:"externalId"`
	Season      *int    `json:"season,omitempty"`
	Date        *int64  `json:"date,omitempty"`
	StartsAt    string  `json:"startsAt,omitempty"`
	Status      string  `json:"status"`
	NeutralSite *bool   `json:"neutralSite,omitempty"`
	HomeTeamID  int64   `json:"homeTeamId"`
	AwayTeamID  int64   `json:"awayTeamId"`
	HomeScore   *int    `json:"homeScore,omitempty"`
	AwayScore   *int    `json:"awayScore,omitempty"`
	Venue       *string `json:"venue,omitempty"`
	RecapURL    *string `json:"recapUrl,omitempty"`
	BoxscoreURL *string `json:"boxscoreUrl,omitempty"`
}

type teamStatDTO struct {
	TeamID         int64    `json:"teamId"`
	OppTeamID      *int64   `json:"oppTeamId,omitempty"`
	IsHome         *bool    `json:"isHome,omitempty"`
	Points         *int     `json:"points,omitempty"`
	FGM            *int     `json:"fgm,omitempty"`
	FGA            *int     `json:"fga,omitempty"`
	FG3M           *int     `json:"fg3m,omitempty"`
	FG3A           *int     `json:"fg3a,omitempty"`
	FTM            *int     `json:"ftm,omitempty"`
	FTA            *int     `json:"fta,omitempty"`
	OREB           *int     `json:"oreb,omitempty"`
	DREB           *int     `json:"dreb,omitempty"`
	REB            *int     `json:"reb,omitempty"`
	AST            *int     `json:"ast,omitempty"`
	STL            *int     `json:"stl,omitempty"`
	BLK            *int     `json:"blk,omitempty"`
	TOV            *int     `json:"tov,omitempty"`
	PF             *int     `json:"pf,omitempty"`
	PossessionsEst *float64 `json:"possessionsEst,omitempty"`
}

type gameDetailsDTO struct {
	Game  gameDTO       `json:"game"`
	Stats []teamStatDTO `json:"stats"`
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	conference := r.URL.Query().Get("conference")
	teams, err := h.teamService.ListTeams(ctx, conference)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "conference", conference, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, item := range teams {
		items = append(items, teamToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	slug := r.PathValue("slug")
	item, err := h.teamService.GetTeam(ctx, slug)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "slug", slug, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(item))
}

func (h *Handler) ListTeamGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamGames")
	defer span.End()

	slug := r.PathValue("slug")
	season, err := queryInt(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.teamService.ListTeamGames(ctx, slug, season, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list team games failed", "slug", slug, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, item := range games {
		items = append(items, gameToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	externalID := r.PathValue("externalID")
	details, err := h.teamService.GetGame(ctx, externalID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game failed", "external_id", externalID, "error", err)
		writeError(ctx, w, err)
		return
	}

	stats := make([]teamStatDTO, 0, len(details.Stats))
	for _, item := range details.Stats {
		stats = append(stats, teamStatToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, gameDetailsDTO{
		Game:  gameToDTO(details.Game),
		Stats: stats,
	})
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return value, nil
}

func teamToDTO(item team.Team) teamDTO {
	return teamDTO{
		ID:         item.ID,
		Slug:       item.Slug,
		Name:       item.Name,
		ShortName:  item.ShortName,
		Conference: item.Conference,
		LogoURL:    item.LogoURL,
	}
}

func gameToDTO(item game.Game) gameDTO {
	out := gameDTO{
		ID:          item.ID,
		ExternalID:  item.ExternalID,
		Season:      item.Season,
		Date:        item.Date,
		Status:      item.Status,
		NeutralSite: item.NeutralSite,
		HomeTeamID:  item.HomeTeamID,
		AwayTeamID:  item.AwayTeamID,
		HomeScore:   item.HomeScore,
		AwayScore:   item.AwayScore,
		Venue:       item.Venue,
		RecapURL:    item.RecapURL,
		BoxscoreURL: item.BoxscoreURL,
	}
	if item.Date != nil {
		out.StartsAt = time.Unix(*item.Date, 0).UTC().Format(time.RFC3339)
	}
	return out
}

func teamStatToDTO(item teamstat.Stat) teamStatDTO {
	line := item.Line
	return teamStatDTO{
		TeamID:         item.TeamID,
		OppTeamID:      item.OppTeamID,
		IsHome:         item.IsHome,
		Points:         line.Points,
		FGM:            line.FGM,
		FGA:            line.FGA,
		FG3M:           line.FG3M,
		FG3A:           line.FG3A,
		FTM:            line.FTM,
		FTA:            line.FTA,
		OREB:           line.OREB,
		DREB:           line.DREB,
		REB:            line.REB,
		AST:            line.AST,
		STL:            line.STL,
		BLK:            line.BLK,
		TOV:            line.TOV,
		PF:             line.PF,
		PossessionsEst: item.PossessionsEst,
	}
}
