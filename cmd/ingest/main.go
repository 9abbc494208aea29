package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/b1g-analytics/internal/app"
	"github.com/riskibarqy/b1g-analytics/internal/config"
	"github.com/riskibarqy/b1g-analytics/internal/domain/schedule"
	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
	"github.com/riskibarqy/b1g-analytics/internal/usecase"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	// Logs go to stderr so stdout stays a single JSON document.
	logger := logging.NewJSONTo(os.Stderr, cfg.LogLevel).With("component", "ingest_cli")
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = dispatch(ctx, cfg, logger, os.Args[1], os.Args[2:], os.Stdout)
	stop()
	_ = logger.Sync()

	switch {
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		printUsage(os.Stderr)
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, cfg config.Config, logger *logging.Logger, cmd string, args []string, stdout io.Writer) error {
	var req usecase.IngestRequest
	var day string

	switch cmd {
	case "run":
		parsed, err := parseRunFlags(args)
		if err != nil {
			return err
		}
		req = parsed
	case "seed":
	case "scoreboard":
		parsed, err := parseScoreboardFlags(args)
		if err != nil {
			return err
		}
		day = parsed
	default:
		return errUsage
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	switch cmd {
	case "run":
		summary, err := a.Ingest.Run(ctx, req)
		if err != nil {
			return err
		}
		return writeJSON(stdout, summary)
	case "seed":
		counts, err := a.Reconcile.SeedKnownTeams(ctx)
		if err != nil {
			return err
		}
		return writeJSON(stdout, counts)
	default:
		games, err := a.Provider.FetchScoreboard(ctx, day)
		if err != nil {
			return err
		}
		return writeJSON(stdout, scoreboardFromGames(day, games))
	}
}

func parseRunFlags(args []string) (usecase.IngestRequest, error) {
	var req usecase.IngestRequest

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&req.Season, "season", 0, "season end year, defaults to the current season")
	fs.StringVar(&req.Team, "team", "", "team slug, required with --mode team")
	fs.StringVar(&req.Mode, "mode", "", "all or team")
	fs.StringVar(&req.Since, "since", "", "earliest game day, YYYY-MM-DD")
	fs.StringVar(&req.Until, "until", "", "latest game day, YYYY-MM-DD")
	fs.BoolVar(&req.IncludeBoxscore, "boxscore", false, "fetch box scores for final games")
	if err := fs.Parse(args); err != nil {
		return usecase.IngestRequest{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	if fs.NArg() > 0 {
		return usecase.IngestRequest{}, fmt.Errorf("%w: unexpected argument %q", usecase.ErrInvalidInput, fs.Arg(0))
	}

	return req, nil
}

func parseScoreboardFlags(args []string) (string, error) {
	fs := flag.NewFlagSet("scoreboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	day := fs.String("date", time.Now().UTC().Format("20060102"), "game day, YYYYMMDD")
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}

	return *day, nil
}

type scoreboardTeam struct {
	ExternalID string `json:"externalId"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Score      *int   `json:"score,omitempty"`
}

type scoreboardGame struct {
	ExternalID  string         `json:"externalId"`
	Season      *int           `json:"season,omitempty"`
	StartsAt    *string        `json:"startsAt,omitempty"`
	Status      string         `json:"status"`
	NeutralSite *bool          `json:"neutralSite,omitempty"`
	Venue       string         `json:"venue,omitempty"`
	RecapURL    string         `json:"recapUrl,omitempty"`
	BoxscoreURL string         `json:"boxscoreUrl,omitempty"`
	Home        scoreboardTeam `json:"home"`
	Away        scoreboardTeam `json:"away"`
}

type scoreboard struct {
	Date  string           `json:"date"`
	Games []scoreboardGame `json:"games"`
}

func scoreboardFromGames(day string, games []schedule.Game) scoreboard {
	out := scoreboard{Date: day, Games: make([]scoreboardGame, 0, len(games))}
	for _, item := range games {
		row := scoreboardGame{
			ExternalID:  item.ExternalID,
			Season:      item.Season,
			Status:      item.Status,
			NeutralSite: item.NeutralSite,
			Venue:       item.Venue,
			RecapURL:    item.RecapURL,
			BoxscoreURL: item.BoxscoreURL,
			Home:        scoreboardTeamFromRef(item.HomeTeam),
			Away:        scoreboardTeamFromRef(item.AwayTeam),
		}
		if item.Date != nil {
			startsAt := time.Unix(*item.Date, 0).UTC().Format(time.RFC3339)
			row.StartsAt = &startsAt
		}
		out.Games = append(out.Games, row)
	}
	return out
}

func scoreboardTeamFromRef(ref schedule.TeamRef) scoreboardTeam {
	return scoreboardTeam{
		ExternalID: ref.ExternalID,
		Slug:       usecase.TeamRefSlug(ref),
		Name:       ref.Name,
		Score:      ref.Score,
	}
}

func writeJSON(w io.Writer, v any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	raw = append(raw, '\n')
	_, err = w.Write(raw)
	return err
}

func printUsage(w io.Writer) {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "usage: %s <run|seed|scoreboard> [flags]\n", name)
	fmt.Fprintf(w, "  %s run [--season N] [--team slug] [--mode all|team] [--since YYYY-MM-DD] [--until YYYY-MM-DD] [--boxscore]\n", name)
	fmt.Fprintf(w, "  %s seed\n", name)
	fmt.Fprintf(w, "  %s scoreboard [--date YYYYMMDD]\n", name)
}
