package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/tenpin/leaguebook/internal/auth"
	"github.com/tenpin/leaguebook/internal/export"
	"github.com/tenpin/leaguebook/internal/infra"
	"github.com/tenpin/leaguebook/internal/repository"
	"github.com/tenpin/leaguebook/internal/seed"
	"github.com/tenpin/leaguebook/internal/service"
	"github.com/tenpin/leaguebook/internal/standings"
	"github.com/urfave/cli/v2"
)

func leagueFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "league",
		Aliases:  []string{"l"},
		Usage:    "league id",
		Required: true,
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					return infra.RunMigrations(configFrom(c).DSN(), loggerFrom(c))
				},
			},
			{
				Name:  "down",
				Usage: "revert applied migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to revert"},
				},
				Action: func(c *cli.Context) error {
					return infra.RollbackMigrations(configFrom(c).DSN(), c.Int("steps"), loggerFrom(c))
				},
			},
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "create a league, its rosters and schedule from a YAML seed file",
		ArgsUsage: "<seed.yaml>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("seed file path is required")
			}
			fh, err := os.Open(path)
			if err != nil {
				return err
			}
			defer fh.Close()

			f, err := seed.Parse(fh)
			if err != nil {
				return err
			}
			return withServices(c, func(s services) error {
				res, err := seed.NewImporter(s.leagues, s.roster, s.schedule, loggerFrom(c)).Import(c.Context, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "imported league %s (%s): %d teams, %d bowlers, %d games, %d score sheets\n",
					res.League.Name, res.League.ID, res.Teams, res.Bowlers, res.Games, res.Sheets)
				return nil
			})
		},
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print team and individual standings",
		Flags: []cli.Flag{
			leagueFlag(),
			&cli.BoolFlag{Name: "json", Usage: "print the raw snapshot as JSON"},
		},
		Action: func(c *cli.Context) error {
			return withSnapshot(c, func(snap *standings.Snapshot) error {
				if c.Bool("json") {
					enc := json.NewEncoder(c.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(snap)
				}
				return printStandings(c, snap)
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write standings as a workbook or chart",
		ArgsUsage: "xlsx|png",
		Flags: []cli.Flag{
			leagueFlag(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file", Required: true},
		},
		Action: func(c *cli.Context) error {
			format := c.Args().First()
			if format != "xlsx" && format != "png" {
				return fmt.Errorf("export format must be xlsx or png, got %q", format)
			}
			return withSnapshot(c, func(snap *standings.Snapshot) error {
				var buf bytes.Buffer
				if format == "xlsx" {
					if err := export.WriteStandingsXLSX(&buf, snap); err != nil {
						return err
					}
				} else {
					png, err := export.StandingsChartPNG(snap)
					if err != nil {
						return err
					}
					buf.Write(png)
				}
				if err := os.WriteFile(c.String("out"), buf.Bytes(), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes)\n", c.String("out"), buf.Len())
				return nil
			})
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an operator bearer token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Usage: "who the token is for", Required: true},
			&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Value: string(auth.RoleSecretary), Usage: "secretary or admin"},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime (default JWT_ADMIN_EXPIRY)"},
		},
		Action: func(c *cli.Context) error {
			cfg := configFrom(c)
			if err := cfg.Validate(); err != nil {
				return err
			}
			role := auth.Role(c.String("role"))
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			ttl := cfg.JWTAdminExpiry
			if c.IsSet("ttl") {
				ttl = c.Duration("ttl")
			}
			token, err := auth.NewJWTManager(cfg.JWTSecret, ttl).GenerateToken(c.String("subject"), role)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "tail a relayed event topic",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "topic", Value: "game.scores.submitted", Usage: "topic without the configured prefix"},
			&cli.StringFlag{Name: "group", Usage: "consumer group; empty reads from the tail"},
		},
		Action: func(c *cli.Context) error {
			cfg := configFrom(c)
			topic := cfg.KafkaTopicPrefix + "." + strings.TrimPrefix(c.String("topic"), cfg.KafkaTopicPrefix+".")
			consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, topic, c.String("group"))
			defer consumer.Close()

			loggerFrom(c).Info("tailing events", "topic", topic, "brokers", cfg.KafkaBrokers)
			for {
				msg, err := consumer.ReadMessage(c.Context)
				if err != nil {
					if c.Context.Err() != nil {
						return nil
					}
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s %s %s\n", time.Now().Format(time.RFC3339), msg.Key, msg.Value)
			}
		},
	}
}

type services struct {
	leagues  *service.LeagueService
	roster   *service.RosterService
	schedule *service.ScheduleService
}

// withServices opens postgres storage for the duration of fn.
func withServices(c *cli.Context, fn func(s services) error) error {
	cfg := configFrom(c)
	logger := loggerFrom(c)
	if cfg.StorageDriver != infra.StoragePostgres {
		return fmt.Errorf("leaguectl needs STORAGE_DRIVER=%s", infra.StoragePostgres)
	}
	pool, err := infra.NewPostgresPool(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	store := repository.NewPgStore(pool)
	engine := standings.NewEngine(store, logger, nil)
	return fn(services{
		leagues:  service.NewLeagueService(store, engine, logger),
		roster:   service.NewRosterService(store, engine, logger),
		schedule: service.NewScheduleService(store, nil, logger),
	})
}

func withSnapshot(c *cli.Context, fn func(snap *standings.Snapshot) error) error {
	id, err := uuid.Parse(c.String("league"))
	if err != nil {
		return fmt.Errorf("invalid league id: %w", err)
	}
	return withServices(c, func(s services) error {
		snap, err := s.leagues.Standings(c.Context, id)
		if err != nil {
			return err
		}
		return fn(snap)
	})
}

func printStandings(c *cli.Context, snap *standings.Snapshot) error {
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s (%s), %d weeks completed\n\n", snap.League.Name, snap.League.Status, snap.WeeksCompleted)

	fmt.Fprintln(w, "RANK\tTEAM\tPOINTS\tW-L-T\tSCRATCH\tHANDICAP")
	for _, e := range snap.Teams {
		fmt.Fprintf(w, "%d\t%s\t%g\t%d-%d-%d\t%d\t%d\n",
			e.Rank, e.Team.Name, e.Points, e.Team.Wins, e.Team.Losses, e.Team.Ties, e.ScratchTotal, e.HandicapTotal)
	}

	fmt.Fprintln(w, "\nRANK\tBOWLER\tGAMES\tAVERAGE\tHANDICAP\tHIGH GAME\tHIGH SERIES")
	for i, b := range snap.Individuals {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.1f\t%d\t%d\t%d\n",
			i+1, b.Name, b.GamesPlayed, b.Average, b.Handicap, b.HighGame, b.HighSeries)
	}
	return w.Flush()
}
