package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"roastroyale/config"
	"roastroyale/db"
	"roastroyale/services"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "roastctl",
		Usage: "inspect roast scoring and the leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"ROAST_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			newScoreCommand(),
			newPointsCommand(),
			newLeaderboardCommand(),
			newPlayerCommand(),
			newSeedCommand(),
		},
	}
}

func newScoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "rate a roast with the quality heuristic",
		ArgsUsage: "<roast text>",
		Action: func(c *cli.Context) error {
			roast := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(roast) == "" {
				return fmt.Errorf("roast text is required")
			}
			q := services.AssessRoastQuality(roast)
			fmt.Fprintf(c.App.Writer, "Quality: %d/10 (%s, %s tier)\n", q, services.QualityLabel(q), services.TierFor(q))
			return nil
		},
	}
}

func newPointsCommand() *cli.Command {
	return &cli.Command{
		Name:      "points",
		Usage:     "compute round points",
		ArgsUsage: "<user quality> <opponent quality> [round]",
		Action: func(c *cli.Context) error {
			user, opponent, round, err := parsePointsArgs(c.Args().Slice())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Points: %d\n", services.RoundPoints(user, opponent, round))
			return nil
		},
	}
}

// parsePointsArgs reads "<user> <opponent> [round]"; round defaults to 1.
func parsePointsArgs(args []string) (user, opponent, round int, err error) {
	if len(args) < 2 || len(args) > 3 {
		return 0, 0, 0, fmt.Errorf("expected <user quality> <opponent quality> [round], got %d arguments", len(args))
	}
	nums := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid number %q: %w", arg, err)
		}
		nums = append(nums, n)
	}
	round = 1
	if len(nums) == 3 {
		if nums[2] < 1 {
			return 0, 0, 0, fmt.Errorf("round must be at least 1, got %d", nums[2])
		}
		round = nums[2]
	}
	return nums[0], nums[1], round, nil
}

func newLeaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "print the top players",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: services.DefaultLeaderboardLimit, Usage: "number of players"},
		},
		Action: func(c *cli.Context) error {
			return withLeaderboard(c, func(ctx context.Context, lb *services.LeaderboardService) error {
				entries, err := lb.Top(ctx, services.ClampLimit(c.Int("limit"), services.DefaultLeaderboardLimit))
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(c.App.Writer, "No battles recorded yet.")
					return nil
				}
				for _, e := range entries {
					fmt.Fprintf(c.App.Writer, "%3d. %-20s %6d pts %4d battles  %s\n", e.Rank, e.Username, e.RoastScore, e.TotalBattles, e.Title)
				}
				return nil
			})
		},
	}
}

func newPlayerCommand() *cli.Command {
	return &cli.Command{
		Name:      "player",
		Usage:     "show one player's record",
		ArgsUsage: "<username>",
		Action: func(c *cli.Context) error {
			username := c.Args().First()
			if username == "" {
				return fmt.Errorf("username is required")
			}
			return withLeaderboard(c, func(ctx context.Context, lb *services.LeaderboardService) error {
				p, err := lb.Player(ctx, username)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s: %d points over %d battles (%s)\n", p.Username, p.RoastScore, p.TotalBattles, services.RoastTitle(p.RoastScore))
				return nil
			})
		},
	}
}

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "record demo battles on an empty leaderboard",
		Action: func(c *cli.Context) error {
			ctx := c.Context
			backends, err := openBackends(c)
			if err != nil {
				return err
			}
			defer backends.Close(ctx)

			n, err := db.SeedDemoPlayers(ctx, backends.Leaderboard)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(c.App.Writer, "Leaderboard already has players; nothing seeded.")
				return nil
			}
			fmt.Fprintf(c.App.Writer, "Seeded %d demo players\n", n)
			return nil
		},
	}
}

func openBackends(c *cli.Context) (*db.Backends, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return db.Open(c.Context, cfg)
}

func withLeaderboard(c *cli.Context, fn func(context.Context, *services.LeaderboardService) error) error {
	backends, err := openBackends(c)
	if err != nil {
		return err
	}
	defer backends.Close(c.Context)
	return fn(c.Context, services.NewLeaderboardService(backends.Leaderboard, nil))
}
