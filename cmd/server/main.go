package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"roastroyale/config"
	"roastroyale/controllers"
	"roastroyale/db"
	"roastroyale/internal/feed"
	"roastroyale/metrics"
	"roastroyale/routes"
	"roastroyale/services"
	"roastroyale/utils"
	"roastroyale/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "roast-server",
		Usage: "serve the Roast Royale game API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the YAML configuration file (optional, ROAST_* env vars override it)",
				EnvVars: []string{"ROAST_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "record a few demo battles when the leaderboard is empty",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	utils.DebugEnabled = c.Bool("debug")

	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backends.Close(context.Background())

	if c.Bool("seed") {
		n, err := db.SeedDemoPlayers(ctx, backends.Leaderboard)
		if err != nil {
			return err
		}
		if n > 0 {
			utils.LogSuccess("Seeded %d demo players", n)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	responder, err := newResponder(ctx, cfg, m)
	if err != nil {
		return err
	}

	hub := websocket.NewLeaderboardHub()
	var publisher services.EventPublisher = hub
	if backends.Redis != nil {
		relay := feed.NewStreamRelay(backends.Redis, hub)
		go relay.Run(ctx)
		publisher = relay
	}

	rng := services.SystemRandom{}
	game := services.NewGame(
		responder,
		backends.Leaderboard,
		services.NewPromptPool(services.DefaultPrompts(), rng),
		services.NewAudienceSelector(rng),
		services.WithMetrics(m),
		services.WithPublisher(publisher),
	)

	router := setupRouter(cfg, reg,
		controllers.NewGameController(services.NewSessionManager(game, backends.Sessions)),
		controllers.NewLeaderboardController(services.NewLeaderboardService(backends.Leaderboard, m), cfg.Leaderboard.DefaultLimit),
		hub,
	)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting on port %d (opponent: %s, leaderboard: %s)", cfg.Server.Port, cfg.Opponent.Mode, cfg.Leaderboard.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.LogInfo("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newResponder(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (services.Responder, error) {
	if cfg.Opponent.Mode != config.OpponentOnline {
		return services.NewOfflineResponder(services.SystemRandom{}, cfg.Opponent.Band), nil
	}
	gen, err := services.NewGeminiGenerator(ctx, cfg.Gemini.ApiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}
	return services.NewOnlineResponder(gen, cfg.GeminiTimeout(), m), nil
}

func setupRouter(cfg *config.Config, reg *prometheus.Registry, gc *controllers.GameController, lc *controllers.LeaderboardController, hub *websocket.LeaderboardHub) *gin.Engine {
	router := gin.Default()

	// Set trusted proxies (adjust as needed)
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := router.Group("/")
	routes.SetupGameRoutes(api, gc)
	routes.SetupLeaderboardRoutes(api, lc, hub)

	return router
}
