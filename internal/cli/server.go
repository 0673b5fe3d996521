package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"labor-quiz-service/internal/app"
	"labor-quiz-service/internal/config"
	"labor-quiz-service/internal/infra/memory"
	"labor-quiz-service/internal/infra/postgres"
	rediscache "labor-quiz-service/internal/infra/redis"
	"labor-quiz-service/internal/logger"
	"labor-quiz-service/internal/reaction"
	transport "labor-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var questions app.QuestionRepository
	var scores app.ScoreRepository
	if cfg.Postgres.URL != "" {
		if err := postgres.Migrate(ctx, cfg.Postgres.URL); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		questions = postgres.NewQuestionRepository(pool)
		scores = postgres.NewScoreRepository(pool)
		log.Info().Msg("using postgres storage")
	} else {
		questions = memory.NewQuestionRepository()
		scores = memory.NewScoreRepository()
		log.Info().Msg("using in-memory storage")
	}

	if !cfg.Quiz.SkipSeed {
		if _, err := app.SeedQuestions(ctx, questions); err != nil {
			return err
		}
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Session.TTL, 12*time.Hour)
	var sessions app.SessionStore
	switch {
	case redisClient != nil:
		questions = rediscache.NewCachedQuestionRepository(redisClient, questions, quizTTL)
		sessions = rediscache.NewSessionStore(redisClient, sessionTTL)
	case cfg.Postgres.URL != "":
		questions = memory.NewCachedQuestionRepository(questions, quizTTL)
		sessions = memory.NewSessionStore(sessionTTL)
	default:
		sessions = memory.NewSessionStore(sessionTTL)
	}

	passwordHash, err := adminPasswordHash(cfg)
	if err != nil {
		return err
	}

	service := app.NewQuizService(questions, scores, sessions)
	auth := app.NewAdminAuth(cfg.Admin.Username, passwordHash, sessions)
	api := transport.NewAPI(service, auth, transport.SessionCookie{
		Name:   cfg.Session.CookieName,
		TTL:    sessionTTL,
		Secure: cfg.Session.CookieSecure,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(api, challengeConfig(cfg)),
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// adminPasswordHash returns the configured hash, or hashes ADMIN_PASSWORD when
// no hash is configured.
func adminPasswordHash(cfg config.Config) (string, error) {
	if cfg.Admin.PasswordHash != "" {
		return cfg.Admin.PasswordHash, nil
	}
	plain := os.Getenv("ADMIN_PASSWORD")
	if plain == "" {
		return "", nil
	}
	return app.HashPassword(plain)
}

func challengeConfig(cfg config.Config) reaction.Config {
	def := reaction.DefaultConfig()
	return reaction.Config{
		Countdown: cfg.Reaction.Countdown,
		Tick:      config.TTLDuration(cfg.Reaction.Tick, def.Tick),
		MinDelay:  config.TTLDuration(cfg.Reaction.MinDelay, def.MinDelay),
		MaxDelay:  config.TTLDuration(cfg.Reaction.MaxDelay, def.MaxDelay),
	}
}
