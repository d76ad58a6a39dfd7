package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/config"
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/infra/memory"
	pgloader "trivia-session-service/internal/infra/postgres"
	redisinfra "trivia-session-service/internal/infra/redis"
	transport "trivia-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia session server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

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
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CategoryLoader = memory.NewStaticCategoryLoader(sampleCategories())
	if pool != nil {
		loader = pgloader.NewCategoryLoader(pool)
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var content app.QuestionRepository
	if redisClient != nil {
		content = redisinfra.NewCategoryRepository(redisClient, loader, contentTTL)
	} else {
		content = memory.NewCategoryRepository(loader, contentTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	var ledger app.PointsLedger = memory.NewLedger()
	if pool != nil {
		ledger = pgloader.NewLedger(pool)
	} else if redisClient != nil {
		ledger = redisinfra.NewLedger(redisClient)
	}

	var journal app.AnswerJournal = memory.NewAnswerJournal()
	if redisClient != nil {
		journal = redisinfra.NewAnswerJournal(redisClient)
	}

	service := app.NewTriviaService(store, content, ledger, journal, rulesFromConfig(cfg))
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia session service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func rulesFromConfig(cfg config.Config) app.Rules {
	rules := app.DefaultRules()
	if cfg.Trivia.QuestionTime > 0 {
		rules.QuestionTime = cfg.Trivia.QuestionTime
	}
	if cfg.Trivia.HintBudget > 0 {
		rules.HintBudget = cfg.Trivia.HintBudget
	}
	if cfg.Trivia.QuestionsPerSession > 0 {
		rules.QuestionsPerSession = cfg.Trivia.QuestionsPerSession
	}
	rules.TickInterval = config.TTLDuration(cfg.Trivia.TickInterval, rules.TickInterval)
	rules.AdvanceDelay = config.TTLDuration(cfg.Trivia.AdvanceDelay, rules.AdvanceDelay)
	return rules
}

// sampleCategories provides a minimal content set; swap this loader with the
// Postgres-backed one in production.
func sampleCategories() map[string]domain.Category {
	return map[string]domain.Category{
		"general": {
			ID:   "general",
			Name: "General Knowledge",
			Questions: []domain.Question{
				{
					ID:            "q1",
					Prompt:        "What is 2 + 2?",
					Options:       []string{"3", "4", "5", "22"},
					CorrectOption: 1,
					Points:        10,
				},
				{
					ID:            "q2",
					Prompt:        "Which planet is known as the Red Planet?",
					Options:       []string{"Venus", "Jupiter", "Mars", "Saturn"},
					CorrectOption: 2,
					Points:        10,
				},
				{
					ID:            "q3",
					Prompt:        "How many continents are there?",
					Options:       []string{"5", "6", "7", "8"},
					CorrectOption: 2,
					Points:        10,
				},
			},
		},
	}
}
