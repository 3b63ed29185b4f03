package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sleepleague/sleepleague/internal/app"
	"github.com/sleepleague/sleepleague/internal/backup"
	"github.com/sleepleague/sleepleague/internal/config"
	"github.com/sleepleague/sleepleague/internal/db"
	"github.com/sleepleague/sleepleague/internal/jobs"
	"github.com/sleepleague/sleepleague/internal/logging"
	"github.com/sleepleague/sleepleague/internal/notify"
	"github.com/sleepleague/sleepleague/internal/observability"
	"github.com/sleepleague/sleepleague/internal/scoring"
)

var version = "dev" // подставляется через -ldflags при сборке

func main() {
	seed := flag.Bool("seed", false, "seed a demo league and exit-less continue")
	flag.Parse()

	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		lg.Base.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		lg.Base.Fatal("database open failed", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		lg.Base.Fatal("migrations failed", zap.Error(err))
	}

	store := db.NewStore(database)
	engine := scoring.NewEngine(store, store, store, store, cfg.Location, lg.Named("scoring"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *seed {
		err := db.SeedDemo(ctx, database, cfg.Location, func(ctx context.Context, groupID string, day time.Time) error {
			_, err := engine.Recompute(ctx, groupID, day)
			return err
		})
		if err != nil {
			lg.Base.Fatal("seed failed", zap.Error(err))
		}
		lg.Base.Info("demo league seeded")
	}

	notifier, err := notify.New(cfg.BotToken, cfg.NotifyChatID)
	if err != nil {
		lg.Base.Fatal("telegram notifier failed", zap.Error(err))
	}
	if notifier == nil {
		lg.Base.Info("telegram notifications disabled")
	}

	srv := app.NewServer(cfg, database, engine, backup.NewClient(cfg.BackupURL), lg.Named("http"))
	srv.Start(ctx)
	lg.Base.Info("server started", zap.String("addr", cfg.HTTPAddr), zap.String("version", version))

	runner := jobs.New(ctx)
	runner.Every(1*time.Hour, "rescore", jobs.Rescore(database, engine, notifier, cfg.Location, lg.Named("jobs")))

	<-ctx.Done()
	lg.Base.Info("shutting down")
}
