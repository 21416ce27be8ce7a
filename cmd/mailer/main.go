package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/pixalium/backend/internal/config"
	"github.com/pixalium/backend/internal/email"
	kafkax "github.com/pixalium/backend/internal/kafka"
	"github.com/pixalium/backend/internal/logging"
	"github.com/pixalium/backend/internal/newsletter"
	"github.com/pixalium/backend/internal/postgres"
	"github.com/pixalium/backend/internal/redisx"
	"github.com/pixalium/backend/internal/store"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logging.Setup(cfg.ServiceName + "-mailer")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	sender := &email.Service{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		FromMail: cfg.FromEmail,
		FromName: cfg.FromName,
		Enabled:  cfg.EmailEnabled,
	}

	mailer := &newsletter.Mailer{
		Store:  store.New(db, store.NewNotifier(rdb)),
		Redis:  rdb,
		Sender: sender,
	}

	group := getenv("MAILER_GROUP", "newsletter-mailer")
	workers := mustAtoi(os.Getenv("MAILER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, newsletter.TopicSendJobs, workers)

	go func() {
		log.Info().Str("group", group).Str("topic", newsletter.TopicSendJobs).Int("workers", workers).Msg("mailer consumer started")
		if err := cons.Start(ctx, mailer.HandleSendJob); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down mailer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
