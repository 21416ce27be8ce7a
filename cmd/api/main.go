package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/pixalium/backend/internal/auth"
	"github.com/pixalium/backend/internal/config"
	"github.com/pixalium/backend/internal/content"
	"github.com/pixalium/backend/internal/downloads"
	"github.com/pixalium/backend/internal/httpx"
	kafkax "github.com/pixalium/backend/internal/kafka"
	"github.com/pixalium/backend/internal/logging"
	"github.com/pixalium/backend/internal/newsletter"
	"github.com/pixalium/backend/internal/postgres"
	"github.com/pixalium/backend/internal/redisx"
	"github.com/pixalium/backend/internal/shop"
	"github.com/pixalium/backend/internal/storage"
	"github.com/pixalium/backend/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for newsletter send jobs
	prod := kafkax.NewProducer(cfg.KafkaBrokers, newsletter.TopicSendJobs, 1024)
	prod.Start(ctx)

	// Record store + object storage
	recStore := store.New(db, store.NewNotifier(rdb))
	objStore, err := storage.New(cfg.StorageDir, cfg.PublicBaseURL+"/files")
	if err != nil {
		log.Fatal().Err(err).Msg("object storage")
	}

	// Domain services
	registry := &downloads.Registry{Store: recStore}
	redeemer := &downloads.Redeemer{
		Registry: registry,
		Storage:  objStore,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
	shopSvc := &shop.Service{
		Store:          recStore,
		WhatsAppNumber: cfg.WhatsAppNumber,
		DownloadPath:   "/download",
	}
	contentSvc := &content.Service{Store: recStore}
	sessions := &auth.Sessions{
		Redis:        rdb,
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
	}
	broadcaster := &newsletter.Broadcaster{
		Store:    recStore,
		Producer: prod,
		Service:  cfg.ServiceName,
	}

	// Router
	router := httpx.NewRouter()
	live := &httpx.LiveHandler{
		Store: recStore,
		Public: map[string]func([]map[string]any) []map[string]any{
			shop.ProductsCollection:        nil,
			shop.PromosCollection:          nil,
			content.PortfolioCollection:    nil,
			content.TestimonialsCollection: httpx.ApprovedOnly,
		},
	}
	(&httpx.ShopHandler{Store: recStore, Svc: shopSvc}).Register(router)
	(&httpx.ContentHandler{Store: recStore, Svc: contentSvc}).Register(router)
	(&httpx.DownloadsHandler{Redeemer: redeemer}).Register(router)
	live.Register(router)
	(&httpx.AdminHandler{
		Store:       recStore,
		Sessions:    sessions,
		Registry:    registry,
		Broadcaster: broadcaster,
		Storage:     objStore,
		Shop:        shopSvc,
		Content:     contentSvc,
		Live:        live,
	}).Register(router)
	router.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(cfg.StorageDir))))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
