// jobmate-aggregator-service
//
// Collects AI-related job postings for the Danish market from Jobindex,
// Jobnet and Adzuna, scores and filters them, and serves them over REST:
//   - GET    /api/jobs          list active postings
//   - POST   /api/jobs/scrape   trigger a background scrape
//   - GET    /api/jobs/stats    aggregate statistics
//   - DELETE /api/jobs/{id}     remove a posting
//   - GET    /api/health        liveness
//
// A gRPC health service reports whether the job store is reachable.
// Stored batches are announced as EVENT_JOBS_INGESTED on Redis and, when
// configured, as a Telegram message.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/aggregator-service/internal/config"
	"jobmate/aggregator-service/internal/db"
	"jobmate/aggregator-service/internal/grpcserver"
	"jobmate/aggregator-service/internal/ingest"
	"jobmate/aggregator-service/internal/jobs"
	"jobmate/aggregator-service/internal/notify"
	"jobmate/aggregator-service/internal/scheduler"
	"jobmate/aggregator-service/internal/scraper"
	"jobmate/aggregator-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[aggregator] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Job store ───────────────────────────────────────────────────────────
	log.Println("[aggregator] Opening job store…")
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[aggregator] Store: %v", err)
	}
	defer st.Close()
	log.Println("[aggregator] Job store ready ✓")

	// ── Redis (optional) ────────────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		log.Println("[aggregator] Connecting to Redis…")
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[aggregator] Redis: %v", err)
		}
		defer rdb.Close()
		log.Println("[aggregator] Redis connected ✓")
	}

	// ── Ingestion ───────────────────────────────────────────────────────────
	var notifiers []ingest.Notifier
	if rdb != nil {
		notifiers = append(notifiers, notify.NewRedisPublisher(rdb))
	}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			// A bad token should not keep postings from being collected.
			log.Printf("[aggregator] Telegram disabled: %v", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	pipeline := ingest.NewPipeline(st, ingest.WithNotifier(notify.Combine(notifiers...)))

	collector := scraper.NewCollector(buildSources(cfg), cfg.Sources.SearchTerms, cfg.Sources.RedFlags)
	log.Printf("[aggregator] Sources: %v", collector.Sources())

	var schedOpts []scheduler.Option
	schedOpts = append(schedOpts, scheduler.WithRunOnStart(cfg.ScrapeOnStartup))
	if rdb != nil {
		schedOpts = append(schedOpts, scheduler.WithLocker(
			scheduler.NewRedisLock(rdb, scheduler.DefaultLockKey, 2*time.Hour)))
	}
	sched := scheduler.New(cfg.ScrapeCron, collector, pipeline, schedOpts...)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[aggregator] Scheduler: %v", err)
	}

	// ── gRPC health ─────────────────────────────────────────────────────────
	grpcSrv := grpcserver.New(st)
	go grpcSrv.Watch(ctx, 15*time.Second)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[aggregator] gRPC listen: %v", err)
	}
	go func() {
		log.Printf("[aggregator] gRPC health listening on :%s", cfg.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Printf("[aggregator] gRPC server error: %v", err)
		}
	}()

	// ── HTTP server ──────────────────────────────────────────────────────────
	h := jobs.NewHandler(jobs.NewService(st), sched)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      h.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[aggregator] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[aggregator] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[aggregator] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[aggregator] Shutdown error: %v", err)
	}
	sched.Stop()
	grpcSrv.Stop()
	cancel()
	log.Println("[aggregator] Stopped.")
}

// buildSources returns the enabled scrapers. Adzuna is skipped without
// credentials.
func buildSources(cfg *config.Config) []scraper.Source {
	var sources []scraper.Source

	if cfg.Sources.IsEnabled(config.SourceJobindex) {
		ji := scraper.NewJobindex()
		ji.Delay = cfg.Sources.RequestDelay
		sources = append(sources, ji)
	}
	if cfg.Sources.IsEnabled(config.SourceJobnet) {
		jn := scraper.NewJobnet()
		jn.Delay = cfg.Sources.RequestDelay
		sources = append(sources, jn)
	}
	if cfg.Sources.IsEnabled(config.SourceAdzuna) {
		az := scraper.NewAdzuna(cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry)
		if az.Enabled() {
			sources = append(sources, az)
		} else {
			log.Println("[aggregator] Adzuna enabled but ADZUNA_APP_ID/ADZUNA_APP_KEY unset, skipping")
		}
	}
	return sources
}
