package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/quizmith/mathquiz/internal/api/http"
	"github.com/quizmith/mathquiz/internal/config"
	"github.com/quizmith/mathquiz/internal/db"
	"github.com/quizmith/mathquiz/internal/oracle"
	"github.com/quizmith/mathquiz/internal/quiz"
	"github.com/quizmith/mathquiz/internal/report"
	"github.com/quizmith/mathquiz/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbh, err := db.Open(dbCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	archive := quiz.NewSQLArchive(dbh)

	// --- Content oracle ---
	orc, err := oracle.New(ctx, oracle.Config{
		Provider:      cfg.OracleProvider,
		Model:         cfg.OracleModel,
		Timeout:       cfg.OracleTimeout,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		Retry:         oracle.DefaultRetryConfig(),
	})
	if err != nil {
		log.Fatalf("oracle init failed: %v", err)
	}

	// --- Engine + reaper ---
	store := quiz.NewMemoryStore()
	engine := quiz.NewEngine(store, orc, archive, cfg.TotalQuestions)

	// --- Reports ---
	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	reports := report.NewGenerator(orc, bs, archive)

	reaper := quiz.NewReaper(store, archive, cfg.SessionTimeout, cfg.ReaperInterval)
	go reaper.Run(ctx)
	go pruneArchive(ctx, archive, bs, cfg.ArchiveRetention)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/start", api.StartHandler(engine))
	r.Post("/answer", api.AnswerHandler(engine))
	r.Post("/report", api.ReportHandler(engine, reports, archive, cfg.PublicURL))
	r.Route("/session", func(sr chi.Router) {
		sr.Post("/heartbeat", api.HeartbeatHandler(engine))
		sr.Post("/recover", api.RecoverHandler(engine))
	})
	r.Get("/reports/{name}", api.ReportFileHandler(bs))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Printf("listening on %s (oracle=%s, db=%s)", cfg.HTTPAddr, cfg.OracleProvider, cfg.DBDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// pruneArchive drops archived sessions past the retention window, along
// with their stored report artifacts.
func pruneArchive(ctx context.Context, archive *quiz.SQLArchive, bs storage.BlobStore, retention time.Duration) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, keys, err := archive.Prune(ctx, now.Add(-retention))
			if err != nil {
				log.Printf("archive prune failed: %v", err)
				continue
			}
			for _, key := range keys {
				if err := bs.Delete(key); err != nil {
					log.Printf("archive prune: deleting artifact %s failed: %v", key, err)
				}
			}
			if n > 0 {
				log.Printf("archive pruned %d sessions, %d report artifacts", n, len(keys))
			}
		}
	}
}
