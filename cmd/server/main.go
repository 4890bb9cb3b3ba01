package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"mobywatel/internal/audit"
	"mobywatel/internal/authz"
	"mobywatel/internal/blob"
	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	"mobywatel/internal/jwttoken"
	"mobywatel/internal/platform/config"
	"mobywatel/internal/platform/httpserver"
	"mobywatel/internal/platform/logger"
	"mobywatel/internal/platform/metrics"
	"mobywatel/internal/platform/postgres"
	platformredis "mobywatel/internal/platform/redis"
	httptransport "mobywatel/internal/transport/http"
	"mobywatel/internal/workflow"
)

// main wires the dependency graph and runs the server plus the audit worker
// under one errgroup. Business logic lives in the internal packages.
func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	m := metrics.New()
	gate := authz.NewGate()

	// Storage backends. With no DSN everything runs in memory, which is the
	// demo and test profile.
	var db *sql.DB
	if cfg.Postgres.DSN != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var revocation jwttoken.RevocationList
	if redisClient != nil {
		defer redisClient.Close()
		revocation = jwttoken.NewRedisRevocationList(redisClient.Client)
		log.Info("token revocation list backed by redis")
	} else {
		revocation = jwttoken.NewInMemoryRevocationList()
	}
	tokens := jwttoken.NewManager(cfg.JWT, revocation)

	var blobs blob.Store
	if cfg.MinIO.Endpoint != "" {
		minioStore, err := blob.NewMinIOStore(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
		blobs = minioStore
		log.Info("photo store backed by minio", "bucket", cfg.MinIO.Bucket)
	} else {
		blobs = blob.NewInMemoryStore()
	}

	var (
		accounts  identity.AccountStore
		citizens  identity.CitizenStore
		officials identity.OfficialStore
		documents document.Store
		issues    workflow.IssueRequestStore
		updates   workflow.DataUpdateStore
		auditLog  audit.Store
		tx        workflow.Tx
	)
	if db != nil {
		accounts = identity.NewPostgresAccountStore(db)
		citizens = identity.NewPostgresCitizenStore(db)
		officials = identity.NewPostgresOfficialStore(db)
		documents = document.NewPostgresStore(db)
		issues = workflow.NewPostgresIssueRequestStore(db)
		updates = workflow.NewPostgresDataUpdateStore(db)
		auditLog = audit.NewPostgresStore(db)
		tx = workflow.NewPostgresTx(db)
	} else {
		memAccounts := identity.NewInMemoryAccountStore()
		memCitizens := identity.NewInMemoryCitizenStore()
		memOfficials := identity.NewInMemoryOfficialStore()
		memDocuments := document.NewInMemoryStore()
		memIssues := workflow.NewInMemoryIssueRequestStore()
		memUpdates := workflow.NewInMemoryDataUpdateStore()
		accounts = memAccounts
		citizens = memCitizens
		officials = memOfficials
		documents = memDocuments
		issues = memIssues
		updates = memUpdates
		auditLog = audit.NewInMemoryStore()
		tx = workflow.NewInMemoryTx(memIssues, memUpdates, memDocuments, memCitizens)
		log.Warn("postgres DSN not set, running on in-memory stores")
	}

	recorder := audit.NewRecorder(log)
	worker := audit.NewWorker(auditLog, recorder.Inbox(), log)

	identitySvc := identity.NewService(accounts, citizens, officials, tokens, gate,
		[]identity.Purger{documents, issues, updates, blobs}, m, log)
	registry := document.NewRegistry(documents, blobs, gate)
	engine := workflow.NewEngine(tx, issues, updates, blobs, gate, m, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:     httptransport.NewAuthHandler(identitySvc, tokens, log),
		Citizen:  httptransport.NewCitizenHandler(identitySvc, registry, engine, tokens, log),
		Official: httptransport.NewOfficialHandler(identitySvc, engine, tokens, log),
		Admin:    httptransport.NewAdminHandler(identitySvc, tokens, log),
		Photo:    httptransport.NewPhotoHandler(identitySvc, registry, engine, tokens, log),
		Audit:    recorder,
		Metrics:  m,
		Logger:   log,
	})

	srv := httpserver.New(cfg.HTTP.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := worker.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
