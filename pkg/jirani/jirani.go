package jirani

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/config"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/controllers"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/engine"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/events"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/repository"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/core"
)

// Start boots the proxy action engine, the expiry sweeper and the HTTP
// server. This call blocks until the HTTP server stops.
func Start(mux *http.ServeMux) error {
	mongoURI := config.GetSystemSettingString(config.MONGO_URI)
	if mongoURI == "" {
		panic("JIRANI_MONGO_URI must be set")
	}
	database := config.GetSystemSettingString(config.MONGO_DATABASE)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := core.NewRealClock()

	db, err := repository.Connect(ctx, mongoURI, database)
	if err != nil {
		slog.Error("Mongo connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Client().Disconnect(ctx)

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		slog.Error("Index bootstrap failed", "error", err)
		os.Exit(1)
	}

	actionRepo := repository.NewProxyActionRepository(db, clock)
	memberRepo := repository.NewMemberRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	loanRepo := repository.NewLoanRepository(db)

	var publisher engine.TransitionPublisher
	if natsURL := config.GetSystemSettingString(config.NATS_URL); natsURL != "" {
		p, err := events.NewPublisher(natsURL)
		if err != nil {
			slog.Error("NATS connection failed, transitions will not be published", "error", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	proxyEngine := engine.NewProxyEngine(actionRepo, publisher, clock)

	sweepInterval, _ := time.ParseDuration(config.GetSystemSettingString(config.ENGINE_SWEEP_INTERVAL))
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	go proxyEngine.StartSweeper(ctx, sweepInterval)

	if mux == nil {
		mux = http.NewServeMux()
	}
	proxyActionsController := controllers.NewProxyActionsController(proxyEngine, memberRepo, loanRepo, clock)
	proxyActionsController.RegisterRoutes(mux)
	membersController := controllers.NewMembersController(memberRepo, clock)
	membersController.RegisterRoutes(mux)
	contributionsController := controllers.NewContributionsController(contributionRepo, memberRepo, clock)
	contributionsController.RegisterRoutes(mux)
	loansController := controllers.NewLoansController(loanRepo, memberRepo, clock)
	loansController.RegisterRoutes(mux)
	reportsController := controllers.NewReportsController(contributionRepo, memberRepo, clock)
	reportsController.RegisterRoutes(mux)

	addr := ":" + config.GetSystemSettingString(config.SERVER_WEB_PORT)
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		addr = v
	}
	slog.Info("Starting HTTP server", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("HTTP server failed", "error", err)
		return err
	}
	return nil
}

func SetupLogger() {
	w := os.Stderr
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.RFC3339Nano,
		}),
	))
}
