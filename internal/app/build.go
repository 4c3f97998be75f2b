package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/lbianchi/adpilot/internal/ads"
	"github.com/lbianchi/adpilot/internal/catalog"
	"github.com/lbianchi/adpilot/internal/config"
	"github.com/lbianchi/adpilot/internal/confirm"
	"github.com/lbianchi/adpilot/internal/conversation"
	"github.com/lbianchi/adpilot/internal/creative"
	"github.com/lbianchi/adpilot/internal/httpapi"
	"github.com/lbianchi/adpilot/internal/memory"
	"github.com/lbianchi/adpilot/internal/observability"
	"github.com/lbianchi/adpilot/internal/orchestrator"
	"github.com/lbianchi/adpilot/internal/policy"
	"github.com/lbianchi/adpilot/internal/router"
	"github.com/lbianchi/adpilot/internal/session"
	"github.com/lbianchi/adpilot/internal/transport"
	"github.com/lbianchi/adpilot/internal/workflow"
)

type BuildResult struct {
	Config       config.Config
	API          *httpapi.Server
	Sessions     *session.Manager
	Orchestrator *orchestrator.Orchestrator
	Hub          *transport.Hub
	Metrics      *observability.Metrics

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace, nil)

	archive, err := memory.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("memory store init failed: %w", err)
	}

	catalogStore, err := catalog.NewStore(cfg.CatalogDBPath)
	if err != nil {
		_ = archive.Close()
		return nil, fmt.Errorf("catalog store init failed: %w", err)
	}

	sessions := session.NewManager(session.NewInMemoryStore(), cfg.SessionIdleTimeout)
	sessions.SetExpireHook(func(s *session.Session) {
		metrics.WorkflowEvents.WithLabelValues(string(s.Workflow), "expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	convo := conversation.NewTracker(cfg.HistoryLimit, cfg.ContextIdleWindow)
	gate := confirm.NewGate(cfg.AcceptToken)
	hub := transport.NewHub()

	// TODO: swap the mock platform and generator for the real integrations
	// once API credentials are wired through config.
	platform := ads.NewMockPlatform()

	engine := workflow.NewEngine(
		sessions,
		convo,
		catalogStore,
		creative.NewMockGenerator(),
		platform,
		hub,
		gate,
		metrics,
		cfg.DefaultDailyBudgetCents,
	)

	orch := orchestrator.New(
		router.New(gate, sessions),
		gate,
		sessions,
		convo,
		archive,
		catalogStore,
		platform,
		engine,
		policy.NewAuthorizer(cfg.AdminUserIDs),
		metrics,
	)

	api := httpapi.New(cfg, orch, archive, hub, metrics)

	cleanup := func() error {
		var errs []string
		if err := catalogStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := archive.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:       cfg,
		API:          api,
		Sessions:     sessions,
		Orchestrator: orch,
		Hub:          hub,
		Metrics:      metrics,
		Cleanup:      cleanup,
	}, nil
}
