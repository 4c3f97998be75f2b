package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lbianchi/adpilot/internal/ads"
	"github.com/lbianchi/adpilot/internal/catalog"
	"github.com/lbianchi/adpilot/internal/confirm"
	"github.com/lbianchi/adpilot/internal/conversation"
	"github.com/lbianchi/adpilot/internal/creative"
	"github.com/lbianchi/adpilot/internal/memory"
	"github.com/lbianchi/adpilot/internal/observability"
	"github.com/lbianchi/adpilot/internal/policy"
	"github.com/lbianchi/adpilot/internal/router"
	"github.com/lbianchi/adpilot/internal/session"
	"github.com/lbianchi/adpilot/internal/transport"
	"github.com/lbianchi/adpilot/internal/workflow"
)

type nullDeliverer struct{}

func (nullDeliverer) Deliver(context.Context, string, transport.Content) error { return nil }

type testEnv struct {
	orch     *Orchestrator
	gate     *confirm.Gate
	catalog  *catalog.InMemoryStore
	platform *ads.MockPlatform
	archive  *memory.InMemoryStore
	sessions *session.Manager
}

func newTestEnv(t *testing.T, adminIDs ...string) *testEnv {
	t.Helper()

	gate := confirm.NewGate("yes")
	sessions := session.NewManager(session.NewInMemoryStore(), time.Minute)
	convo := conversation.NewTracker(20, 30*time.Minute)
	catalogStore := catalog.NewInMemoryStore()
	platform := ads.NewMockPlatform()
	archive := memory.NewInMemoryStore()
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())

	engine := workflow.NewEngine(
		sessions, convo, catalogStore, creative.NewMockGenerator(),
		platform, nullDeliverer{}, gate, metrics, 5000,
	)
	orch := New(
		router.New(gate, sessions), gate, sessions, convo, archive,
		catalogStore, platform, engine, policy.NewAuthorizer(adminIDs), metrics,
	)
	return &testEnv{
		orch:     orch,
		gate:     gate,
		catalog:  catalogStore,
		platform: platform,
		archive:  archive,
		sessions: sessions,
	}
}

func (env *testEnv) send(t *testing.T, userID, text string) string {
	t.Helper()
	contents := env.orch.HandleMessage(context.Background(), userID, text)
	parts := make([]string, 0, len(contents))
	for _, c := range contents {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}

func TestFreeformIntentStartsCreateCampaign(t *testing.T) {
	env := newTestEnv(t)
	if err := env.catalog.UpsertProduct(context.Background(), "u1", &catalog.Product{Name: "Shampoo"}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	out := env.send(t, "u1", "I'd like to run a campaign for my shampoo")
	if !strings.Contains(out, "Which product") {
		t.Fatalf("reply = %q, want product prompt", out)
	}

	out = env.send(t, "u1", "shampoo")
	if !strings.Contains(out, "Shampoo") {
		t.Fatalf("reply = %q, want product confirmation", out)
	}
	s, ok := env.sessions.Get("u1")
	if !ok || s.Workflow != session.WorkflowCreateCampaign {
		t.Fatalf("session = %+v, want active create-campaign", s)
	}
}

func TestHelpCommand(t *testing.T) {
	env := newTestEnv(t)
	out := env.send(t, "u1", "/help")
	if !strings.Contains(out, "/products") || !strings.Contains(out, "/delete-campaign") {
		t.Fatalf("help = %q, want command list", out)
	}
}

func TestDeleteCampaignRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	refs, err := env.platform.CreateCampaign(ctx, ads.CampaignSpec{UserID: "u1", Name: "Shampoo Traffic Campaign"})
	if err != nil {
		t.Fatalf("seed campaign: %v", err)
	}

	out := env.send(t, "u1", "/delete-campaign "+refs.CampaignID)
	if !strings.Contains(out, "confirm") {
		t.Fatalf("reply = %q, want confirmation request", out)
	}
	if !env.gate.HasPending("u1") {
		t.Fatalf("gate should be armed")
	}

	out = env.send(t, "u1", "YES")
	if !strings.Contains(out, "deleted") {
		t.Fatalf("reply = %q, want deletion notice", out)
	}
	campaigns, err := env.platform.ListCampaigns(ctx, "u1")
	if err != nil || len(campaigns) != 0 {
		t.Fatalf("campaigns = %v, %v, want none", campaigns, err)
	}
}

func TestAnythingElseCancelsPendingConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	refs, err := env.platform.CreateCampaign(ctx, ads.CampaignSpec{UserID: "u1", Name: "C"})
	if err != nil {
		t.Fatalf("seed campaign: %v", err)
	}

	env.send(t, "u1", "/delete-campaign "+refs.CampaignID)
	out := env.send(t, "u1", "/help")
	if !strings.Contains(out, "won't do that") {
		t.Fatalf("reply = %q, want cancellation, commands must not bypass the gate", out)
	}
	if env.gate.HasPending("u1") {
		t.Fatalf("gate should be disarmed after cancellation")
	}
	campaigns, _ := env.platform.ListCampaigns(ctx, "u1")
	if len(campaigns) != 1 {
		t.Fatalf("campaign should survive a cancelled confirmation")
	}
}

func TestPrivilegedCommandDeniedForNonAdmin(t *testing.T) {
	env := newTestEnv(t, "admin")

	out := env.send(t, "u1", "/delete-campaign abc")
	if out != policy.DenialMessage {
		t.Fatalf("reply = %q, want %q", out, policy.DenialMessage)
	}
	if env.gate.HasPending("u1") {
		t.Fatalf("denied command must not arm the gate")
	}
}

func TestRemoveProductViaCommandAndConfirm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.catalog.UpsertProduct(ctx, "u1", &catalog.Product{Name: "Beard Oil"}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	out := env.send(t, "u1", "/remove-product beard oil")
	if !strings.Contains(out, "confirm") {
		t.Fatalf("reply = %q, want confirmation request", out)
	}
	env.send(t, "u1", "yes")

	products, err := env.catalog.ListProducts(ctx, "u1")
	if err != nil || len(products) != 0 {
		t.Fatalf("products = %v, %v, want empty catalog", products, err)
	}
}

func TestAmbiguousRemovalCommandResumesWithOrdinal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"winter jacket blue large", "winter gloves wool small"} {
		if err := env.catalog.UpsertProduct(ctx, "u1", &catalog.Product{Name: name}); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	out := env.send(t, "u1", "/remove-product winter coat warm fleece")
	if !strings.Contains(out, "1.") || !strings.Contains(out, "2.") {
		t.Fatalf("reply = %q, want numbered candidates", out)
	}

	out = env.send(t, "u1", "2")
	if !strings.Contains(out, "winter gloves wool small") || !strings.Contains(out, "confirm") {
		t.Fatalf("reply = %q, want confirmation for the second candidate", out)
	}
	if !env.gate.HasPending("u1") {
		t.Fatalf("ordinal pick after an ambiguous command must arm the gate")
	}

	env.send(t, "u1", "yes")
	products, err := env.catalog.ListProducts(ctx, "u1")
	if err != nil || len(products) != 1 {
		t.Fatalf("products = %v, %v, want one left", products, err)
	}
	if products[0].Name != "winter jacket blue large" {
		t.Fatalf("remaining product = %q, want the unpicked candidate", products[0].Name)
	}
}

func TestUserLockMapDoesNotAccumulate(t *testing.T) {
	env := newTestEnv(t)

	for _, userID := range []string{"u1", "u2", "u3"} {
		env.send(t, userID, "/help")
	}

	env.orch.mu.Lock()
	n := len(env.orch.locks)
	env.orch.mu.Unlock()
	if n != 0 {
		t.Fatalf("lock map size = %d after idle turns, want 0", n)
	}
}

func TestNavigationMenuAndCancel(t *testing.T) {
	env := newTestEnv(t)

	out := env.send(t, "u1", "menu")
	if !strings.Contains(out, "1. Create a campaign") {
		t.Fatalf("menu = %q", out)
	}
	out = env.send(t, "u1", "cancel")
	if !strings.Contains(out, "cancelled") {
		t.Fatalf("cancel reply = %q", out)
	}
	if _, ok := env.sessions.Get("u1"); ok {
		t.Fatalf("session should be cleared after cancel")
	}
}

func TestTurnsAreArchived(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, "u1", "/help")

	turns, err := env.archive.RecentTurns(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("archived turns = %d, want user message plus reply", len(turns))
	}
	roles := map[string]bool{}
	for _, turn := range turns {
		roles[turn.Role] = true
	}
	if !roles[conversation.RoleUser] || !roles[conversation.RoleAssistant] {
		t.Fatalf("archived roles = %v, want both sides", roles)
	}
}

func TestEmptyMessageGetsNudge(t *testing.T) {
	env := newTestEnv(t)
	out := env.send(t, "u1", "   ")
	if !strings.Contains(out, "/help") {
		t.Fatalf("reply = %q, want nudge", out)
	}
}

func TestUnknownCommandAnswersExplicitly(t *testing.T) {
	env := newTestEnv(t)
	out := env.send(t, "u1", "/frobnicate")
	if !strings.Contains(out, "/help") {
		t.Fatalf("reply = %q, want pointer to /help", out)
	}
}
