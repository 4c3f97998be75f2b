// Package orchestrator ties routing, workflows, and collaborators into the
// single entry point that handles one inbound chat message.
package orchestrator

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lbianchi/adpilot/internal/ads"
	"github.com/lbianchi/adpilot/internal/catalog"
	"github.com/lbianchi/adpilot/internal/confirm"
	"github.com/lbianchi/adpilot/internal/conversation"
	"github.com/lbianchi/adpilot/internal/memory"
	"github.com/lbianchi/adpilot/internal/observability"
	"github.com/lbianchi/adpilot/internal/policy"
	"github.com/lbianchi/adpilot/internal/router"
	"github.com/lbianchi/adpilot/internal/session"
	"github.com/lbianchi/adpilot/internal/transport"
	"github.com/lbianchi/adpilot/internal/workflow"
)

const helpText = "Here's what I can do:\n" +
	"/help - this message\n" +
	"/products - list your products\n" +
	"/add-product Name | SKU | price | description - add a product\n" +
	"/remove-product <name or number> - remove a product\n" +
	"/campaigns - list your campaigns\n" +
	"/delete-campaign <number or id> - delete a campaign\n" +
	"Or just send \"menu\" to walk through everything step by step."

// Orchestrator handles one user message end to end. Turns for the same user
// are serialized so workflow state never sees interleaved input; different
// users proceed concurrently.
type Orchestrator struct {
	router   *router.Router
	gate     *confirm.Gate
	sessions *session.Manager
	convo    *conversation.Tracker
	archive  memory.Store
	catalog  catalog.Store
	platform ads.Platform
	engine   *workflow.Engine
	auth     *policy.Authorizer
	metrics  *observability.Metrics

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock serializes turns for one user. Entries are refcounted and
// removed once the last holder releases, so the map only holds users with
// a turn in flight.
type userLock struct {
	mu   sync.Mutex
	refs int
}

func New(
	r *router.Router,
	gate *confirm.Gate,
	sessions *session.Manager,
	convo *conversation.Tracker,
	archive memory.Store,
	catalogStore catalog.Store,
	platform ads.Platform,
	engine *workflow.Engine,
	auth *policy.Authorizer,
	metrics *observability.Metrics,
) *Orchestrator {
	return &Orchestrator{
		router:   r,
		gate:     gate,
		sessions: sessions,
		convo:    convo,
		archive:  archive,
		catalog:  catalogStore,
		platform: platform,
		engine:   engine,
		auth:     auth,
		metrics:  metrics,
		locks:    make(map[string]*userLock),
	}
}

func (o *Orchestrator) acquireUser(userID string) *userLock {
	o.mu.Lock()
	l, ok := o.locks[userID]
	if !ok {
		l = &userLock{}
		o.locks[userID] = l
	}
	l.refs++
	o.mu.Unlock()

	l.mu.Lock()
	return l
}

func (o *Orchestrator) releaseUser(userID string, l *userLock) {
	l.mu.Unlock()

	o.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(o.locks, userID)
	}
	o.mu.Unlock()
}

// HandleMessage processes one inbound message and returns the replies to
// send back, in order. Long-running media generation is delivered out of
// band through the transport instead of blocking the turn.
func (o *Orchestrator) HandleMessage(ctx context.Context, userID, text string) []transport.Content {
	start := time.Now()
	defer func() { o.metrics.ObserveTurnLatency(time.Since(start)) }()

	text = strings.TrimSpace(text)
	if userID == "" || text == "" {
		return []transport.Content{transport.Text("Say something like \"menu\" or /help and I'll take it from there.")}
	}

	lock := o.acquireUser(userID)
	defer o.releaseUser(userID, lock)

	o.recordTurn(ctx, userID, conversation.RoleUser, text)

	decision := o.router.Route(userID, text)
	o.metrics.MessagesRouted.WithLabelValues(decision.Kind.String()).Inc()

	var replies []string
	switch decision.Kind {
	case router.KindConfirmation:
		replies = o.handleConfirmation(ctx, userID, text)
	case router.KindCommand:
		replies = o.handleCommand(ctx, userID, decision.Command)
	case router.KindNavigation:
		replies = o.handleNavigation(ctx, userID, decision.Nav)
	case router.KindResumeWorkflow:
		replies = o.engine.Advance(ctx, userID, text)
	default:
		replies = o.handleFreeform(ctx, userID, text)
	}

	o.metrics.ActiveSessions.Set(float64(o.sessions.ActiveCount()))

	out := make([]transport.Content, 0, len(replies))
	for _, r := range replies {
		o.recordTurn(ctx, userID, conversation.RoleAssistant, r)
		out = append(out, transport.Text(r))
	}
	return out
}

func (o *Orchestrator) recordTurn(ctx context.Context, userID, role, text string) {
	o.convo.Record(userID, role, text)
	turn := memory.Turn{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.archive.SaveTurn(ctx, turn); err != nil {
		o.metrics.CollaboratorErrors.WithLabelValues("memory").Inc()
		log.Printf("orchestrator: archive turn for %s: %v", userID, err)
	}
}

// handleConfirmation resolves the pending action. Only an explicit
// affirmative releases it; anything else cancels and the reply is consumed
// by the gate rather than re-routed.
func (o *Orchestrator) handleConfirmation(ctx context.Context, userID, text string) []string {
	outcome := o.gate.Resolve(userID, text)
	switch outcome.Status {
	case confirm.StatusConfirmed:
		return o.executeConfirmed(ctx, userID, outcome)
	case confirm.StatusCancelled:
		return []string{"Okay, I won't do that. Send \"menu\" to keep going."}
	default:
		return o.handleFreeform(ctx, userID, text)
	}
}

func (o *Orchestrator) executeConfirmed(ctx context.Context, userID string, outcome confirm.Outcome) []string {
	switch outcome.Command {
	case "delete-campaign":
		if len(outcome.Args) == 0 {
			return []string{"I lost track of which campaign that was. Send /campaigns and try again."}
		}
		if err := o.platform.DeleteCampaign(ctx, outcome.Args[0]); err != nil {
			o.metrics.CollaboratorErrors.WithLabelValues("ads").Inc()
			return []string{"Deleting the campaign failed: " + err.Error() + ". Please try again."}
		}
		return []string{"Done, the campaign is deleted."}

	case "remove-product":
		if len(outcome.Args) == 0 {
			return []string{"I lost track of which product that was. Send /products and try again."}
		}
		if err := o.catalog.DeleteProduct(ctx, outcome.Args[0]); err != nil {
			o.metrics.CollaboratorErrors.WithLabelValues("catalog").Inc()
			return []string{"Removing the product failed: " + err.Error() + ". Please try again."}
		}
		return []string{"Done, the product is removed from your catalog."}
	}

	log.Printf("orchestrator: confirmed unknown command %q for %s", outcome.Command, userID)
	return []string{"That action is no longer available."}
}

func (o *Orchestrator) handleCommand(ctx context.Context, userID string, cmd router.Command) []string {
	decision := policy.DecideCommand(string(cmd.Name))
	if decision.PrivilegedOnly && !o.auth.IsPrivileged(userID) {
		return []string{policy.DenialMessage}
	}

	switch cmd.Name {
	case router.CmdHelp:
		return []string{helpText}

	case router.CmdProducts:
		return o.engine.ListProducts(ctx, userID)

	case router.CmdAddProduct:
		if len(cmd.Args) == 0 {
			return []string{"Usage: /add-product Name | SKU | price | description (SKU and later fields are optional)."}
		}
		replies, _ := o.engine.AddProduct(ctx, userID, strings.Join(cmd.Args, " "))
		return replies

	case router.CmdRemoveProduct:
		if len(cmd.Args) == 0 {
			return []string{"Usage: /remove-product <name or number from /products>."}
		}
		return o.engine.RequestProductRemoval(ctx, userID, strings.Join(cmd.Args, " "))

	case router.CmdCampaigns:
		return o.engine.ListCampaigns(ctx, userID)

	case router.CmdDeleteCampaign:
		if len(cmd.Args) == 0 {
			return []string{"Usage: /delete-campaign <number from /campaigns or campaign id>."}
		}
		return o.engine.RequestCampaignDeletion(ctx, userID, strings.Join(cmd.Args, " "))
	}

	return []string{"I don't know that command. Send /help to see what's available."}
}

func (o *Orchestrator) handleNavigation(ctx context.Context, userID string, nav router.NavAction) []string {
	switch nav {
	case router.NavBack:
		return o.engine.Back(ctx, userID)
	case router.NavCancel:
		return o.engine.Cancel(userID)
	default:
		return o.engine.Menu(userID)
	}
}

// Freeform intent keywords, checked against the lowercased message. A full
// language-model classifier can replace this without touching routing.
var intentWorkflows = []struct {
	kind     session.WorkflowKind
	keywords []string
}{
	{session.WorkflowCreateCampaign, []string{"campaign", "advertise", "promote"}},
	{session.WorkflowGenerateMedia, []string{"image", "video", "media", "creative", "picture"}},
	{session.WorkflowAnalyzePerformance, []string{"performance", "analytics", "how are", "stats", "report"}},
	{session.WorkflowManageProducts, []string{"product", "catalog"}},
}

func (o *Orchestrator) handleFreeform(ctx context.Context, userID, text string) []string {
	in := strings.ToLower(text)

	for _, intent := range intentWorkflows {
		for _, kw := range intent.keywords {
			if strings.Contains(in, kw) {
				return o.engine.Start(ctx, userID, intent.kind)
			}
		}
	}

	for _, greeting := range []string{"hi", "hello", "hey", "yo", "ciao"} {
		if in == greeting {
			return append([]string{"Hey! I'm your ads assistant."}, o.engine.Menu(userID)...)
		}
	}

	return append([]string{"I'm not sure what you're after."}, o.engine.Menu(userID)...)
}
