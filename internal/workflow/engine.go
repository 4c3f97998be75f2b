// Package workflow drives per-user multi-step procedures.
package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lbianchi/adpilot/internal/ads"
	"github.com/lbianchi/adpilot/internal/catalog"
	"github.com/lbianchi/adpilot/internal/confirm"
	"github.com/lbianchi/adpilot/internal/conversation"
	"github.com/lbianchi/adpilot/internal/creative"
	"github.com/lbianchi/adpilot/internal/observability"
	"github.com/lbianchi/adpilot/internal/resolver"
	"github.com/lbianchi/adpilot/internal/session"
	"github.com/lbianchi/adpilot/internal/transport"
)

const cantGoBackNotice = "You're already at the first step, there's nothing to go back to."

// Engine walks users through workflows, persisting partial input between
// turns. All replies are returned to the caller; only long-running media
// generation is delivered asynchronously through the transport.
type Engine struct {
	sessions  *session.Manager
	convo     *conversation.Tracker
	catalog   catalog.Store
	creative  creative.Generator
	platform  ads.Platform
	deliverer transport.Deliverer
	gate      *confirm.Gate
	metrics   *observability.Metrics

	defaultBudgetCents int64
}

func NewEngine(
	sessions *session.Manager,
	convo *conversation.Tracker,
	catalogStore catalog.Store,
	generator creative.Generator,
	platform ads.Platform,
	deliverer transport.Deliverer,
	gate *confirm.Gate,
	metrics *observability.Metrics,
	defaultBudgetCents int64,
) *Engine {
	if defaultBudgetCents <= 0 {
		defaultBudgetCents = 5000
	}
	return &Engine{
		sessions:           sessions,
		convo:              convo,
		catalog:            catalogStore,
		creative:           generator,
		platform:           platform,
		deliverer:          deliverer,
		gate:               gate,
		metrics:            metrics,
		defaultBudgetCents: defaultBudgetCents,
	}
}

// Start begins a workflow and returns its opening prompt.
func (e *Engine) Start(ctx context.Context, userID string, kind session.WorkflowKind) []string {
	e.metrics.WorkflowEvents.WithLabelValues(string(kind), "started").Inc()

	switch kind {
	case session.WorkflowMainMenu:
		e.sessions.Start(userID, kind)
		return []string{mainMenuPrompt}
	case session.WorkflowCreateCampaign:
		e.sessions.Start(userID, kind)
		return []string{productSelectionPrompt}
	case session.WorkflowGenerateMedia:
		e.sessions.Start(userID, kind)
		return []string{"Which product should I generate media for?"}
	case session.WorkflowManageCampaigns:
		e.sessions.Start(userID, kind)
		return []string{manageCampaignsPrompt}
	case session.WorkflowAnalyzePerformance:
		// One-shot summary; no session survives it.
		return e.performanceSummary(ctx, userID)
	case session.WorkflowManageProducts:
		e.sessions.Start(userID, kind)
		return []string{manageProductsPrompt}
	default:
		return []string{mainMenuPrompt}
	}
}

// Advance feeds one message into the user's active workflow.
func (e *Engine) Advance(ctx context.Context, userID, raw string) []string {
	s, ok := e.sessions.Get(userID)
	if !ok || s.Workflow == session.WorkflowNone {
		return e.Menu(userID)
	}

	switch s.Workflow {
	case session.WorkflowMainMenu:
		return e.advanceMainMenu(ctx, userID, raw)
	case session.WorkflowCreateCampaign:
		return e.advanceCreateCampaign(ctx, s, raw)
	case session.WorkflowGenerateMedia:
		return e.advanceGenerateMedia(ctx, s, raw)
	case session.WorkflowManageCampaigns:
		return e.advanceManageCampaigns(ctx, s, raw)
	case session.WorkflowManageProducts:
		return e.advanceManageProducts(ctx, s, raw)
	default:
		return e.Menu(userID)
	}
}

// Back moves one step backwards and re-renders that step's prompt from the
// accumulated draft. Prior side effects are not re-executed.
func (e *Engine) Back(ctx context.Context, userID string) []string {
	s, ok := e.sessions.Get(userID)
	if !ok || s.Workflow == session.WorkflowNone {
		return []string{"No workflow in progress. Send \"menu\" to see options."}
	}
	if s.Step <= 1 {
		return []string{cantGoBackNotice}
	}
	s.Step--
	e.sessions.Save(s)
	return e.renderStep(ctx, s)
}

// Cancel clears the user's session unconditionally. Cancelling twice is the
// same as cancelling once.
func (e *Engine) Cancel(userID string) []string {
	if s, ok := e.sessions.Get(userID); ok && s.Workflow != session.WorkflowNone {
		e.metrics.WorkflowEvents.WithLabelValues(string(s.Workflow), "cancelled").Inc()
	}
	e.sessions.Clear(userID)
	e.convo.ClearPendingCandidates(userID)
	return []string{"Okay, cancelled. Send \"menu\" whenever you want to start again."}
}

// Menu clears any session and shows the main menu.
func (e *Engine) Menu(userID string) []string {
	e.sessions.Clear(userID)
	e.convo.ClearPendingCandidates(userID)
	e.sessions.Start(userID, session.WorkflowMainMenu)
	return []string{mainMenuPrompt}
}

// renderStep re-renders the prompt for the session's current step without
// side effects.
func (e *Engine) renderStep(_ context.Context, s *session.Session) []string {
	switch s.Workflow {
	case session.WorkflowCreateCampaign:
		switch s.Step {
		case stepProductSelection:
			return []string{productSelectionPrompt}
		case stepMediaGeneration:
			return []string{mediaPrompt(s.Campaign.ProductName)}
		case stepObjectiveSelection:
			return []string{objectivePrompt}
		case stepBudgetSchedule:
			return []string{budgetPrompt}
		case stepReviewCreate:
			return []string{reviewSummary(s.Campaign), reviewChoicesPrompt}
		}
	case session.WorkflowGenerateMedia:
		switch s.Step {
		case 1:
			return []string{"Which product should I generate media for?"}
		case 2:
			return []string{mediaKindPrompt(s.Media.ProductName)}
		}
	}
	return []string{mainMenuPrompt}
}

// selectProduct resolves a free-text product reference, first through
// conversation referents, then through the entity resolver.
func (e *Engine) selectProduct(ctx context.Context, userID, raw string) (*conversation.Entity, []string) {
	if ref := e.convo.ResolveReferent(userID, raw); ref != nil {
		return ref, nil
	}

	pool, err := e.catalog.ListProducts(ctx, userID)
	if err != nil {
		e.metrics.CollaboratorErrors.WithLabelValues("catalog").Inc()
		return nil, []string{"I couldn't reach the product catalog: " + err.Error() + ". Please try again."}
	}

	res := resolver.Resolve(raw, pool)
	switch res.Outcome {
	case resolver.OutcomeMatch:
		e.metrics.ResolverOutcomes.WithLabelValues("match").Inc()
		entity := conversation.Entity{ID: res.Match.ID, Name: res.Match.Name}
		e.convo.SetLastEntity(userID, entity)
		return &entity, nil
	case resolver.OutcomeAmbiguous:
		e.metrics.ResolverOutcomes.WithLabelValues("ambiguous").Inc()
		entities := make([]conversation.Entity, 0, len(res.Candidates))
		lines := "I found a few possible matches:\n"
		for i, c := range res.Candidates {
			entities = append(entities, conversation.Entity{ID: c.Product.ID, Name: c.Product.Name})
			lines += fmt.Sprintf("%d. %s\n", i+1, c.Product.Name)
		}
		e.convo.SetPendingCandidates(userID, entities)
		return nil, []string{lines + "Reply with a number to pick one."}
	default:
		e.metrics.ResolverOutcomes.WithLabelValues("none").Inc()
		return nil, []string{fmt.Sprintf("I couldn't find a product matching %q. Send /products to see your catalog.", raw)}
	}
}

// generateMediaAsync is fire-and-forget relative to the chat turn; the
// result is delivered through the per-user transport once ready.
func (e *Engine) generateMediaAsync(userID string, kind creative.Kind, productName string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		asset, err := e.creative.Generate(ctx, kind, creative.Params{ProductName: productName})
		if err != nil {
			e.metrics.CollaboratorErrors.WithLabelValues("creative").Inc()
			msg := fmt.Sprintf("Media generation for %s failed: %v. You can retry from the menu.", productName, err)
			if derr := e.deliverer.Deliver(ctx, userID, transport.Text(msg)); derr != nil {
				log.Printf("workflow: deliver failure notice to %s: %v", userID, derr)
			}
			return
		}

		content := transport.Content{Kind: transport.KindImage, URL: asset.URL, Caption: asset.Caption}
		if kind == creative.KindVideo {
			content.Kind = transport.KindVideo
		}
		if err := e.deliverer.Deliver(ctx, userID, content); err != nil {
			e.metrics.CollaboratorErrors.WithLabelValues("transport").Inc()
			log.Printf("workflow: deliver asset to %s: %v", userID, err)
		}
	}()
}

func (e *Engine) performanceSummary(ctx context.Context, userID string) []string {
	campaigns, err := e.platform.ListCampaigns(ctx, userID)
	if err != nil {
		e.metrics.CollaboratorErrors.WithLabelValues("ads").Inc()
		return []string{"I couldn't reach the ad platform: " + err.Error() + ". Please try again."}
	}
	if len(campaigns) == 0 {
		return []string{"You have no campaigns yet. Send \"menu\" and pick 1 to create one."}
	}

	var totalDaily int64
	active := 0
	for _, c := range campaigns {
		totalDaily += c.Spec.DailyBudgetCents
		if c.Status == "active" {
			active++
		}
	}
	return []string{fmt.Sprintf(
		"You have %d campaign(s), %d active, with a combined daily budget of %s. Detailed metrics live in your ads dashboard.",
		len(campaigns), active, formatCents(totalDaily),
	)}
}
