package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lbianchi/adpilot/internal/ads"
	"github.com/lbianchi/adpilot/internal/creative"
	"github.com/lbianchi/adpilot/internal/session"
)

// Create-campaign steps, strictly linear.
const (
	stepProductSelection   = 1
	stepMediaGeneration    = 2
	stepObjectiveSelection = 3
	stepBudgetSchedule     = 4
	stepReviewCreate       = 5
)

const (
	productSelectionPrompt = "Which product is this campaign for? You can name it, or send /products to see your catalog."
	objectivePrompt        = "What's the campaign objective?\n1. Awareness\n2. Traffic\n3. Engagement\n4. Leads\n5. Sales\nReply with a number or name."
	budgetPrompt           = "What daily budget should I set? For example \"$40 ongoing\" or \"$25 2026-03-01 to 2026-04-01\"."
	reviewChoicesPrompt    = "1. Create campaign\n2. Edit (go back with \"back\")\n3. Cancel"
)

func mediaPrompt(productName string) string {
	return fmt.Sprintf(
		"Want creative assets for %s?\n1. Generate an image pack\n2. Generate a single image\n3. Generate a video\n4. Skip",
		productName,
	)
}

func (e *Engine) advanceCreateCampaign(ctx context.Context, s *session.Session, raw string) []string {
	switch s.Step {
	case stepProductSelection:
		entity, replies := e.selectProduct(ctx, s.UserID, raw)
		if entity == nil {
			return replies
		}
		s.Campaign.ProductID = entity.ID
		s.Campaign.ProductName = entity.Name
		s.Step = stepMediaGeneration
		e.sessions.Save(s)
		return []string{fmt.Sprintf("Got it, %s.", entity.Name), mediaPrompt(entity.Name)}

	case stepMediaGeneration:
		choice := strings.ToLower(strings.TrimSpace(raw))
		var kind creative.Kind
		switch choice {
		case "1", "pack", "image pack":
			kind = creative.KindImagePack
		case "2", "image", "single":
			kind = creative.KindImage
		case "3", "video":
			kind = creative.KindVideo
		case "4", "skip", "no":
			s.Campaign.MediaSkipped = true
			s.Step = stepObjectiveSelection
			e.sessions.Save(s)
			return []string{objectivePrompt}
		default:
			return []string{mediaPrompt(s.Campaign.ProductName)}
		}

		s.Campaign.MediaKind = string(kind)
		s.Step = stepObjectiveSelection
		e.sessions.Save(s)
		e.generateMediaAsync(s.UserID, kind, s.Campaign.ProductName)
		return []string{
			"Generating that now, I'll send it here as soon as it's ready. Meanwhile:",
			objectivePrompt,
		}

	case stepObjectiveSelection:
		s.Campaign.Objective = parseObjective(raw)
		s.Step = stepBudgetSchedule
		e.sessions.Save(s)
		return []string{budgetPrompt}

	case stepBudgetSchedule:
		budget := parseBudget(raw, e.defaultBudgetCents)
		s.Campaign.DailyBudgetCents = budget.DailyCents
		s.Campaign.StartDate = budget.StartDate
		s.Campaign.EndDate = budget.EndDate
		s.Campaign.Ongoing = budget.Ongoing
		e.fillDefaults(ctx, s.Campaign)
		s.Step = stepReviewCreate
		e.sessions.Save(s)
		return []string{reviewSummary(s.Campaign), reviewChoicesPrompt}

	case stepReviewCreate:
		switch strings.TrimSpace(raw) {
		case "1", "create":
			return e.createCampaign(ctx, s)
		case "2", "edit":
			return []string{reviewSummary(s.Campaign), reviewChoicesPrompt}
		case "3", "cancel":
			return e.Cancel(s.UserID)
		default:
			return []string{reviewChoicesPrompt}
		}
	}
	return []string{productSelectionPrompt}
}

// fillDefaults asks the copywriting collaborator for audience and copy,
// falling back to static defaults when it fails. The call is bounded so it
// only ever suspends this user's turn.
func (e *Engine) fillDefaults(ctx context.Context, draft *session.CampaignDraft) {
	genCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	defaults, err := e.creative.SuggestDefaults(genCtx, draft.ProductName, draft.Objective)
	if err != nil {
		e.metrics.CollaboratorErrors.WithLabelValues("creative").Inc()
		log.Printf("workflow: suggest defaults for %q: %v", draft.ProductName, err)
		defaults = creative.Defaults{
			Audience:    "Adults 18-65",
			Headline:    draft.ProductName,
			PrimaryText: "Check out " + draft.ProductName + ".",
		}
	}
	draft.Audience = defaults.Audience
	draft.Headline = defaults.Headline
	draft.PrimaryText = defaults.PrimaryText
}

func (e *Engine) createCampaign(ctx context.Context, s *session.Session) []string {
	draft := s.Campaign
	spec := ads.CampaignSpec{
		UserID:           s.UserID,
		Name:             fmt.Sprintf("%s %s Campaign", draft.ProductName, draft.Objective),
		ProductID:        draft.ProductID,
		ProductName:      draft.ProductName,
		Objective:        draft.Objective,
		DailyBudgetCents: draft.DailyBudgetCents,
		StartDate:        draft.StartDate,
		EndDate:          draft.EndDate,
		Ongoing:          draft.Ongoing,
		Audience:         draft.Audience,
		Headline:         draft.Headline,
		PrimaryText:      draft.PrimaryText,
	}

	refs, err := e.platform.CreateCampaign(ctx, spec)
	if err != nil {
		e.metrics.CollaboratorErrors.WithLabelValues("ads").Inc()
		return []string{"Campaign creation failed: " + err.Error() + ". Reply 1 to retry, or 3 to cancel."}
	}

	e.metrics.WorkflowEvents.WithLabelValues(string(session.WorkflowCreateCampaign), "completed").Inc()
	e.sessions.Clear(s.UserID)
	return []string{fmt.Sprintf(
		"Done! Campaign %s is live (ad set %s, ad %s). Send \"menu\" for more options.",
		refs.CampaignID, refs.AdSetID, refs.AdID,
	)}
}

func reviewSummary(d *session.CampaignDraft) string {
	schedule := "ongoing"
	if !d.Ongoing && d.StartDate != "" {
		schedule = d.StartDate + " to " + d.EndDate
	}
	media := d.MediaKind
	if d.MediaSkipped || media == "" {
		media = "none"
	}
	return fmt.Sprintf(
		"Here's your campaign:\nProduct: %s\nObjective: %s\nBudget: %s/day\nSchedule: %s\nMedia: %s\nAudience: %s\nHeadline: %s",
		d.ProductName, d.Objective, formatCents(d.DailyBudgetCents), schedule, media, d.Audience, d.Headline,
	)
}
