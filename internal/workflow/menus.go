package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lbianchi/adpilot/internal/catalog"
	"github.com/lbianchi/adpilot/internal/conversation"
	"github.com/lbianchi/adpilot/internal/creative"
	"github.com/lbianchi/adpilot/internal/session"
)

const (
	mainMenuPrompt = "What would you like to do?\n1. Create a campaign\n2. Generate media\n3. Manage campaigns\n4. Analyze performance\n5. Manage products\nReply with a number."

	manageCampaignsPrompt = "Campaigns:\n1. List campaigns\n2. Delete a campaign\nReply with a number."

	manageProductsPrompt = "Products:\n1. List products\n2. Add a product\n3. Remove a product\nReply with a number."

	addProductPrompt = "Send the product as: Name | SKU | price | description (SKU and later fields are optional)."
)

func mediaKindPrompt(productName string) string {
	return fmt.Sprintf("What should I generate for %s?\n1. Single image\n2. Image pack\n3. Video", productName)
}

func (e *Engine) advanceMainMenu(ctx context.Context, userID, raw string) []string {
	switch strings.TrimSpace(raw) {
	case "1":
		return e.Start(ctx, userID, session.WorkflowCreateCampaign)
	case "2":
		return e.Start(ctx, userID, session.WorkflowGenerateMedia)
	case "3":
		return e.Start(ctx, userID, session.WorkflowManageCampaigns)
	case "4":
		return e.Start(ctx, userID, session.WorkflowAnalyzePerformance)
	case "5":
		return e.Start(ctx, userID, session.WorkflowManageProducts)
	default:
		return []string{mainMenuPrompt}
	}
}

func (e *Engine) advanceGenerateMedia(ctx context.Context, s *session.Session, raw string) []string {
	switch s.Step {
	case 1:
		entity, replies := e.selectProduct(ctx, s.UserID, raw)
		if entity == nil {
			return replies
		}
		s.Media.ProductID = entity.ID
		s.Media.ProductName = entity.Name
		s.Step = 2
		e.sessions.Save(s)
		return []string{mediaKindPrompt(entity.Name)}

	case 2:
		kind, ok := parseMediaKind(raw)
		if !ok {
			return []string{mediaKindPrompt(s.Media.ProductName)}
		}
		e.generateMediaAsync(s.UserID, kind, s.Media.ProductName)
		e.metrics.WorkflowEvents.WithLabelValues(string(session.WorkflowGenerateMedia), "completed").Inc()
		e.sessions.Clear(s.UserID)
		return []string{"On it. I'll deliver the result here as soon as it's ready."}
	}
	return []string{"Which product should I generate media for?"}
}

func (e *Engine) advanceManageCampaigns(ctx context.Context, s *session.Session, raw string) []string {
	switch s.Step {
	case 0:
		switch strings.TrimSpace(raw) {
		case "1":
			return append(e.ListCampaigns(ctx, s.UserID), manageCampaignsPrompt)
		case "2":
			replies := e.ListCampaigns(ctx, s.UserID)
			s.Step = 1
			e.sessions.Save(s)
			return append(replies, "Which campaign should I delete? Reply with its number.")
		default:
			return []string{manageCampaignsPrompt}
		}
	case 1:
		return e.RequestCampaignDeletion(ctx, s.UserID, raw)
	}
	return []string{manageCampaignsPrompt}
}

func (e *Engine) advanceManageProducts(ctx context.Context, s *session.Session, raw string) []string {
	switch s.Step {
	case 0:
		switch strings.TrimSpace(raw) {
		case "1":
			return append(e.ListProducts(ctx, s.UserID), manageProductsPrompt)
		case "2":
			s.Step = 1
			e.sessions.Save(s)
			return []string{addProductPrompt}
		case "3":
			replies := e.ListProducts(ctx, s.UserID)
			s.Step = 2
			e.sessions.Save(s)
			return append(replies, "Which product should I remove? Reply with its number or name.")
		default:
			return []string{manageProductsPrompt}
		}

	case 1:
		replies, added := e.AddProduct(ctx, s.UserID, raw)
		if !added {
			return append(replies, addProductPrompt)
		}
		s.Step = 0
		e.sessions.Save(s)
		return append(replies, manageProductsPrompt)

	case 2:
		return e.RequestProductRemoval(ctx, s.UserID, raw)
	}
	return []string{manageProductsPrompt}
}

// AddProduct parses a "Name | SKU | price | description" line and stores it.
func (e *Engine) AddProduct(ctx context.Context, userID, line string) ([]string, bool) {
	p, err := parseProductLine(line)
	if err != nil {
		return []string{err.Error()}, false
	}
	if err := e.catalog.UpsertProduct(ctx, userID, p); err != nil {
		e.metrics.CollaboratorErrors.WithLabelValues("catalog").Inc()
		return []string{"Saving the product failed: " + err.Error() + ". Please try again."}, false
	}
	return []string{fmt.Sprintf("Added %s.", p.Name)}, true
}

// RequestProductRemoval resolves the target and arms the confirmation gate;
// the removal itself only happens on an explicit affirmative reply.
func (e *Engine) RequestProductRemoval(ctx context.Context, userID, query string) []string {
	entity, replies := e.selectProduct(ctx, userID, query)
	if entity == nil {
		// An ambiguous match leaves candidates pending. Arm the removal
		// step so the ordinal follow-up resumes here instead of falling
		// through to freeform routing.
		if e.convo.HasPendingCandidates(userID) {
			s := e.sessions.Start(userID, session.WorkflowManageProducts)
			s.Step = 2
			e.sessions.Save(s)
		}
		return replies
	}
	_, replaced := e.gate.Request(userID, "remove-product", []string{entity.ID})
	e.sessions.Clear(userID)
	out := []string{fmt.Sprintf(
		"About to remove %q from your catalog. Reply %s to confirm, anything else cancels.",
		entity.Name, strings.ToUpper(e.gate.AcceptToken()),
	)}
	if replaced {
		out = append([]string{"Heads up: this replaces the action that was already waiting for confirmation."}, out...)
	}
	return out
}

// RequestCampaignDeletion resolves the target campaign (ordinal from the
// last shown list, or a raw campaign id) and arms the confirmation gate.
func (e *Engine) RequestCampaignDeletion(ctx context.Context, userID, query string) []string {
	ref := e.convo.ResolveReferent(userID, query)
	if ref == nil {
		query = strings.TrimSpace(query)
		campaigns, err := e.platform.ListCampaigns(ctx, userID)
		if err != nil {
			e.metrics.CollaboratorErrors.WithLabelValues("ads").Inc()
			return []string{"I couldn't reach the ad platform: " + err.Error() + ". Please try again."}
		}
		for _, c := range campaigns {
			if c.CampaignID == query {
				ref = &conversation.Entity{ID: c.CampaignID, Name: c.Spec.Name}
				break
			}
		}
	}
	if ref == nil {
		return []string{"I didn't catch which campaign you mean. Send /campaigns and reply with its number."}
	}

	_, replaced := e.gate.Request(userID, "delete-campaign", []string{ref.ID})
	e.sessions.Clear(userID)
	out := []string{fmt.Sprintf(
		"About to delete %q. This can't be undone. Reply %s to confirm, anything else cancels.",
		ref.Name, strings.ToUpper(e.gate.AcceptToken()),
	)}
	if replaced {
		out = append([]string{"Heads up: this replaces the action that was already waiting for confirmation."}, out...)
	}
	return out
}

// ListProducts renders the catalog as a numbered list and records it as the
// last shown list for ordinal follow-ups.
func (e *Engine) ListProducts(ctx context.Context, userID string) []string {
	products, err := e.catalog.ListProducts(ctx, userID)
	if err != nil {
		e.metrics.CollaboratorErrors.WithLabelValues("catalog").Inc()
		return []string{"I couldn't reach the product catalog: " + err.Error() + ". Please try again."}
	}
	if len(products) == 0 {
		return []string{"Your catalog is empty. Pick \"Add a product\" to create one."}
	}

	entities := make([]conversation.Entity, 0, len(products))
	out := "Your products:\n"
	for i, p := range products {
		entities = append(entities, conversation.Entity{ID: p.ID, Name: p.Name})
		line := fmt.Sprintf("%d. %s", i+1, p.Name)
		if p.SKU != "" {
			line += " (" + p.SKU + ")"
		}
		out += line + "\n"
	}
	e.convo.SetLastList(userID, entities)
	return []string{strings.TrimRight(out, "\n")}
}

// ListCampaigns renders the user's campaigns as a numbered list and records
// it for ordinal follow-ups.
func (e *Engine) ListCampaigns(ctx context.Context, userID string) []string {
	campaigns, err := e.platform.ListCampaigns(ctx, userID)
	if err != nil {
		e.metrics.CollaboratorErrors.WithLabelValues("ads").Inc()
		return []string{"I couldn't reach the ad platform: " + err.Error() + ". Please try again."}
	}
	if len(campaigns) == 0 {
		return []string{"You have no campaigns yet."}
	}

	entities := make([]conversation.Entity, 0, len(campaigns))
	out := "Your campaigns:\n"
	for i, c := range campaigns {
		entities = append(entities, conversation.Entity{ID: c.CampaignID, Name: c.Spec.Name})
		out += fmt.Sprintf("%d. %s (%s, %s/day)\n", i+1, c.Spec.Name, c.Status, formatCents(c.Spec.DailyBudgetCents))
	}
	e.convo.SetLastList(userID, entities)
	return []string{strings.TrimRight(out, "\n")}
}

func parseMediaKind(raw string) (kind creative.Kind, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "image", "single":
		return creative.KindImage, true
	case "2", "pack", "image pack":
		return creative.KindImagePack, true
	case "3", "video":
		return creative.KindVideo, true
	default:
		return "", false
	}
}

// parseProductLine parses "Name | SKU | price | description".
func parseProductLine(raw string) (*catalog.Product, error) {
	parts := strings.Split(raw, "|")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return nil, fmt.Errorf("the product needs at least a name")
	}
	p := &catalog.Product{Name: name}
	if len(parts) > 1 {
		p.SKU = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		priceText := strings.TrimPrefix(strings.TrimSpace(parts[2]), "$")
		if amount, err := strconv.ParseFloat(priceText, 64); err == nil && amount >= 0 {
			p.PriceCents = int64(amount * 100)
		}
	}
	if len(parts) > 3 {
		p.Description = strings.TrimSpace(parts[3])
	}
	return p, nil
}
