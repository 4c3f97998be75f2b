package session

import "time"

// WorkflowKind names a guided multi-step procedure.
type WorkflowKind string

const (
	WorkflowNone               WorkflowKind = ""
	WorkflowMainMenu           WorkflowKind = "main_menu"
	WorkflowCreateCampaign     WorkflowKind = "create_campaign"
	WorkflowGenerateMedia      WorkflowKind = "generate_media"
	WorkflowManageCampaigns    WorkflowKind = "manage_campaigns"
	WorkflowAnalyzePerformance WorkflowKind = "analyze_performance"
	WorkflowManageProducts     WorkflowKind = "manage_products"
)

// CampaignDraft accumulates input across the create-campaign steps.
type CampaignDraft struct {
	ProductID        string `json:"product_id"`
	ProductName      string `json:"product_name"`
	MediaKind        string `json:"media_kind,omitempty"`
	MediaSkipped     bool   `json:"media_skipped,omitempty"`
	Objective        string `json:"objective,omitempty"`
	DailyBudgetCents int64  `json:"daily_budget_cents,omitempty"`
	StartDate        string `json:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty"`
	Ongoing          bool   `json:"ongoing,omitempty"`
	Audience         string `json:"audience,omitempty"`
	Headline         string `json:"headline,omitempty"`
	PrimaryText      string `json:"primary_text,omitempty"`
}

// MediaDraft accumulates input across the generate-media steps.
type MediaDraft struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Kind        string `json:"kind,omitempty"`
}

// ProductDraft accumulates input across the manage-products steps.
type ProductDraft struct {
	Mode string `json:"mode,omitempty"`
}

// Session is the per-user workflow state. Each workflow kind carries only
// the draft relevant to its steps; a draft is cleared when its workflow
// ends. Sessions are ephemeral and owned by the Manager.
type Session struct {
	UserID         string        `json:"user_id"`
	Workflow       WorkflowKind  `json:"workflow"`
	Step           int           `json:"step"`
	Campaign       *CampaignDraft `json:"campaign,omitempty"`
	Media          *MediaDraft    `json:"media,omitempty"`
	Product        *ProductDraft  `json:"product,omitempty"`
	LastActivityAt time.Time     `json:"last_activity_at"`
}

func clone(s *Session) *Session {
	c := *s
	if s.Campaign != nil {
		d := *s.Campaign
		c.Campaign = &d
	}
	if s.Media != nil {
		d := *s.Media
		c.Media = &d
	}
	if s.Product != nil {
		d := *s.Product
		c.Product = &d
	}
	return &c
}
