// Package ads defines the ad-platform collaborator boundary.
package ads

import (
	"context"
	"errors"
	"time"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// CampaignSpec is the structured input for campaign creation.
type CampaignSpec struct {
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	ProductID        string `json:"product_id"`
	ProductName      string `json:"product_name"`
	Objective        string `json:"objective"`
	DailyBudgetCents int64  `json:"daily_budget_cents"`
	StartDate        string `json:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty"`
	Ongoing          bool   `json:"ongoing"`
	Audience         string `json:"audience,omitempty"`
	Headline         string `json:"headline,omitempty"`
	PrimaryText      string `json:"primary_text,omitempty"`
}

// CampaignRefs are the platform identifiers returned on creation.
type CampaignRefs struct {
	CampaignID string `json:"campaign_id"`
	AdSetID    string `json:"ad_set_id"`
	AdID       string `json:"ad_id"`
}

// Campaign is a created campaign as reported by the platform.
type Campaign struct {
	CampaignRefs
	Spec      CampaignSpec `json:"spec"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// Platform is the ad-platform collaborator.
type Platform interface {
	CreateCampaign(ctx context.Context, spec CampaignSpec) (CampaignRefs, error)
	ListCampaigns(ctx context.Context, userID string) ([]Campaign, error)
	DeleteCampaign(ctx context.Context, campaignID string) error
}
