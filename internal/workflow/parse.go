package workflow

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var objectiveNames = []string{"Awareness", "Traffic", "Engagement", "Leads", "Sales"}

var objectiveKeywords = map[string]string{
	"awareness": "Awareness", "brand": "Awareness", "reach": "Awareness",
	"traffic": "Traffic", "click": "Traffic", "clicks": "Traffic", "link": "Traffic", "visits": "Traffic",
	"engagement": "Engagement", "engage": "Engagement", "likes": "Engagement",
	"leads": "Leads", "lead": "Leads", "signup": "Leads", "signups": "Leads",
	"sales": "Sales", "conversions": "Sales", "conversion": "Sales", "purchases": "Sales",
}

// parseObjective maps a numeric choice or free text onto the objective
// enumeration. Unrecognized input falls back to Traffic rather than
// blocking the workflow.
func parseObjective(raw string) string {
	in := strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(in); err == nil && n >= 1 && n <= len(objectiveNames) {
		return objectiveNames[n-1]
	}
	for _, word := range strings.Fields(in) {
		if obj, ok := objectiveKeywords[word]; ok {
			return obj
		}
	}
	return "Traffic"
}

// Budget is the parsed budget-and-schedule input.
type Budget struct {
	DailyCents int64
	StartDate  string
	EndDate    string
	Ongoing    bool
}

var (
	amountRe    = regexp.MustCompile(`\$?\s*(\d+(?:\.\d{1,2})?)`)
	dateRangeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*(?:to|until|-)\s*(\d{4}-\d{2}-\d{2})`)
)

// parseBudget extracts a currency amount and an optional date range.
// Malformed input substitutes the default daily budget and an ongoing
// schedule instead of failing the turn.
func parseBudget(raw string, defaultCents int64) Budget {
	b := Budget{DailyCents: defaultCents, Ongoing: true}
	in := strings.TrimSpace(raw)

	if m := dateRangeRe.FindStringSubmatch(in); m != nil {
		b.StartDate = m[1]
		b.EndDate = m[2]
		b.Ongoing = false
		// Strip the range so its digits don't look like an amount.
		in = strings.Replace(in, m[0], "", 1)
	}

	if m := amountRe.FindStringSubmatch(in); m != nil {
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil && amount > 0 {
			b.DailyCents = int64(math.Round(amount * 100))
		}
	}

	if strings.Contains(strings.ToLower(raw), "ongoing") {
		b.Ongoing = true
		b.StartDate = ""
		b.EndDate = ""
	}
	return b
}

// formatCents renders a dollar amount, dropping trailing zero cents.
func formatCents(cents int64) string {
	if cents%100 == 0 {
		return fmt.Sprintf("$%d", cents/100)
	}
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
