// Package status holds the status rules shared by outreach, campaigns and contracts.
package status

import (
	"strings"

	"github.com/ampplex/influencerflow/internal/model"
)

type keywordRule struct {
	keywords []string
	status   string
}

// Order matters: the first rule with a matching keyword wins.
var keywordRules = []keywordRule{
	{keywords: []string{"accept", "agreed"}, status: model.OutreachReplied},
	{keywords: []string{"decline", "not interested"}, status: model.OutreachDeclined},
	{keywords: []string{"pending", "consider"}, status: model.OutreachPending},
}

// Detect infers an outreach status from free chat text by substring match.
// It is a cheap interim signal; the negotiation service's completion event
// is authoritative. ok is false when no keyword matches.
func Detect(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.status, true
			}
		}
	}
	return "", false
}

// HeuristicMayOverwrite reports whether a keyword-detected status may replace
// current. Once a price is agreed only the brand's decision moves the row.
func HeuristicMayOverwrite(current string, priceAgreed bool) bool {
	return !priceAgreed && current != model.OutreachCompleted
}

var contractTransitions = map[string][]string{
	model.ContractDraft:            {model.ContractPendingSignature},
	model.ContractPendingSignature: {model.ContractSigned, model.ContractRejected},
}

// ContractTransitionAllowed validates a contract status change.
func ContractTransitionAllowed(from, to string) bool {
	for _, next := range contractTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidCampaignStatus reports whether s is a known campaign status.
func ValidCampaignStatus(s string) bool {
	for _, known := range model.CampaignStatuses {
		if known == s {
			return true
		}
	}
	return false
}
