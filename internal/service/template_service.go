// internal/service/template_service.go
package service

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// RenderTemplate replaces {key} placeholders with data[key]. Empty or unknown
// keys render as "N/A" so a sent email never shows a raw placeholder.
func RenderTemplate(template string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		if v := strings.TrimSpace(data[key]); v != "" {
			return v
		}
		return "N/A"
	})
}

const defaultOutreachSubject = "Collaboration opportunity: {campaign_name}"

const defaultOutreachBody = `Hi {influencer_name},

{brand_name} is running a {campaign_type} campaign, "{campaign_name}", and we think your audience is a great fit.
Our budget for this collaboration is around {budget}. Reply to this email or open the negotiation chat to discuss terms.

Best,
{brand_name}`

// ContractTemplates are the named contract bodies a brand can generate from.
var ContractTemplates = map[string]string{
	"standard": `INFLUENCER SERVICES AGREEMENT

This agreement is made between {brand_name} ("Brand") and {influencer_name} ("Creator").

1. Campaign. The Creator will produce content for the campaign "{campaign_name}".
2. Term. The engagement runs for {duration}.
3. Compensation. The Brand will pay the Creator {amount} upon delivery.
4. Approval. The Brand may request one round of revisions before publication.

Signed electronically by both parties.`,
	"ugc": `USER-GENERATED CONTENT LICENSE

{influencer_name} grants {brand_name} a license to use content created for "{campaign_name}"
for {duration} in exchange for a fee of {amount}.`,
}
