package response

import (
	appmoderation "github.com/ClearVault/MediaGuard/pkg/app/moderation"
	"github.com/ClearVault/MediaGuard/pkg/moderation"
)

type VerdictOutput struct {
	ID                 string                     `json:"id"`
	MediaType          string                     `json:"media_type"`
	Verdict            string                     `json:"verdict"`
	RejectionReason    string                     `json:"rejection_reason,omitempty"`
	AggregateRiskScore float64                    `json:"aggregate_risk_score"`
	Categories         []moderation.CategoryScore `json:"categories"`
	Cached             bool                       `json:"cached"`
	Stored             bool                       `json:"stored"`
	StorageKey         string                     `json:"storage_key,omitempty"`
}

func NewVerdictOutput(result *appmoderation.Result) VerdictOutput {
	return VerdictOutput{
		ID:                 result.ID.String(),
		MediaType:          result.MediaType,
		Verdict:            string(result.Verdict.Verdict),
		RejectionReason:    result.Verdict.RejectionReason,
		AggregateRiskScore: result.Verdict.AggregateRiskScore,
		Categories:         result.Verdict.Categories,
		Cached:             result.Cached,
		Stored:             result.Stored,
		StorageKey:         result.StorageKey,
	}
}
