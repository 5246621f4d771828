package intent

import "github.com/commune-chat/intent-api/internal/models"

// Merge reconciles the external detector's verdict with the deterministic
// fallback. The policy is a strict either/or: a detector answer is used
// verbatim and tagged "ai"; absence of one selects the fallback verbatim,
// tagged "regex". The two outputs are never blended field by field.
func Merge(ai *Verdict, fallback Verdict) (Verdict, models.DetectedBy) {
	if ai != nil {
		return *ai, models.DetectedByAI
	}
	return fallback, models.DetectedByRegex
}

// ApplyEnrichment layers the optional AI enhancement block onto event
// details. Populated enrichment fields overwrite the corresponding
// top-level fields outright, last writer wins; tags in particular are
// replaced, not unioned. The original block is retained on the details
// for admin review.
func ApplyEnrichment(details *models.EventDetails, enriched *models.AIGeneratedDetails) {
	if details == nil || enriched == nil {
		return
	}

	if enriched.Title != "" {
		details.Title = enriched.Title
	}
	if enriched.Description != "" {
		details.Description = enriched.Description
	}
	if len(enriched.SuggestedTags) > 0 {
		details.Tags = append([]string(nil), enriched.SuggestedTags...)
	}
	if enriched.RecommendedDuration > 0 {
		d := enriched.RecommendedDuration
		details.SuggestedDuration = &d
	}
	if enriched.RecommendedCapacity > 0 {
		c := enriched.RecommendedCapacity
		details.SuggestedCapacity = &c
	}

	details.AIGenerated = enriched
}
