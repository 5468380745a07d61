package services

import (
	"github.com/oselz/ai-gateway/internal/catalog"
	"github.com/oselz/ai-gateway/pkg/schema"
)

// Scoring constants for the capability/speed heuristic. The selection is a
// pure total order: score descending, then catalog declaration index.
const (
	// Prompts longer than this many characters prefer long-context providers.
	longPromptChars = 10000

	// A provider counts as long-context when its window exceeds this.
	longContextMin = 100000

	longContextBonus = 5.0

	// Applied when the request carries an image the provider cannot read.
	// Large enough to disqualify without removing the candidate.
	visionPenalty = 10.0

	// Cheaper providers score higher, all else equal.
	costPenaltyScale = 100000.0
)

func speedBase(s catalog.Speed) float64 {
	switch s {
	case catalog.Fast:
		return 3
	case catalog.Medium:
		return 2
	default:
		return 1
	}
}

// promptChars is the aggregate length of all message text in the request.
func promptChars(req *schema.ChatRequest) int {
	n := 0
	for _, m := range req.Messages {
		n += m.Content.Chars()
	}
	return n
}

// wantsVision reports whether any message asks for image understanding.
func wantsVision(req *schema.ChatRequest) bool {
	for _, m := range req.Messages {
		if m.Content.HasImage() {
			return true
		}
	}
	return false
}

// scoreProvider rates one candidate for one request.
func scoreProvider(d catalog.Descriptor, chars int, vision bool) float64 {
	score := speedBase(d.Speed)

	if chars > longPromptChars && d.Capabilities.MaxContext > longContextMin {
		score += longContextBonus
	}

	if vision && !d.Capabilities.Vision {
		score -= visionPenalty
	}

	score -= d.CostPerToken * costPenaltyScale

	return score
}

// bestByScore picks the highest-scoring candidate. Candidates must be in
// declaration order; a strict comparison keeps the earliest on ties.
func bestByScore(candidates []catalog.Descriptor, req *schema.ChatRequest) string {
	chars := promptChars(req)
	vision := wantsVision(req)

	best := candidates[0].ID
	bestScore := scoreProvider(candidates[0], chars, vision)

	for _, d := range candidates[1:] {
		if s := scoreProvider(d, chars, vision); s > bestScore {
			best = d.ID
			bestScore = s
		}
	}

	return best
}
