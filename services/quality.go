package services

import (
	"strings"
	"unicode/utf16"
)

var (
	creativityWords = []string{"like", "than", "so", "if", "when", "because", "would", "could"}
	humorWords      = []string{"lol", "haha", "😂", "🤣", "💀", "dead", "dying", "killed"}
	burnWords       = []string{"burn", "fire", "savage", "destroyed", "murdered", "obliterated"}
)

const (
	baseQuality     = 3
	maxQuality      = 10
	maxCreativeHits = 3
)

// AssessRoastQuality scores a roast from 1 to 10 with a keyword heuristic.
// Matching is plain substring matching on the lower-cased text, so "so"
// also hits inside "also". Any input is accepted; empty text scores the base.
func AssessRoastQuality(roast string) int {
	text := strings.ToLower(roast)
	score := baseQuality

	// Length in UTF-16 units, so an emoji counts as two.
	length := len(utf16.Encode([]rune(text)))
	if length > 100 {
		score += 2
	} else if length > 50 {
		score++
	}

	creative := 0
	for _, word := range creativityWords {
		if strings.Contains(text, word) {
			creative++
		}
	}
	score += min(creative, maxCreativeHits)

	if containsAny(text, humorWords) {
		score++
	}
	if containsAny(text, burnWords) {
		score++
	}

	return min(score, maxQuality)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// QualityTier buckets a quality score for reaction pools
type QualityTier string

const (
	TierLow    QualityTier = "low"
	TierMedium QualityTier = "medium"
	TierHigh   QualityTier = "high"
)

// TierFor maps a quality score to its tier: <4 low, 4-6 medium, >=7 high.
func TierFor(quality int) QualityTier {
	switch {
	case quality >= 7:
		return TierHigh
	case quality >= 4:
		return TierMedium
	default:
		return TierLow
	}
}

// QualityLabel is the word shown next to a quality score
func QualityLabel(quality int) string {
	switch {
	case quality >= 9:
		return "Legendary"
	case quality >= 8:
		return "Epic"
	case quality >= 7:
		return "Great"
	case quality >= 6:
		return "Good"
	case quality >= 5:
		return "Decent"
	case quality >= 4:
		return "Weak"
	default:
		return "Terrible"
	}
}
