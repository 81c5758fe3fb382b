package release

import (
	"regexp"
	"sort"

	"github.com/hbollon/go-edlib"
)

var numberRe = regexp.MustCompile(`\b(\d+)\b`)

// MatchConfidence represents the confidence level of a title match.
type MatchConfidence int

const (
	ConfidenceNone   MatchConfidence = iota // Score < 0.70
	ConfidenceLow                           // Score >= 0.70
	ConfidenceMedium                        // Score >= 0.85
	ConfidenceHigh                          // Score >= 0.95
)

func (c MatchConfidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

func confidenceFor(score float64) MatchConfidence {
	switch {
	case score >= 0.95:
		return ConfidenceHigh
	case score >= 0.85:
		return ConfidenceMedium
	case score >= 0.70:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// MatchResult is one scored candidate series title.
type MatchResult struct {
	Index      int // Position in the candidate slice
	Title      string
	Score      float64 // Jaro-Winkler similarity, 0.0-1.0
	Confidence MatchConfidence
}

// MatchTitles scores every candidate against a parsed series title and
// returns those at or above minimum, best first. Ties keep candidate order.
func MatchTitles(parsed string, candidates []string, minimum MatchConfidence) []MatchResult {
	cleaned := CleanTitleWithoutYear(parsed)
	parsedNumbers := numberRe.FindAllString(cleaned, -1)

	var results []MatchResult
	for i, candidate := range candidates {
		c := CleanTitleWithoutYear(candidate)
		score := float64(edlib.JaroWinklerSimilarity(cleaned, c))
		score = adjustScoreForNumbers(score, parsedNumbers, numberRe.FindAllString(c, -1))

		conf := confidenceFor(score)
		if conf == ConfidenceNone || conf < minimum {
			continue
		}
		results = append(results, MatchResult{Index: i, Title: candidate, Score: score, Confidence: conf})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// MatchTitle returns the best scoring candidate, or a zero result with
// ConfidenceNone when nothing scores at least low confidence.
func MatchTitle(parsed string, candidates []string) MatchResult {
	results := MatchTitles(parsed, candidates, ConfidenceLow)
	if len(results) == 0 {
		return MatchResult{Index: -1, Confidence: ConfidenceNone}
	}
	return results[0]
}

// adjustScoreForNumbers rewards a shared number between the two titles
// ("Show 2" vs "Show 2") and penalises a mismatch or a missing number.
func adjustScoreForNumbers(score float64, parsedNums, candidateNums []string) float64 {
	if len(parsedNums) == 0 {
		return score
	}
	if len(candidateNums) == 0 {
		return score * 0.85
	}

	candidateSet := make(map[string]bool, len(candidateNums))
	for _, n := range candidateNums {
		candidateSet[n] = true
	}
	for _, n := range parsedNums {
		if candidateSet[n] {
			return min(score*1.05, 1.0)
		}
	}
	return score * 0.90
}
