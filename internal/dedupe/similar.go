package dedupe

import "strconv"

// Near-duplicate thresholds. Real comments are long enough that 0.90 only
// admits trivial edits; the author+rating fallback string is short and
// low-entropy, so a 0.80 bar already signals a strong match there.
const (
	commentThreshold  = 0.90
	fallbackThreshold = 0.80
)

// NearDuplicate reports whether a and b look like the same review despite a
// non-identical fingerprint (minor edits, re-punctuation). Cross-platform
// pairs are never flagged: the same review posted to two platforms is not a
// duplicate in this model. The check is advisory; callers record the match
// for human review rather than dropping data.
func NearDuplicate(a, b Record) bool {
	pa := Normalize(a.Platform)
	if pa == "" {
		pa = Normalize(sentinelPlatform)
	}
	pb := Normalize(b.Platform)
	if pb == "" {
		pb = Normalize(sentinelPlatform)
	}
	if pa != pb {
		return false
	}

	ca, cb := Normalize(a.Comment), Normalize(b.Comment)
	threshold := commentThreshold
	if ca == "" && cb == "" {
		ca, cb = fallbackString(a), fallbackString(b)
		threshold = fallbackThreshold
	} else {
		if ca == "" {
			ca = fallbackString(a)
		}
		if cb == "" {
			cb = fallbackString(b)
		}
	}
	return Similarity(ca, cb) >= threshold
}

func fallbackString(r Record) string {
	author := Normalize(r.Author)
	if author == "" {
		author = Normalize(sentinelAuthor)
	}
	return author + " " + strconv.Itoa(r.Rating)
}

// Similarity is a rune-level Levenshtein ratio in [0,1]: identical strings
// score 1, disjoint strings tend toward 0. Two empty strings score 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance with the classic two-row DP.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
