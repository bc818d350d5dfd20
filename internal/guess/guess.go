package guess

// Result classifies a chat message against the current secret word.
type Result int

const (
	NoMatch Result = iota
	Close
	Correct
)

func (r Result) String() string {
	switch r {
	case Correct:
		return "correct"
	case Close:
		return "close"
	default:
		return "no_match"
	}
}

// Distance returns the Levenshtein distance between a and b, or -1 when
// either string is empty. The sentinel keeps empty chat lines from ever
// matching a short secret word.
func Distance(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return -1
	}

	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// Evaluate compares a candidate guess against the secret word.
// Matching is case-sensitive; a distance of exactly one counts as close.
func Evaluate(candidate, secret string) Result {
	if candidate == secret {
		return Correct
	}
	if Distance(candidate, secret) == 1 {
		return Close
	}
	return NoMatch
}
