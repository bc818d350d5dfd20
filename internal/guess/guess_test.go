package guess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"apple", "apple", 0},
		{"apple", "aple", 1},
		{"apple", "apples", 1},
		{"apple", "ample", 1},
		{"apple", "aplpe", 2},
		{"kitten", "sitting", 3},
		{"", "apple", -1},
		{"apple", "", -1},
		{"", "", -1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Distance(tc.a, tc.b), "distance(%q,%q)", tc.a, tc.b)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"apple", "aple"},
		{"bridge", "fridge"},
		{"kitten", "sitting"},
		{"a", "abcdef"},
		{"Wolke", "Wölke"},
	}
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestDistanceIdentity(t *testing.T) {
	for _, w := range []string{"a", "apple", "château", "Regenschirm"} {
		assert.Equal(t, 0, Distance(w, w), w)
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name      string
		candidate string
		secret    string
		want      Result
	}{
		{"exact match", "apple", "apple", Correct},
		{"case sensitive, one edit off", "Apple", "apple", Close},
		{"single deletion", "aple", "apple", Close},
		{"single insertion", "apples", "apple", Close},
		{"single substitution", "ample", "apple", Close},
		{"two edits", "aplpe", "apple", NoMatch},
		{"unrelated", "zebra", "apple", NoMatch},
		{"empty candidate", "", "apple", NoMatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.candidate, tc.secret))
		})
	}
}
