package words

import (
	"embed"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// placeholderWords backs a turn when the requested language has no list and
// the room carries no custom words.
var placeholderWords = []string{"house", "apple", "bridge"}

type wordFile struct {
	Words []string `yaml:"words"`
}

// Bank holds the per-language word lists loaded from the embedded data files.
type Bank struct {
	mu    sync.Mutex
	lists map[string][]string
	rng   *rand.Rand
}

func NewBank() (*Bank, error) {
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("read word data: %w", err)
	}

	lists := make(map[string][]string, len(entries))
	for _, e := range entries {
		raw, err := dataFS.ReadFile(path.Join("data", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var wf wordFile
		if err := yaml.Unmarshal(raw, &wf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		lang := strings.ToLower(strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
		lists[lang] = wf.Words
	}

	return &Bank{
		lists: lists,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Languages returns the names of all embedded word lists.
func (b *Bank) Languages() []string {
	out := make([]string, 0, len(b.lists))
	for lang := range b.lists {
		out = append(out, lang)
	}
	return out
}

// Pick returns n distinct candidate words for a turn. Custom words are mixed
// into the language pool, or replace it entirely when customOnly is set. An
// empty pool falls back to a fixed placeholder list instead of failing the
// turn.
func (b *Bank) Pick(language string, n int, custom []string, customOnly bool) []string {
	if n <= 0 {
		n = 1
	}

	pool := b.pool(language, custom, customOnly)
	if len(pool) == 0 {
		pool = placeholderWords
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	picked := make([]string, 0, n)
	seen := make(map[string]bool, n)
	// Pool may hold fewer distinct words than requested; duplicates of an
	// exhausted pool are allowed rather than spinning forever.
	for attempts := 0; len(picked) < n; attempts++ {
		w := pool[b.rng.Intn(len(pool))]
		if !seen[w] {
			seen[w] = true
			picked = append(picked, w)
			continue
		}
		if attempts > 10*len(pool) {
			picked = append(picked, w)
		}
	}
	return picked
}

func (b *Bank) pool(language string, custom []string, customOnly bool) []string {
	if customOnly && len(custom) > 0 {
		return custom
	}
	base := b.lists[strings.ToLower(language)]
	if len(custom) == 0 {
		return base
	}
	pool := make([]string, 0, len(base)+len(custom))
	pool = append(pool, base...)
	pool = append(pool, custom...)
	return pool
}
