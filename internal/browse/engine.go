package browse

import (
	"hash/fnv"
	"strings"
	"sync"

	"telyourstory/internal/story/model"
	"telyourstory/pkg/logger"
)

// State of the engine. Failed keeps any previously loaded list; the caller
// retries by invoking Load again, the engine never retries itself.
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateFailed
)

// Lister is the one network-touching dependency of the engine.
type Lister interface {
	ListByCreatedDesc() ([]model.Story, error)
}

// Summary is a story as the browse grid renders it: the record plus a
// cosmetic display accent.
type Summary struct {
	model.Story
	Accent string `json:"accent"`
}

// The card background palette from the explore grid.
var accentPalette = []string{
	"from-emerald-500/20 to-teal-500/20",
	"from-blue-500/20 to-indigo-500/20",
	"from-amber-500/20 to-orange-500/20",
	"from-rose-500/20 to-pink-500/20",
	"from-indigo-500/20 to-violet-500/20",
	"from-sky-500/20 to-cyan-500/20",
}

// AccentFor picks a palette entry by hashing the story id, so a story keeps
// the same accent across loads.
func AccentFor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return accentPalette[h.Sum32()%uint32(len(accentPalette))]
}

// Engine holds the full ordered story list in memory and serves filtered
// projections without touching the store again.
type Engine struct {
	Lister Lister

	mu      sync.Mutex
	state   State
	stories []Summary
	lastErr error
}

func NewEngine(l Lister) *Engine {
	return &Engine{Lister: l}
}

// Load fetches all summaries, newest first, and moves the engine to Loaded
// or Failed. On failure any previously loaded list is left untouched.
func (e *Engine) Load() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLocked()
}

func (e *Engine) loadLocked() error {
	list, err := e.Lister.ListByCreatedDesc()
	if err != nil {
		logger.Sugar.Errorf("Failed to load stories: %v", err)
		e.state = StateFailed
		e.lastErr = err
		return err
	}

	summaries := make([]Summary, 0, len(list))
	for _, s := range list {
		summaries = append(summaries, Summary{Story: s, Accent: AccentFor(s.ID)})
	}
	e.state = StateLoaded
	e.stories = summaries
	e.lastErr = nil
	return nil
}

// Ensure returns the loaded list, loading it first if the engine is still
// Empty, Invalidated, or a previous Load Failed. The lock is held across
// the load, so concurrent first requests produce exactly one store query.
func (e *Engine) Ensure() ([]Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateLoaded {
		return e.stories, nil
	}
	if err := e.loadLocked(); err != nil {
		return nil, err
	}
	return e.stories, nil
}

// Invalidate marks the cached list stale so the next Ensure reloads it.
// Called after every successful publish; the stale list stays around as a
// fallback the same way a Failed reload keeps it.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateLoaded {
		e.state = StateEmpty
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Stories() []Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stories
}

// Filter is a pure projection of the list: category is an exact match
// unless it is the "All" sentinel (or empty), and the query is a
// case-insensitive substring match on title OR author, with the empty query
// matching everything. Both predicates must hold. Input order is preserved.
func Filter(list []Summary, category, query string) []Summary {
	q := strings.ToLower(query)
	filtered := make([]Summary, 0, len(list))
	for _, s := range list {
		matchesCategory := category == "" || category == model.CategoryAll || category == s.Category.String()
		matchesSearch := strings.Contains(strings.ToLower(s.Title), q) ||
			strings.Contains(strings.ToLower(s.Author), q)
		if matchesCategory && matchesSearch {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
