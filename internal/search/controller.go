package search

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/pkg/config"
)

// State enumerates the phases of the interactive search screen.
type State string

const (
	StateIdle    State = "idle"
	StateTyping  State = "typing"
	StateLoading State = "loading"
	StateResults State = "results"
	StateEmpty   State = "empty"
	StateError   State = "error"
)

// Searcher runs a full search for a query and tab.
type Searcher interface {
	Search(ctx context.Context, query string, tab models.SearchTab) (*dto.SearchResponse, error)
}

// Suggester fetches autocomplete strings for a query prefix.
type Suggester interface {
	Suggestions(ctx context.Context, query string) (*dto.SuggestionResponse, error)
}

// StaleRecorder counts completions discarded as superseded.
type StaleRecorder interface {
	RecordStaleSearchDrop()
}

// Snapshot is an immutable view of the controller state.
type Snapshot struct {
	State       State
	Query       string
	Tab         models.SearchTab
	Entries     []models.SearchEntry
	Suggestions []string
	Err         error
}

// Controller coordinates keystrokes, debounced dispatch and result delivery.
// Each dispatched search carries a sequence number; completions whose
// sequence is no longer the latest are discarded, so a slow older response
// can never overwrite a newer one.
type Controller struct {
	searcher  Searcher
	suggester Suggester
	stale     StaleRecorder
	logger    *zap.Logger

	searchDebounce  *Debouncer
	suggestDebounce *Debouncer

	mu          sync.Mutex
	seq         uint64
	state       State
	query       string
	tab         models.SearchTab
	entries     []models.SearchEntry
	suggestions []string
	err         error
}

// NewController builds a controller around the given search backend.
func NewController(searcher Searcher, suggester Suggester, stale StaleRecorder, cfg config.SearchConfig, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		searcher:  searcher,
		suggester: suggester,
		stale:     stale,
		logger:    logger,
		state:     StateIdle,
		tab:       models.SearchTabAll,
	}
	c.searchDebounce = NewDebouncer(cfg.SearchDebounce, func(query string) {
		c.dispatch(query, c.currentTab())
	})
	c.suggestDebounce = NewDebouncer(cfg.SuggestionDebounce, func(query string) {
		c.fetchSuggestions(query)
	})
	return c
}

// SetQuery records a keystroke. Clearing the query resets to idle and
// cancels all pending work; clearing twice is a no-op.
func (c *Controller) SetQuery(query string) {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	if query == "" {
		c.searchDebounce.Cancel()
		c.suggestDebounce.Cancel()
		c.seq++ // orphan any in-flight completion
		c.query = ""
		c.state = StateIdle
		c.entries = nil
		c.suggestions = nil
		c.err = nil
		c.mu.Unlock()
		return
	}

	c.query = query
	c.state = StateTyping
	c.mu.Unlock()

	c.searchDebounce.Trigger(query)
	c.suggestDebounce.Trigger(query)
}

// SetTab switches the active tab. With a query present the search re-runs
// immediately; tab changes never debounce.
func (c *Controller) SetTab(tab models.SearchTab) {
	if !models.ValidSearchTab(tab) {
		return
	}
	c.mu.Lock()
	c.tab = tab
	query := c.query
	c.mu.Unlock()

	if query != "" {
		c.searchDebounce.Cancel()
		c.dispatch(query, tab)
	}
}

// SelectSuggestion accepts an autocomplete entry: the query is replaced, the
// search fires immediately, and no new suggestion fetch is scheduled.
func (c *Controller) SelectSuggestion(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	c.mu.Lock()
	c.query = value
	c.suggestions = nil
	tab := c.tab
	c.mu.Unlock()

	c.searchDebounce.Cancel()
	c.suggestDebounce.Cancel()
	c.dispatch(value, tab)
}

// Snapshot returns the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:       c.state,
		Query:       c.query,
		Tab:         c.tab,
		Entries:     c.entries,
		Suggestions: c.suggestions,
		Err:         c.err,
	}
}

func (c *Controller) currentTab() models.SearchTab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab
}

func (c *Controller) dispatch(query string, tab models.SearchTab) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state = StateLoading
	c.mu.Unlock()

	resp, err := c.searcher.Search(context.Background(), query, tab)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		if c.stale != nil {
			c.stale.RecordStaleSearchDrop()
		}
		c.logger.Debug("stale search completion dropped", zap.String("query", query), zap.Uint64("seq", seq))
		return
	}
	if err != nil {
		c.state = StateError
		c.err = err
		c.entries = nil
		return
	}
	c.err = nil
	c.entries = resp.Entries
	if len(resp.Entries) == 0 {
		c.state = StateEmpty
	} else {
		c.state = StateResults
	}
}

func (c *Controller) fetchSuggestions(query string) {
	if c.suggester == nil {
		return
	}
	resp, err := c.suggester.Suggestions(context.Background(), query)
	if err != nil {
		c.logger.Debug("suggestion fetch failed", zap.String("query", query), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Ignore suggestions for a query the user already moved past.
	if c.query != query {
		return
	}
	c.suggestions = resp.Suggestions
}
