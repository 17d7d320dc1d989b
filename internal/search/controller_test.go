package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/pkg/config"
)

type scriptedSearcher struct {
	mu      sync.Mutex
	calls   []string
	block   map[string]chan struct{}
	started map[string]chan struct{}
	empty   map[string]bool
	fail    map[string]bool
}

func newScriptedSearcher() *scriptedSearcher {
	return &scriptedSearcher{
		block:   map[string]chan struct{}{},
		started: map[string]chan struct{}{},
		empty:   map[string]bool{},
		fail:    map[string]bool{},
	}
}

func (s *scriptedSearcher) blockQuery(query string) (started, release chan struct{}) {
	started = make(chan struct{})
	release = make(chan struct{})
	s.mu.Lock()
	s.started[query] = started
	s.block[query] = release
	s.mu.Unlock()
	return started, release
}

func (s *scriptedSearcher) Search(ctx context.Context, query string, tab models.SearchTab) (*dto.SearchResponse, error) {
	s.mu.Lock()
	s.calls = append(s.calls, query)
	startedCh := s.started[query]
	releaseCh := s.block[query]
	s.mu.Unlock()

	if startedCh != nil {
		close(startedCh)
	}
	if releaseCh != nil {
		<-releaseCh
	}

	if s.fail[query] {
		return nil, errors.New("backend down")
	}
	resp := &dto.SearchResponse{Query: query, Tab: tab, Entries: []models.SearchEntry{}}
	if !s.empty[query] {
		resp.Entries = append(resp.Entries, models.SearchEntry{
			Kind: models.SearchKindCourse,
			Data: models.Course{ID: "crs-" + query, Title: query},
		})
	}
	return resp, nil
}

func (s *scriptedSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *scriptedSearcher) callList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type scriptedSuggester struct {
	mu    sync.Mutex
	calls []string
}

func (s *scriptedSuggester) Suggestions(ctx context.Context, query string) (*dto.SuggestionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, query)
	return &dto.SuggestionResponse{Query: query, Suggestions: []string{query + " basics"}}, nil
}

func (s *scriptedSuggester) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type staleCounter struct {
	n uint64
}

func (s *staleCounter) RecordStaleSearchDrop() { atomic.AddUint64(&s.n, 1) }
func (s *staleCounter) count() uint64          { return atomic.LoadUint64(&s.n) }

func fastConfig() config.SearchConfig {
	return config.SearchConfig{SearchDebounce: 10 * time.Millisecond, SuggestionDebounce: 5 * time.Millisecond}
}

func TestControllerDebouncesKeystrokes(t *testing.T) {
	searcher := newScriptedSearcher()
	c := NewController(searcher, nil, nil, fastConfig(), nil)

	c.SetQuery("r")
	c.SetQuery("re")
	c.SetQuery("rea")
	c.SetQuery("react")

	assert.Eventually(t, func() bool {
		return c.Snapshot().State == StateResults
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"react"}, searcher.callList())
	snap := c.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "react", snap.Query)
}

func TestControllerEmptyQueryResetsIdempotently(t *testing.T) {
	searcher := newScriptedSearcher()
	c := NewController(searcher, nil, nil, fastConfig(), nil)

	c.SetQuery("react")
	assert.Eventually(t, func() bool { return c.Snapshot().State == StateResults }, time.Second, 5*time.Millisecond)

	c.SetQuery("")
	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Entries)
	assert.Empty(t, snap.Query)

	// Clearing again changes nothing and dispatches nothing.
	c.SetQuery("")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StateIdle, c.Snapshot().State)
	assert.Equal(t, 1, searcher.callCount())
}

func TestControllerEmptyResultsReachEmptyState(t *testing.T) {
	searcher := newScriptedSearcher()
	searcher.empty["zzz"] = true
	c := NewController(searcher, nil, nil, fastConfig(), nil)

	c.SetQuery("zzz")
	assert.Eventually(t, func() bool { return c.Snapshot().State == StateEmpty }, time.Second, 5*time.Millisecond)
}

func TestControllerErrorState(t *testing.T) {
	searcher := newScriptedSearcher()
	searcher.fail["react"] = true
	c := NewController(searcher, nil, nil, fastConfig(), nil)

	c.SetQuery("react")
	assert.Eventually(t, func() bool { return c.Snapshot().State == StateError }, time.Second, 5*time.Millisecond)
	assert.Error(t, c.Snapshot().Err)
}

func TestControllerTabChangeSearchesImmediately(t *testing.T) {
	searcher := newScriptedSearcher()
	c := NewController(searcher, nil, nil, config.SearchConfig{SearchDebounce: time.Hour, SuggestionDebounce: time.Hour}, nil)

	c.SetQuery("react")
	// Debounce is an hour out; switching tabs must not wait for it.
	c.SetTab(models.SearchTabCourses)

	assert.Eventually(t, func() bool { return c.Snapshot().State == StateResults }, time.Second, 5*time.Millisecond)
	assert.Equal(t, models.SearchTabCourses, c.Snapshot().Tab)
	assert.Equal(t, []string{"react"}, searcher.callList())
}

func TestControllerStaleCompletionDropped(t *testing.T) {
	searcher := newScriptedSearcher()
	started, release := searcher.blockQuery("slow")
	stale := &staleCounter{}
	c := NewController(searcher, nil, stale, fastConfig(), nil)

	c.SetQuery("slow")
	<-started

	c.SetQuery("fast")
	assert.Eventually(t, func() bool {
		snap := c.Snapshot()
		return snap.State == StateResults && snap.Query == "fast"
	}, time.Second, 5*time.Millisecond)

	close(release)

	// The slow completion must not overwrite the newer result.
	assert.Eventually(t, func() bool { return stale.count() == 1 }, time.Second, 5*time.Millisecond)
	snap := c.Snapshot()
	require.Len(t, snap.Entries, 1)
	course, ok := snap.Entries[0].Data.(models.Course)
	require.True(t, ok)
	assert.Equal(t, "fast", course.Title)
}

func TestControllerSuggestionFlow(t *testing.T) {
	searcher := newScriptedSearcher()
	suggester := &scriptedSuggester{}
	c := NewController(searcher, suggester, nil, fastConfig(), nil)

	c.SetQuery("rea")
	assert.Eventually(t, func() bool {
		return len(c.Snapshot().Suggestions) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"rea basics"}, c.Snapshot().Suggestions)
}

func TestControllerSelectSuggestionSkipsDebounceAndSuggestions(t *testing.T) {
	searcher := newScriptedSearcher()
	suggester := &scriptedSuggester{}
	c := NewController(searcher, suggester, nil, config.SearchConfig{SearchDebounce: time.Hour, SuggestionDebounce: time.Hour}, nil)

	c.SelectSuggestion("React Basics")

	snap := c.Snapshot()
	assert.Equal(t, StateResults, snap.State)
	assert.Equal(t, "React Basics", snap.Query)
	assert.Empty(t, snap.Suggestions)
	assert.Zero(t, suggester.callCount())
	assert.Equal(t, []string{"React Basics"}, searcher.callList())
}

func TestControllerKeystrokeAfterSelectSuggestionFetchesSuggestions(t *testing.T) {
	searcher := newScriptedSearcher()
	suggester := &scriptedSuggester{}
	c := NewController(searcher, suggester, nil, fastConfig(), nil)

	c.SelectSuggestion("React Basics")
	assert.Zero(t, suggester.callCount())

	// The user keeps typing; this keystroke is a fresh one and must
	// schedule its own suggestion fetch.
	c.SetQuery("React Basics a")

	assert.Eventually(t, func() bool {
		return suggester.callCount() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		snap := c.Snapshot()
		return snap.State == StateResults && snap.Query == "React Basics a"
	}, time.Second, 5*time.Millisecond)
}
