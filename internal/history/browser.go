// Package history drives the past-quizzes screen: one list load plus any
// number of overlapping detail fetches, of which only the newest counts.
package history

import (
	"context"
	"sync"
	"wiki_quiz_client/internal/model"
	"wiki_quiz_client/pkg/logger"
	"wiki_quiz_client/pkg/monitoring"

	"go.uber.org/zap"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "idle"
}

// Fetcher is implemented by service.QuizService.
type Fetcher interface {
	ListHistory(ctx context.Context) ([]model.HistoryRow, error)
	FetchQuizByID(ctx context.Context, id int64) (*model.Quiz, error)
}

type ListState struct {
	Status Status
	Rows   []model.HistoryRow
	Err    error
}

// Empty reports a successfully loaded list with no rows.
func (l ListState) Empty() bool {
	return l.Status == StatusReady && len(l.Rows) == 0
}

type DetailState struct {
	Status Status
	Open   bool
	QuizID int64
	Quiz   *model.Quiz
	Err    error
}

type Snapshot struct {
	List   ListState
	Detail DetailState
}

// Browser is safe for concurrent use. No lock is held while a request is
// in flight.
type Browser struct {
	fetcher Fetcher

	mu           sync.Mutex
	list         ListState
	detail       DetailState
	generation   uint64
	cancelDetail context.CancelFunc
	onChange     func(Snapshot)
}

func NewBrowser(fetcher Fetcher) *Browser {
	return &Browser{fetcher: fetcher}
}

// OnChange registers fn to be called with a fresh snapshot after every
// visible transition. fn runs on the goroutine that caused the transition.
func (b *Browser) OnChange(fn func(Snapshot)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

func (b *Browser) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Browser) snapshotLocked() Snapshot {
	list := b.list
	if list.Rows != nil {
		list.Rows = append([]model.HistoryRow(nil), list.Rows...)
	}
	return Snapshot{List: list, Detail: b.detail}
}

// notify must be called without b.mu held.
func (b *Browser) notify() {
	b.mu.Lock()
	fn := b.onChange
	snap := b.snapshotLocked()
	b.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// Load fetches the history list once. Failures become the Failed state; it
// is not retried.
func (b *Browser) Load(ctx context.Context) ListState {
	b.mu.Lock()
	b.list = ListState{Status: StatusLoading}
	b.mu.Unlock()
	b.notify()

	rows, err := b.fetcher.ListHistory(ctx)

	b.mu.Lock()
	if err != nil {
		logger.Log.Error("Failed to fetch history", zap.Error(err))
		b.list = ListState{Status: StatusFailed, Err: err}
	} else {
		if rows == nil {
			rows = []model.HistoryRow{}
		}
		b.list = ListState{Status: StatusReady, Rows: rows}
	}
	state := b.snapshotLocked().List
	b.mu.Unlock()
	b.notify()
	return state
}

// OpenDetail shows quiz id in the detail viewer. A call supersedes every
// earlier one: the earlier request is cancelled and its outcome, whenever
// it arrives, is dropped. The returned state is the visible one after this
// call settles, which may belong to a newer request.
func (b *Browser) OpenDetail(ctx context.Context, id int64) DetailState {
	ctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	b.generation++
	gen := b.generation
	if b.cancelDetail != nil {
		b.cancelDetail()
	}
	b.cancelDetail = cancel
	b.detail = DetailState{Status: StatusLoading, Open: true, QuizID: id}
	b.mu.Unlock()
	b.notify()

	quiz, err := b.fetcher.FetchQuizByID(ctx, id)

	b.mu.Lock()
	if gen != b.generation {
		state := b.detail
		b.mu.Unlock()
		cancel()
		monitoring.StaleDetailResponses.Inc()
		logger.Log.Debug("Discarding stale quiz detail",
			zap.Int64("quiz_id", id),
			zap.Uint64("generation", gen),
		)
		return state
	}
	b.cancelDetail = nil
	if err != nil {
		logger.Log.Error("Failed to fetch quiz details", zap.Int64("quiz_id", id), zap.Error(err))
		b.detail = DetailState{Status: StatusFailed, Open: true, QuizID: id, Err: err}
	} else {
		b.detail = DetailState{Status: StatusReady, Open: true, QuizID: id, Quiz: quiz}
	}
	state := b.detail
	b.mu.Unlock()
	cancel()
	b.notify()
	return state
}

// Close dismisses the viewer and clears its quiz and error. A response still
// in flight is ignored when it lands.
func (b *Browser) Close() {
	b.mu.Lock()
	b.generation++
	if b.cancelDetail != nil {
		b.cancelDetail()
		b.cancelDetail = nil
	}
	b.detail = DetailState{}
	b.mu.Unlock()
	b.notify()
}
