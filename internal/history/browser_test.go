package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"wiki_quiz_client/internal/httpclient"
	"wiki_quiz_client/internal/model"
)

type detailResult struct {
	quiz *model.Quiz
	err  error
}

// gatedFetcher holds every detail request until the test releases it, so
// responses can be delivered in any order.
type gatedFetcher struct {
	rows    []model.HistoryRow
	listErr error

	mu      sync.Mutex
	gates   map[int64]chan detailResult
	ctxs    map[int64]context.Context
	started chan int64
}

func newGatedFetcher(rows []model.HistoryRow) *gatedFetcher {
	return &gatedFetcher{
		rows:    rows,
		gates:   map[int64]chan detailResult{},
		ctxs:    map[int64]context.Context{},
		started: make(chan int64, 16),
	}
}

func (f *gatedFetcher) gate(id int64) chan detailResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gates[id]
	if !ok {
		g = make(chan detailResult, 1)
		f.gates[id] = g
	}
	return g
}

func (f *gatedFetcher) ctxFor(id int64) context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ctxs[id]
}

func (f *gatedFetcher) ListHistory(ctx context.Context) ([]model.HistoryRow, error) {
	return f.rows, f.listErr
}

func (f *gatedFetcher) FetchQuizByID(ctx context.Context, id int64) (*model.Quiz, error) {
	f.mu.Lock()
	f.ctxs[id] = ctx
	f.mu.Unlock()
	f.started <- id
	r := <-f.gate(id)
	return r.quiz, r.err
}

func (f *gatedFetcher) release(id int64, r detailResult) {
	f.gate(id) <- r
}

func rowsOf(ids ...int64) []model.HistoryRow {
	rows := make([]model.HistoryRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.HistoryRow{ID: id, Title: "quiz", URL: "https://en.wikipedia.org/wiki/X"})
	}
	return rows
}

func waitStarted(t *testing.T, f *gatedFetcher, want int64) {
	t.Helper()
	select {
	case id := <-f.started:
		if id != want {
			t.Fatalf("started %d, want %d", id, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("request %d never started", want)
	}
}

func openAsync(b *Browser, id int64) <-chan DetailState {
	done := make(chan DetailState, 1)
	go func() {
		done <- b.OpenDetail(context.Background(), id)
	}()
	return done
}

func wait(t *testing.T, ch <-chan DetailState) DetailState {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("OpenDetail did not return")
	}
	return DetailState{}
}

func TestLoadList(t *testing.T) {
	f := newGatedFetcher(rowsOf(3, 2, 1))
	b := NewBrowser(f)

	var seen []Status
	b.OnChange(func(s Snapshot) { seen = append(seen, s.List.Status) })

	state := b.Load(context.Background())
	if state.Status != StatusReady || len(state.Rows) != 3 || state.Err != nil {
		t.Fatalf("state = %+v", state)
	}
	if state.Rows[0].ID != 3 || state.Rows[2].ID != 1 {
		t.Error("rows must keep backend order")
	}
	if len(seen) != 2 || seen[0] != StatusLoading || seen[1] != StatusReady {
		t.Errorf("transitions = %v", seen)
	}
}

func TestLoadEmptyListIsNotAnError(t *testing.T) {
	b := NewBrowser(newGatedFetcher(nil))
	state := b.Load(context.Background())
	if !state.Empty() || state.Err != nil || state.Status != StatusReady {
		t.Errorf("state = %+v, want explicit empty state", state)
	}
}

func TestLoadListFailure(t *testing.T) {
	f := newGatedFetcher(nil)
	f.listErr = &httpclient.Error{Kind: httpclient.KindHTTP, Status: 500, Message: "Internal Server Error"}
	b := NewBrowser(f)

	state := b.Load(context.Background())
	if state.Status != StatusFailed || state.Err == nil || state.Err.Error() != "Internal Server Error" {
		t.Errorf("state = %+v", state)
	}
	if state.Empty() {
		t.Error("a failed list is not an empty one")
	}
	if d := b.Snapshot().Detail; d.Status != StatusIdle || d.Open {
		t.Errorf("list failure touched detail: %+v", d)
	}
}

func TestDetailFailureKeepsList(t *testing.T) {
	f := newGatedFetcher(rowsOf(1, 2))
	b := NewBrowser(f)
	b.Load(context.Background())

	done := openAsync(b, 999)
	waitStarted(t, f, 999)
	if d := b.Snapshot().Detail; d.Status != StatusLoading || !d.Open || d.QuizID != 999 {
		t.Errorf("while loading: %+v", d)
	}
	f.release(999, detailResult{err: &httpclient.Error{Kind: httpclient.KindHTTP, Status: 404, Message: "not found"}})
	d := wait(t, done)

	if d.Status != StatusFailed || d.Err == nil || d.Err.Error() != "not found" || !d.Open {
		t.Errorf("detail = %+v", d)
	}
	snap := b.Snapshot()
	if snap.List.Status != StatusReady || len(snap.List.Rows) != 2 || snap.List.Err != nil {
		t.Errorf("list disturbed by detail error: %+v", snap.List)
	}
}

func TestLastRequestWinsWhenOlderArrivesLast(t *testing.T) {
	f := newGatedFetcher(rowsOf(3, 7))
	b := NewBrowser(f)
	b.Load(context.Background())

	doneA := openAsync(b, 3)
	waitStarted(t, f, 3)
	doneB := openAsync(b, 7)
	waitStarted(t, f, 7)

	f.release(7, detailResult{quiz: &model.Quiz{ID: 7, Title: "seven"}})
	if d := wait(t, doneB); d.Status != StatusReady || d.Quiz.ID != 7 {
		t.Fatalf("after B: %+v", d)
	}

	f.release(3, detailResult{quiz: &model.Quiz{ID: 3, Title: "three"}})
	wait(t, doneA)

	d := b.Snapshot().Detail
	if d.Status != StatusReady || d.QuizID != 7 || d.Quiz == nil || d.Quiz.ID != 7 {
		t.Errorf("final detail = %+v, want quiz 7", d)
	}
}

func TestLastRequestWinsWhenOlderArrivesFirst(t *testing.T) {
	f := newGatedFetcher(nil)
	b := NewBrowser(f)

	doneA := openAsync(b, 1)
	waitStarted(t, f, 1)
	doneB := openAsync(b, 2)
	waitStarted(t, f, 2)

	f.release(1, detailResult{err: errors.New("boom")})
	wait(t, doneA)
	if d := b.Snapshot().Detail; d.Status != StatusLoading || d.QuizID != 2 || d.Err != nil {
		t.Fatalf("stale A leaked into visible state: %+v", d)
	}

	f.release(2, detailResult{quiz: &model.Quiz{ID: 2}})
	if d := wait(t, doneB); d.Status != StatusReady || d.Quiz.ID != 2 {
		t.Errorf("final detail = %+v", d)
	}
}

func TestSupersededRequestIsCancelled(t *testing.T) {
	f := newGatedFetcher(nil)
	b := NewBrowser(f)

	doneA := openAsync(b, 1)
	waitStarted(t, f, 1)
	doneB := openAsync(b, 2)
	waitStarted(t, f, 2)

	if err := f.ctxFor(1).Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("superseded context err = %v", err)
	}
	if err := f.ctxFor(2).Err(); err != nil {
		t.Errorf("current context err = %v", err)
	}

	f.release(1, detailResult{err: context.Canceled})
	f.release(2, detailResult{quiz: &model.Quiz{ID: 2}})
	wait(t, doneA)
	wait(t, doneB)
}

func TestCloseIgnoresLateResponse(t *testing.T) {
	f := newGatedFetcher(rowsOf(5))
	b := NewBrowser(f)
	b.Load(context.Background())

	done := openAsync(b, 5)
	waitStarted(t, f, 5)
	b.Close()

	f.release(5, detailResult{quiz: &model.Quiz{ID: 5}})
	wait(t, done)

	d := b.Snapshot().Detail
	if d.Open || d.Status != StatusIdle || d.Quiz != nil || d.Err != nil {
		t.Errorf("closed viewer changed by late response: %+v", d)
	}
}

func TestCloseClearsQuizAndError(t *testing.T) {
	f := newGatedFetcher(nil)
	b := NewBrowser(f)

	done := openAsync(b, 9)
	waitStarted(t, f, 9)
	f.release(9, detailResult{err: errors.New("nope")})
	wait(t, done)

	b.Close()
	if d := b.Snapshot().Detail; d != (DetailState{}) {
		t.Errorf("detail after close = %+v", d)
	}

	// reopening after close works normally
	done = openAsync(b, 9)
	waitStarted(t, f, 9)
	f.release(9, detailResult{quiz: &model.Quiz{ID: 9}})
	if d := wait(t, done); d.Status != StatusReady || d.Quiz.ID != 9 {
		t.Errorf("reopen = %+v", d)
	}
}
