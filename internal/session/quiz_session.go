// Package session holds the in-memory state of one quiz attempt.
package session

import (
	"math/rand"
	"strconv"
	"sync"
	"time"
	"wiki_quiz_client/internal/model"
	"wiki_quiz_client/internal/util"
	"wiki_quiz_client/pkg/monitoring"
)

type Mode int

const (
	ModeTake Mode = iota
	ModeReview
)

func (m Mode) String() string {
	if m == ModeReview {
		return "review"
	}
	return "take"
}

// OptionView is one option as the presentation layer should draw it.
type OptionView struct {
	Text       string
	Selected   bool
	Correct    bool // review mode only
	YourAnswer bool // review mode only, never together with Correct
}

// Session is the take/review state machine for a single quiz:
//
//	Unloaded -> Loaded(take) -> Submitted(review) -> Loaded(take) via Reset
//	Unloaded -> Loaded(review) via LoadReadOnly
//
// Option order is shuffled once per Load and kept for the lifetime of the
// load, including across Reset.
type Session struct {
	mu sync.Mutex

	rng *rand.Rand

	quiz      *model.Quiz
	order     [][]string
	answers   map[int]string
	submitted bool
	readOnly  bool
}

type Option func(*Session)

// WithRand fixes the shuffle source, for reproducible tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		s.rng = r
	}
}

func New(opts ...Option) *Session {
	s := &Session{
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		answers: map[int]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load starts a fresh attempt in take mode.
func (s *Session) Load(quiz *model.Quiz) {
	s.load(quiz, false)
	monitoring.SessionEvents.WithLabelValues("load").Inc()
}

// LoadReadOnly opens quiz in review mode; it never accepts answers.
func (s *Session) LoadReadOnly(quiz *model.Quiz) {
	s.load(quiz, true)
	monitoring.SessionEvents.WithLabelValues("load_read_only").Inc()
}

func (s *Session) load(quiz *model.Quiz, readOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quiz = quiz
	s.readOnly = readOnly
	s.submitted = false
	s.answers = map[int]string{}
	s.order = nil
	if quiz == nil {
		return
	}
	s.order = make([][]string, len(quiz.Questions))
	for i, q := range quiz.Questions {
		s.order[i] = shuffle(s.rng, q.Options)
	}
}

// shuffle returns a Fisher-Yates permutation of a copy of options.
func shuffle(r *rand.Rand, options []string) []string {
	out := make([]string, len(options))
	copy(out, options)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SelectAnswer records option for question i, replacing any earlier choice.
// option is expected to be one of the question's options; that is not
// checked. After Submit the session is frozen and the call is rejected.
func (s *Session) SelectAnswer(i int, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.quiz == nil:
		return util.ErrQuizNotLoaded
	case s.readOnly:
		return util.ErrReadOnlySession
	case s.submitted:
		return util.ErrSessionSubmitted
	case i < 0 || i >= len(s.quiz.Questions):
		return util.ErrQuestionOutOfRange
	}
	s.answers[i] = option
	return nil
}

// Submit freezes the answers until Reset.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.quiz == nil:
		return util.ErrQuizNotLoaded
	case s.readOnly:
		return util.ErrReadOnlySession
	case s.submitted:
		return util.ErrSessionSubmitted
	}
	s.submitted = true
	monitoring.SessionEvents.WithLabelValues("submit").Inc()
	return nil
}

// Reset clears answers for a retake. The quiz and its option order are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = map[int]string{}
	s.submitted = false
	monitoring.SessionEvents.WithLabelValues("reset").Inc()
}

// Score counts questions whose recorded answer equals the canonical one.
// It can be called at any time but is only shown after Submit.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz == nil {
		return 0
	}
	score := 0
	for i, q := range s.quiz.Questions {
		if ans, ok := s.answers[i]; ok && ans == q.Answer {
			score++
		}
	}
	return score
}

func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil {
		return 0
	}
	return len(s.quiz.Questions)
}

func (s *Session) Answered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz != nil
}

func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

func (s *Session) Quiz() *model.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode()
}

func (s *Session) mode() Mode {
	if s.readOnly || s.submitted {
		return ModeReview
	}
	return ModeTake
}

// Answer returns the recorded answer for question i.
func (s *Session) Answer(i int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ans, ok := s.answers[i]
	return ans, ok
}

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Attempt renders the answers in the shape the backend grades.
func (s *Session) Attempt() model.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(model.Attempt, len(s.answers))
	for k, v := range s.answers {
		out[strconv.Itoa(k)] = v
	}
	return out
}

// Options returns the cached presentation order of question i.
func (s *Session) Options(i int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz == nil {
		return nil, util.ErrQuizNotLoaded
	}
	if i < 0 || i >= len(s.order) {
		return nil, util.ErrQuestionOutOfRange
	}
	out := make([]string, len(s.order[i]))
	copy(out, s.order[i])
	return out, nil
}

// Review annotates question i's options in presentation order. Correct and
// YourAnswer are only set in review mode; an option that is both the
// canonical answer and the user's choice is marked Correct only.
func (s *Session) Review(i int) ([]OptionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz == nil {
		return nil, util.ErrQuizNotLoaded
	}
	if i < 0 || i >= len(s.order) {
		return nil, util.ErrQuestionOutOfRange
	}

	review := s.mode() == ModeReview
	answer := s.quiz.Questions[i].Answer
	chosen, answered := s.answers[i]

	views := make([]OptionView, len(s.order[i]))
	for k, opt := range s.order[i] {
		v := OptionView{Text: opt, Selected: answered && chosen == opt}
		if review {
			v.Correct = opt == answer
			v.YourAnswer = v.Selected && !v.Correct
		}
		views[k] = v
	}
	return views, nil
}
