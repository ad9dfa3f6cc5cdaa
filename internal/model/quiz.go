package model

import (
	"errors"
	"fmt"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuizQuestion 单道选择题，Answer 必须是 Options 中的一项
type QuizQuestion struct {
	Question    string     `json:"question"`
	Options     []string   `json:"options"`
	Answer      string     `json:"answer"`
	Explanation string     `json:"explanation"`
	Difficulty  Difficulty `json:"difficulty"`
}

var (
	ErrTooFewOptions     = errors.New("question needs at least two options")
	ErrDuplicateOption   = errors.New("duplicate option")
	ErrAnswerNotInOption = errors.New("answer is not one of the options")
	ErrBadDifficulty     = errors.New("unknown difficulty")
)

// Validate checks the question invariants. The client never rejects a
// backend payload with it; callers use it to log suspicious data.
func (q QuizQuestion) Validate() error {
	if len(q.Options) < 2 {
		return ErrTooFewOptions
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateOption, opt)
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[q.Answer]; !ok {
		return fmt.Errorf("%w: %q", ErrAnswerNotInOption, q.Answer)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrBadDifficulty, q.Difficulty)
	}
	return nil
}

type KeyEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// Quiz 后端生成的测验快照，客户端只读
type Quiz struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	URL           string         `json:"url"`
	Summary       string         `json:"summary"`
	KeyEntities   KeyEntities    `json:"key_entities"`
	Sections      []string       `json:"sections"`
	Questions     []QuizQuestion `json:"quiz"`
	RelatedTopics []string       `json:"related_topics"`
	DateGenerated Timestamp      `json:"date_generated"`
}

// Validate returns the first invalid question, tagged with its index.
func (q *Quiz) Validate() error {
	for i, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// HistoryRow 历史列表中的一行，顺序以后端返回为准
type HistoryRow struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	DateGenerated Timestamp `json:"date_generated"`
}
