package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"wiki_quiz_client/internal/httpclient"
	"wiki_quiz_client/internal/model"
	"wiki_quiz_client/internal/util"
)

// Requester is the subset of httpclient.Client the service needs.
type Requester interface {
	Request(ctx context.Context, method, endpoint string, body any, opts ...httpclient.RequestOption) (json.RawMessage, error)
}

// QuizService is the only sanctioned way to reach the backend. It never
// retries, caches or deduplicates; every call hits the network once.
type QuizService struct {
	Client Requester
}

func NewQuizService(client Requester) *QuizService {
	return &QuizService{Client: client}
}

// GenerateQuiz asks the backend to build (or return its stored) quiz for
// url. force regenerates even when a stored quiz exists.
func (s *QuizService) GenerateQuiz(ctx context.Context, url string, force bool) (*model.Quiz, error) {
	payload, err := s.Client.Request(ctx, http.MethodPost, util.EndpointGenerateQuiz,
		model.GenerateRequest{URL: url, Force: force},
		httpclient.WithRoute(util.EndpointGenerateQuiz))
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{}
	if err := decode(payload, quiz); err != nil {
		return nil, fmt.Errorf("decode generated quiz: %w", err)
	}
	return quiz, nil
}

// ListHistory returns past quizzes in backend order.
func (s *QuizService) ListHistory(ctx context.Context) ([]model.HistoryRow, error) {
	payload, err := s.Client.Request(ctx, http.MethodGet, util.EndpointHistory, nil,
		httpclient.WithRoute(util.EndpointHistory))
	if err != nil {
		return nil, err
	}

	rows := []model.HistoryRow{}
	if err := decode(payload, &rows); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if rows == nil {
		rows = []model.HistoryRow{}
	}
	return rows, nil
}

func (s *QuizService) FetchQuizByID(ctx context.Context, id int64) (*model.Quiz, error) {
	endpoint := util.EndpointQuiz + strconv.FormatInt(id, 10)
	payload, err := s.Client.Request(ctx, http.MethodGet, endpoint, nil,
		httpclient.WithRoute(util.EndpointQuiz+"{id}"))
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{}
	if err := decode(payload, quiz); err != nil {
		return nil, fmt.Errorf("decode quiz %d: %w", id, err)
	}
	return quiz, nil
}

// SubmitQuiz lets the backend grade an attempt.
func (s *QuizService) SubmitQuiz(ctx context.Context, quizID int64, answers model.Attempt) (*model.SubmitResult, error) {
	if answers == nil {
		answers = model.Attempt{}
	}
	payload, err := s.Client.Request(ctx, http.MethodPost, util.EndpointSubmitQuiz,
		model.SubmitRequest{QuizID: quizID, Answers: answers},
		httpclient.WithRoute(util.EndpointSubmitQuiz))
	if err != nil {
		return nil, err
	}

	result := &model.SubmitResult{}
	if err := decode(payload, result); err != nil {
		return nil, fmt.Errorf("decode submit result: %w", err)
	}
	return result, nil
}

// Health reports whether the backend answers its health probe.
func (s *QuizService) Health(ctx context.Context) error {
	payload, err := s.Client.Request(ctx, http.MethodGet, util.EndpointHealth, nil,
		httpclient.WithRoute(util.EndpointHealth))
	if err != nil {
		return err
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decode(payload, &body); err != nil {
		return fmt.Errorf("decode health: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("backend unhealthy: status %q", body.Status)
	}
	return nil
}

// decode leaves out untouched for an empty payload.
func decode(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}
