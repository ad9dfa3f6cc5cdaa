package service

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
	"wiki_quiz_client/internal/config"
	"wiki_quiz_client/internal/httpclient"
	"wiki_quiz_client/internal/model"

	"github.com/gin-gonic/gin"
)

// fakeBackend mimics the quiz backend routes with in-memory quizzes.
type fakeBackend struct {
	mu        sync.Mutex
	quizzes   map[int64]*model.Quiz
	byURL     map[string]int64
	nextID    int64
	generated int
	lastForce bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		quizzes: map[int64]*model.Quiz{},
		byURL:   map[string]int64{},
		nextID:  1,
	}
}

func sampleQuiz(url string, n int) *model.Quiz {
	q := &model.Quiz{
		Title:         "India",
		URL:           url,
		Summary:       "India is a country in South Asia.",
		Sections:      []string{"History", "Geography"},
		RelatedTopics: []string{"Delhi", "Mumbai", "Ganges"},
	}
	for i := 0; i < n; i++ {
		q.Questions = append(q.Questions, model.QuizQuestion{
			Question:    fmt.Sprintf("Question %d?", i+1),
			Options:     []string{fmt.Sprintf("right %d", i), "wrong a", "wrong b", "wrong c"},
			Answer:      fmt.Sprintf("right %d", i),
			Explanation: "because",
			Difficulty:  model.DifficultyMedium,
		})
	}
	return q
}

func (b *fakeBackend) stats() (generated int, lastForce bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generated, b.lastForce
}

func (b *fakeBackend) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/generate_quiz", func(c *gin.Context) {
		var req model.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "invalid body"}}})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.lastForce = req.Force
		if id, ok := b.byURL[req.URL]; ok && !req.Force {
			c.JSON(http.StatusOK, b.quizzes[id])
			return
		}
		q := sampleQuiz(req.URL, 5)
		q.ID = b.nextID
		q.DateGenerated = model.Timestamp{Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
		b.nextID++
		b.generated++
		b.quizzes[q.ID] = q
		b.byURL[req.URL] = q.ID
		c.JSON(http.StatusOK, q)
	})

	r.GET("/history", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		rows := []gin.H{}
		for id := b.nextID - 1; id >= 1; id-- {
			q, ok := b.quizzes[id]
			if !ok {
				continue
			}
			rows = append(rows, gin.H{
				"id":             q.ID,
				"title":          q.Title,
				"url":            q.URL,
				"date_generated": "2025-01-02T03:04:05.123456",
			})
		}
		c.JSON(http.StatusOK, rows)
	})

	r.GET("/quiz/:id", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		b.mu.Lock()
		q, ok := b.quizzes[id]
		b.mu.Unlock()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
			return
		}
		c.JSON(http.StatusOK, q)
	})

	r.POST("/submit_quiz", func(c *gin.Context) {
		var req model.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "bad request"})
			return
		}
		b.mu.Lock()
		q, ok := b.quizzes[req.QuizID]
		b.mu.Unlock()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Quiz not found"})
			return
		}
		res := model.SubmitResult{QuizID: q.ID, Total: len(q.Questions)}
		for i, question := range q.Questions {
			qr := model.QuestionResult{QuestionID: i, Question: question.Question, CorrectAnswer: question.Answer}
			if ans, ok := req.Answers[strconv.Itoa(i)]; ok {
				qr.YourAnswer = &ans
				qr.Correct = ans == question.Answer
			}
			if qr.Correct {
				res.Score++
			}
			res.Results = append(res.Results, qr)
		}
		c.JSON(http.StatusOK, res)
	})

	return r
}

func newServiceWithBackend(t *testing.T) (*QuizService, *fakeBackend) {
	t.Helper()
	b := newFakeBackend()
	srv := httptest.NewServer(b.router())
	t.Cleanup(srv.Close)
	client := httpclient.New(config.APIConfig{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	return NewQuizService(client), b
}
