package controller

import (
	"context"
	"errors"
	"wiki_quiz_client/internal/model"
	"wiki_quiz_client/internal/session"
	"wiki_quiz_client/pkg/logger"

	"go.uber.org/zap"
)

// QuizBackend is the part of service.QuizService the quiz screens use.
type QuizBackend interface {
	GenerateQuiz(ctx context.Context, url string, force bool) (*model.Quiz, error)
	FetchQuizByID(ctx context.Context, id int64) (*model.Quiz, error)
	SubmitQuiz(ctx context.Context, quizID int64, answers model.Attempt) (*model.SubmitResult, error)
}

// TakeOptions 控制测验的展示方式
type TakeOptions struct {
	// ReadOnly shows the quiz with answers revealed and accepts no input.
	ReadOnly bool
	// SubmitRemote also sends the attempt to the backend for grading.
	SubmitRemote bool
}

type QuizController struct {
	Quizzes    QuizBackend
	NewSession func() *session.Session
}

func NewQuizController(quizzes QuizBackend) *QuizController {
	return &QuizController{
		Quizzes:    quizzes,
		NewSession: func() *session.Session { return session.New() },
	}
}

// Generate validates rawURL, asks the backend for its quiz and runs it.
func (ctl *QuizController) Generate(ctx context.Context, c *Console, rawURL string, force bool, opts TakeOptions) error {
	url, err := ValidateQuizURL(rawURL)
	if err != nil {
		c.Printf("Error: %s\n", err)
		return err
	}

	c.Printf("Generating quiz for %s ...\n", url)
	quiz, err := ctl.Quizzes.GenerateQuiz(ctx, url, force)
	if err != nil {
		logger.Log.Error("Failed to generate quiz", zap.String("url", url), zap.Error(err))
		c.Printf("Error: %s\n", err)
		return err
	}
	return ctl.Take(ctx, c, quiz, opts)
}

// Open fetches a stored quiz by id and runs it.
func (ctl *QuizController) Open(ctx context.Context, c *Console, id int64, opts TakeOptions) error {
	quiz, err := ctl.Quizzes.FetchQuizByID(ctx, id)
	if err != nil {
		logger.Log.Error("Failed to fetch quiz", zap.Int64("quiz_id", id), zap.Error(err))
		c.Printf("Error: %s\n", err)
		return err
	}
	return ctl.Take(ctx, c, quiz, opts)
}

// Take runs one quiz on the console: answer every question, see the score
// and the annotated review, then optionally retake with the same order.
func (ctl *QuizController) Take(ctx context.Context, c *Console, quiz *model.Quiz, opts TakeOptions) error {
	checkQuiz(quiz)
	s := ctl.NewSession()

	if opts.ReadOnly {
		s.LoadReadOnly(quiz)
		renderHeader(c, quiz)
		renderReview(c, s)
		renderRelated(c, quiz)
		return nil
	}

	s.Load(quiz)
	renderHeader(c, quiz)
	for {
		if err := ctl.answerAll(c, s); err != nil {
			if errors.Is(err, ErrQuit) {
				c.Println("Quiz abandoned.")
				return nil
			}
			return err
		}
		if err := s.Submit(); err != nil {
			return err
		}

		renderScore(c, s)
		renderReview(c, s)
		renderRelated(c, quiz)

		if opts.SubmitRemote {
			ctl.submitRemote(ctx, c, s)
		}
		if !c.Confirm("\nRetake quiz?") {
			return nil
		}
		s.Reset()
	}
}

func (ctl *QuizController) answerAll(c *Console, s *session.Session) error {
	for i := 0; i < s.Total(); i++ {
		if err := renderQuestion(c, s, i); err != nil {
			return err
		}
		options, err := s.Options(i)
		if err != nil {
			return err
		}
		for {
			line, err := c.Prompt("Your answer (" + optionLabel(0) + "-" + optionLabel(len(options)-1) + ", Enter to skip): ")
			if err != nil {
				return err
			}
			if line == "" {
				break
			}
			k, ok := parseOptionLabel(line, len(options))
			if !ok {
				c.Println("Please choose one of the listed options.")
				continue
			}
			if err := s.SelectAnswer(i, options[k]); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

func (ctl *QuizController) submitRemote(ctx context.Context, c *Console, s *session.Session) {
	quiz := s.Quiz()
	result, err := ctl.Quizzes.SubmitQuiz(ctx, quiz.ID, s.Attempt())
	if err != nil {
		logger.Log.Error("Failed to submit quiz", zap.Int64("quiz_id", quiz.ID), zap.Error(err))
		c.Printf("Error: %s\n", err)
		return
	}
	c.Printf("Server score: %d / %d\n", result.Score, result.Total)
	if result.Score != s.Score() {
		logger.Log.Warn("Server and local scores differ",
			zap.Int64("quiz_id", quiz.ID),
			zap.Int("server", result.Score),
			zap.Int("local", s.Score()),
		)
	}
}

// checkQuiz only logs; a suspicious quiz is still shown as delivered.
func checkQuiz(quiz *model.Quiz) {
	if err := quiz.Validate(); err != nil {
		logger.Log.Warn("Backend returned an invalid quiz", zap.Int64("quiz_id", quiz.ID), zap.Error(err))
	}
}
