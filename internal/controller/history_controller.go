package controller

import (
	"context"
	"errors"
	"wiki_quiz_client/internal/history"
	"wiki_quiz_client/internal/util"
)

type HistoryController struct {
	Browser *history.Browser
	Quiz    *QuizController
}

func NewHistoryController(browser *history.Browser, quiz *QuizController) *HistoryController {
	return &HistoryController{Browser: browser, Quiz: quiz}
}

// Run loads the list once and then opens details by id until the user
// quits. A failed detail never disturbs the list.
func (ctl *HistoryController) Run(ctx context.Context, c *Console) error {
	list := ctl.Browser.Load(ctx)
	switch {
	case list.Status == history.StatusFailed:
		c.Printf("Error: %s\n", list.Err)
		return list.Err
	case list.Empty():
		c.Println("No past quizzes found.")
		return nil
	}
	renderHistory(c, list.Rows)

	for {
		line, err := c.Prompt("\nQuiz ID to view details (q to quit): ")
		if err != nil {
			ctl.Browser.Close()
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
		id, ok := util.ParseQuizID(line)
		if !ok {
			c.Println("Please enter a quiz ID from the list.")
			continue
		}

		if err := ctl.showDetail(ctx, c, id); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
}

func (ctl *HistoryController) showDetail(ctx context.Context, c *Console, id int64) error {
	detail := ctl.Browser.OpenDetail(ctx, id)
	defer ctl.Browser.Close()

	switch detail.Status {
	case history.StatusFailed:
		c.Printf("Error: %s\n", detail.Err)
	case history.StatusReady:
		if err := ctl.Quiz.Take(ctx, c, detail.Quiz, TakeOptions{ReadOnly: true}); err != nil {
			return err
		}
	default:
		return nil
	}

	if _, err := c.Prompt("\nPress Enter to close (q to quit). "); err != nil {
		return err
	}
	renderHistory(c, ctl.Browser.Snapshot().List.Rows)
	return nil
}
