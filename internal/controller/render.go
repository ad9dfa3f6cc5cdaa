package controller

import (
	"strings"
	"wiki_quiz_client/internal/model"
	"wiki_quiz_client/internal/session"
	"wiki_quiz_client/internal/util"
)

// optionLabel maps 0 -> A, 1 -> B and so on.
func optionLabel(i int) string {
	return string(rune('A' + i))
}

// parseOptionLabel is the inverse of optionLabel, bounded by n.
func parseOptionLabel(s string, n int) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 {
		return 0, false
	}
	i := int(s[0] - 'A')
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// renderHeader prints the article metadata above the questions.
func renderHeader(c *Console, q *model.Quiz) {
	c.Printf("\n%s\n", q.Title)
	if q.URL != "" {
		c.Printf("%s\n", q.URL)
	}
	if !q.DateGenerated.IsZero() {
		c.Printf("Generated %s\n", q.DateGenerated.Local().Format(util.TimeFormat))
	}
	if q.Summary != "" {
		c.Printf("\n%s\n", q.Summary)
	}
	printList(c, "People", q.KeyEntities.People)
	printList(c, "Organizations", q.KeyEntities.Organizations)
	printList(c, "Locations", q.KeyEntities.Locations)
	printList(c, "Sections", q.Sections)
}

func renderRelated(c *Console, q *model.Quiz) {
	printList(c, "Related topics", q.RelatedTopics)
}

func printList(c *Console, label string, items []string) {
	if len(items) == 0 {
		return
	}
	c.Printf("%s: %s\n", label, strings.Join(items, ", "))
}

// renderQuestion draws question i the way the session wants it shown. In
// review mode the canonical answer and a wrong pick are labelled, followed
// by the explanation.
func renderQuestion(c *Console, s *session.Session, i int) error {
	quiz := s.Quiz()
	if quiz == nil {
		return util.ErrQuizNotLoaded
	}
	views, err := s.Review(i)
	if err != nil {
		return err
	}
	q := quiz.Questions[i]

	c.Printf("\n%d. %s", i+1, q.Question)
	if q.Difficulty != "" {
		c.Printf(" [%s]", q.Difficulty)
	}
	c.Println()

	for k, v := range views {
		mark := " "
		if v.Selected {
			mark = "*"
		}
		line := mark + " " + optionLabel(k) + ") " + v.Text
		switch {
		case v.Correct:
			line += " (Correct)"
		case v.YourAnswer:
			line += " (Your Answer)"
		}
		c.Println(line)
	}

	if s.Mode() == session.ModeReview && q.Explanation != "" {
		c.Printf("   Explanation: %s\n", q.Explanation)
	}
	return nil
}

func renderReview(c *Console, s *session.Session) {
	for i := 0; i < s.Total(); i++ {
		_ = renderQuestion(c, s, i)
	}
}

func renderScore(c *Console, s *session.Session) {
	c.Printf("\nScore: %d / %d\n", s.Score(), s.Total())
}

func renderHistory(c *Console, rows []model.HistoryRow) {
	c.Printf("\n%-6s %-19s %-40s %s\n", "ID", "Date", "Title", "URL")
	for _, r := range rows {
		date := "-"
		if !r.DateGenerated.IsZero() {
			date = r.DateGenerated.Local().Format(util.TimeFormat)
		}
		c.Printf("%-6d %-19s %-40s %s\n", r.ID, date, truncate(r.Title, 40), r.URL)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
