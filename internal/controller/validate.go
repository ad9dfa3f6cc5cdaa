package controller

import (
	"regexp"
	"strings"
	"wiki_quiz_client/internal/util"
)

var quizURLPattern = regexp.MustCompile(`^https?://.+`)

// ValidateQuizURL runs before the service is called; the service itself
// never re-checks.
func ValidateQuizURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if !quizURLPattern.MatchString(u) {
		return "", util.ErrInvalidQuizURL
	}
	return u, nil
}
