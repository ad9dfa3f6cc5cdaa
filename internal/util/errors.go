package util

import "errors"

var (
	ErrQuizNotLoaded      = errors.New("no quiz loaded")
	ErrReadOnlySession    = errors.New("quiz is open in review mode")
	ErrSessionSubmitted   = errors.New("quiz already submitted")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrInvalidQuizURL     = errors.New("Please enter a valid URL starting with http(s)")
)
