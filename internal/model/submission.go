package model

// Attempt is the wire shape of answers: question index rendered as a string
// key, mapped to the selected option text.
type Attempt map[string]string

type SubmitRequest struct {
	QuizID  int64   `json:"quiz_id"`
	Answers Attempt `json:"answers"`
}

type QuestionResult struct {
	QuestionID    int     `json:"question_id"`
	Question      string  `json:"question"`
	YourAnswer    *string `json:"your_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	Correct       bool    `json:"correct"`
}

// SubmitResult 后端评分结果
type SubmitResult struct {
	QuizID  int64            `json:"quiz_id"`
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Results []QuestionResult `json:"results"`
}

type GenerateRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"`
}
