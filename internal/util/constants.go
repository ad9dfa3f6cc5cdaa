package util

const (
	TimeFormat = "2006-01-02 15:04:05"
)

// 后端接口路径
const (
	EndpointGenerateQuiz = "/generate_quiz"
	EndpointHistory      = "/history"
	EndpointQuiz         = "/quiz/"
	EndpointSubmitQuiz   = "/submit_quiz"
	EndpointHealth       = "/health"
)
