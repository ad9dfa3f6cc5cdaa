package util

import (
	"strconv"
	"strings"
)

// ParseQuizID 将用户输入转换为测验 ID，非正整数时 ok 为 false
func ParseQuizID(s string) (id int64, ok bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
