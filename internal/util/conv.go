package util

import (
	"strconv"
)

// ParsePositiveInt 解析正整数，失败或非正数返回 0
func ParsePositiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
