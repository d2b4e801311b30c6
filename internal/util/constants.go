package util

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// LocalDateHeader 前端传入用户本地日历日期（YYYY-MM-DD），连续学习天数按该日期计算
const LocalDateHeader = "X-Local-Date"

// gin.Context keys
const (
	ContextUserKey    = "user"
	ContextSessionKey = "session"
)
