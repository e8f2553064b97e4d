package models

import "time"

// UTCNow 数据库统一使用 UTC 时间，SQLite 以文本存储时间，混用时区会破坏区间比较
func UTCNow() time.Time {
	return time.Now().UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
