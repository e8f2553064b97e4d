package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrStateConflict 条件更新未命中任何记录（状态已被其他请求修改）
var ErrStateConflict = errors.New("repository: state conflict")

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// IsUniqueViolation 判断是否唯一约束冲突，兼容 sqlite 与 postgres 的错误文本。
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") || strings.Contains(msg, "sqlstate 23505")
}

// likeClause 构建大小写不敏感的模糊匹配，postgres 使用 ILIKE。
func likeClause(db *gorm.DB, column string) string {
	if dbDialectName(db) == "postgres" {
		return column + " ILIKE ?"
	}
	return column + " LIKE ?"
}
