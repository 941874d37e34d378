package mysql

import (
	"errors"
	"strings"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL错误码
const (
	errDuplicateEntry  = 1062 // Duplicate entry 'xxx' for key 'yyy'
	errNoReferencedRow = 1452 // Cannot add or update a child row: a foreign key constraint fails
)

// isDuplicateError 判断是否为唯一索引冲突
// TranslateError开启时GORM返回ErrDuplicatedKey，否则是驱动的MySQLError
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *driver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == errDuplicateEntry
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// isForeignKeyError 判断是否为外键约束失败
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var myErr *driver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == errNoReferencedRow
	}
	return false
}

// foreignKeyColumn 从驱动错误信息中取出失败的外键列
// 错误信息形如: ... CONSTRAINT `fk_reviews_user` FOREIGN KEY (`user_id`) REFERENCES ...
// TranslateError开启时只剩ErrForeignKeyViolated，返回空串
func foreignKeyColumn(err error) string {
	var myErr *driver.MySQLError
	if !errors.As(err, &myErr) {
		return ""
	}
	msg := myErr.Message
	i := strings.Index(msg, "FOREIGN KEY (`")
	if i < 0 {
		return ""
	}
	rest := msg[i+len("FOREIGN KEY (`"):]
	j := strings.Index(rest, "`")
	if j < 0 {
		return ""
	}
	return rest[:j]
}

// likePattern 构造不区分大小写的包含匹配模式，转义LIKE通配符
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(s)) + "%"
}
