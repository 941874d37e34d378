package mysql

import (
	"time"
)

// UserModel GORM用户模型
// infrastructure层的数据模型，domain/user/entity.go是领域实体，Repository负责转换
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:50;not null;comment:用户名"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
type BookModel struct {
	ID            uint      `gorm:"primaryKey"`
	Title         string    `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author        string    `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Genre         string    `gorm:"index;size:50;not null;comment:类型"`
	PublishedYear int       `gorm:"not null;comment:出版年份"`
	CreatedAt     time.Time `gorm:"comment:创建时间"`
	UpdatedAt     time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// ReviewModel GORM评论模型
// (user_id, book_id)唯一索引保证每个用户对每本书只有一条评论，并发重复提交时由数据库拒绝
type ReviewModel struct {
	ID        uint      `gorm:"primaryKey"`
	Rating    int       `gorm:"not null;comment:评分(1-5)"`
	Comment   string    `gorm:"type:text;comment:评论内容"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_book;comment:评论者用户ID"`
	BookID    uint      `gorm:"not null;uniqueIndex:idx_user_book;index;comment:图书ID"`
	User      UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Book      BookModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ReviewModel) TableName() string {
	return "reviews"
}
