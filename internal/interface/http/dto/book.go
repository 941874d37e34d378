package dto

// CreateBookRequest 创建图书请求
// 必填校验在领域层完成，这里只负责JSON类型绑定
type CreateBookRequest struct {
	Title         string `json:"title" example:"Dune"`
	Author        string `json:"author" example:"Frank Herbert"`
	Genre         string `json:"genre" example:"SciFi"`
	PublishedYear int    `json:"publishedYear" example:"1965"`
}
