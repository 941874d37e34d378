package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	createBook  *appbook.CreateBookUseCase
	listBooks   *appbook.ListBooksUseCase
	getBook     *appbook.GetBookUseCase
	searchBooks *appbook.SearchBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBook *appbook.CreateBookUseCase,
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	searchBooks *appbook.SearchBooksUseCase,
) *BookHandler {
	return &BookHandler{
		createBook:  createBook,
		listBooks:   listBooks,
		getBook:     getBook,
		searchBooks: searchBooks,
	}
}

// CreateBook 创建图书
// @Summary      创建图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} appbook.BookDTO
// @Failure      400 {object} response.MessageBody "参数错误"
// @Failure      401 {object} response.MessageBody "未登录"
// @Router       /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	// 1. 参数绑定
	var req dto.CreateBookRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 调用用例
	result, err := h.createBook.Execute(c.Request.Context(), appbook.CreateBookRequest{
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		PublishedYear: req.PublishedYear,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  author不区分大小写包含匹配，genre不区分大小写相等匹配
// @Tags         图书
// @Produce      json
// @Param        page   query int    false "页码" default(1)
// @Param        limit  query int    false "每页数量" default(10)
// @Param        author query string false "作者"
// @Param        genre  query string false "类型"
// @Success      200 {object} response.PageData{data=[]appbook.BookDTO}
// @Failure      400 {object} response.MessageBody
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.listBooks.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:   page,
		Limit:  limit,
		Author: c.Query("author"),
		Genre:  c.Query("genre"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.Data, result.Meta.Total, result.Meta.Page, result.Meta.Limit)
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  包含全部评论的平均分（没有评论时为null）和分页评论
// @Tags         图书
// @Produce      json
// @Param        id          path  int true  "图书ID"
// @Param        reviewPage  query int false "评论页码" default(1)
// @Param        reviewLimit query int false "评论每页数量" default(5)
// @Success      200 {object} appbook.BookDetailDTO
// @Failure      400 {object} response.MessageBody
// @Failure      404 {object} response.MessageBody "Book not found"
// @Router       /books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	reviewPage, err := queryInt(c, "reviewPage")
	if err != nil {
		response.Error(c, err)
		return
	}
	reviewLimit, err := queryInt(c, "reviewLimit")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.getBook.Execute(c.Request.Context(), appbook.GetBookRequest{
		ID:          id,
		ReviewPage:  reviewPage,
		ReviewLimit: reviewLimit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

// SearchBooks 搜索图书
// @Summary      搜索图书
// @Description  标题或作者包含query（不区分大小写），query为空返回[]
// @Tags         图书
// @Produce      json
// @Param        query query string false "关键词"
// @Success      200 {array} appbook.BookDTO
// @Router       /books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	result, err := h.searchBooks.Execute(c.Request.Context(), c.Query("query"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
