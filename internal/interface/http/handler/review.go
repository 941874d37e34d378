package handler

import (
	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/bookreview/internal/application/review"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/response"
)

// ReviewHandler 评论HTTP处理器
type ReviewHandler struct {
	createReview *appreview.CreateReviewUseCase
	updateReview *appreview.UpdateReviewUseCase
	deleteReview *appreview.DeleteReviewUseCase
}

// NewReviewHandler 创建评论处理器
func NewReviewHandler(
	createReview *appreview.CreateReviewUseCase,
	updateReview *appreview.UpdateReviewUseCase,
	deleteReview *appreview.DeleteReviewUseCase,
) *ReviewHandler {
	return &ReviewHandler{
		createReview: createReview,
		updateReview: updateReview,
		deleteReview: deleteReview,
	}
}

// CreateReview 发表评论
// @Summary      发表评论
// @Description  每个用户对每本书只能评论一次
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                     true "图书ID"
// @Param        request body dto.CreateReviewRequest true "评论内容"
// @Success      201 {object} appreview.ReviewDTO
// @Failure      400 {object} response.MessageBody "Already reviewed this book"
// @Failure      401 {object} response.MessageBody
// @Router       /books/{id}/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	bookID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateReviewRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.createReview.Execute(c.Request.Context(), appreview.CreateReviewRequest{
		BookID:  bookID,
		UserID:  middleware.GetUserID(c),
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateReview 修改评论
// @Summary      修改评论
// @Description  只有作者本人可以修改，未提供的字段保持不变
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                     true "评论ID"
// @Param        request body dto.UpdateReviewRequest true "修改内容"
// @Success      200 {object} appreview.ReviewDTO
// @Failure      400 {object} response.MessageBody
// @Failure      401 {object} response.MessageBody
// @Failure      404 {object} response.MessageBody "Review not found or not yours"
// @Router       /reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateReviewRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.updateReview.Execute(c.Request.Context(), appreview.UpdateReviewRequest{
		ID:      id,
		UserID:  middleware.GetUserID(c),
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteReview 删除评论
// @Summary      删除评论
// @Tags         评论
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评论ID"
// @Success      200 {object} response.MessageBody "Review deleted"
// @Failure      401 {object} response.MessageBody
// @Failure      404 {object} response.MessageBody "Review not found or not yours"
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.deleteReview.Execute(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "Review deleted")
}
