package admin

import (
	"strings"

	handlershared "github.com/seller-settlement/internal/http/handlers/shared"
	"github.com/seller-settlement/internal/http/response"
	"github.com/seller-settlement/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminSellers 获取商家列表
func (h *Handler) GetAdminSellers(c *gin.Context) {
	page, pageSize := handlershared.ParsePage(c)
	sellers, total, err := h.SellerRepo.List(repository.SellerListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.seller_fetch_failed", err)
		return
	}
	successWithPage(c, sellers, page, pageSize, total)
}
