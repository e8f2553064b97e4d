package admin

import (
	"fmt"
	"net/http"
	"strings"

	handlershared "github.com/seller-settlement/internal/http/handlers/shared"
	"github.com/seller-settlement/internal/http/response"
	"github.com/seller-settlement/internal/repository"

	"github.com/gin-gonic/gin"
)

// SettlementReasonRequest 挂起/取消结算单请求
type SettlementReasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SettlementResumeRequest 恢复结算单请求
type SettlementResumeRequest struct {
	Recalculate bool `json:"recalculate"`
}

// GetAdminSettlements 获取结算单列表
func (h *Handler) GetAdminSettlements(c *gin.Context) {
	page, pageSize := handlershared.ParsePage(c)
	sellerID, ok := parseQueryUint64(c, "seller_id")
	if !ok {
		return
	}
	periodID, ok := parseQueryUint64(c, "settlement_period_id")
	if !ok {
		return
	}
	createdFrom, err := handlershared.ParseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := handlershared.ParseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	settlements, total, err := h.SettlementService.List(repository.SettlementListFilter{
		Page:               page,
		PageSize:           pageSize,
		SellerID:           sellerID,
		SettlementPeriodID: periodID,
		Status:             strings.ToLower(strings.TrimSpace(c.Query("status"))),
		SettlementNo:       strings.TrimSpace(c.Query("settlement_no")),
		CreatedFrom:        createdFrom,
		CreatedTo:          createdTo,
	})
	if err != nil {
		respondSettlementError(c, err, "error.settlement_fetch_failed")
		return
	}
	successWithPage(c, settlements, page, pageSize, total)
}

// GetAdminSettlement 获取结算单详情（含明细）
func (h *Handler) GetAdminSettlement(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	settlement, err := h.SettlementService.GetDetail(id)
	if err != nil {
		respondSettlementError(c, err, "error.settlement_fetch_failed")
		return
	}
	response.Success(c, settlement)
}

// RecalculateSettlement 重新计算结算单
func (h *Handler) RecalculateSettlement(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	settlement, err := h.SettlementService.Recalculate(c.Request.Context(), id)
	if err != nil {
		respondSettlementError(c, err, "error.settlement_update_failed")
		return
	}
	response.Success(c, settlement)
}

// HoldSettlement 挂起结算单
func (h *Handler) HoldSettlement(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	var req SettlementReasonRequest
	if !bindJSON(c, &req) {
		return
	}
	settlement, err := h.SettlementService.Hold(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondSettlementError(c, err, "error.settlement_update_failed")
		return
	}
	response.Success(c, settlement)
}

// ResumeSettlement 恢复挂起的结算单
func (h *Handler) ResumeSettlement(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	var req SettlementResumeRequest
	if !bindJSON(c, &req) {
		return
	}
	settlement, err := h.SettlementService.Resume(c.Request.Context(), id, req.Recalculate)
	if err != nil {
		respondSettlementError(c, err, "error.settlement_update_failed")
		return
	}
	response.Success(c, settlement)
}

// CompleteSettlement 完成结算单
func (h *Handler) CompleteSettlement(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	settlement, err := h.SettlementService.Complete(c.Request.Context(), id)
	if err != nil {
		respondSettlementError(c, err, "error.settlement_update_failed")
		return
	}
	requestLog(c).Infow("settlement_completed", "settlement_id", settlement.ID, "final_settlement_amount", settlement.FinalSettlementAmount)
	response.Success(c, settlement)
}

// CancelSettlement 取消结算单
func (h *Handler) CancelSettlement(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	var req SettlementReasonRequest
	if !bindJSON(c, &req) {
		return
	}
	settlement, err := h.SettlementService.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondSettlementError(c, err, "error.settlement_update_failed")
		return
	}
	response.Success(c, settlement)
}

// ExportSettlement 导出结算单（xlsx/pdf）
func (h *Handler) ExportSettlement(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	export, err := h.SettlementExportService.Export(id, c.DefaultQuery("format", "xlsx"))
	if err != nil {
		respondSettlementExportError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Content)
}
