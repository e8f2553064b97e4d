package admin

import (
	"errors"
	"strings"

	handlershared "github.com/seller-settlement/internal/http/handlers/shared"
	"github.com/seller-settlement/internal/http/response"
	"github.com/seller-settlement/internal/queue"
	"github.com/seller-settlement/internal/repository"
	"github.com/seller-settlement/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// SettlementPeriodCreateRequest 创建结算周期请求
type SettlementPeriodCreateRequest struct {
	Name           string `json:"name" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	SettlementDate string `json:"settlement_date" binding:"required"`
}

// SettlementGenerateRequest 触发结算生成请求
type SettlementGenerateRequest struct {
	Recalculate bool `json:"recalculate"`
}

// GetAdminSettlementPeriods 获取结算周期列表
func (h *Handler) GetAdminSettlementPeriods(c *gin.Context) {
	page, pageSize := handlershared.ParsePage(c)
	periods, total, err := h.SettlementPeriodService.List(repository.SettlementPeriodListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.settlement_period_fetch_failed", err)
		return
	}
	successWithPage(c, periods, page, pageSize, total)
}

// GetAdminSettlementPeriod 获取结算周期详情
func (h *Handler) GetAdminSettlementPeriod(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	period, err := h.SettlementPeriodService.Get(id)
	if err != nil {
		respondSettlementPeriodError(c, err, "error.settlement_period_fetch_failed")
		return
	}
	response.Success(c, period)
}

// GetSettlementPeriodSummary 获取结算周期汇总
func (h *Handler) GetSettlementPeriodSummary(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	forceRefresh := strings.EqualFold(strings.TrimSpace(c.Query("refresh")), "true")
	summary, err := h.SettlementSummaryService.GetPeriodSummary(c.Request.Context(), id, forceRefresh)
	if err != nil {
		respondSettlementPeriodError(c, err, "error.settlement_period_fetch_failed")
		return
	}
	response.Success(c, summary)
}

// CreateSettlementPeriod 创建结算周期
func (h *Handler) CreateSettlementPeriod(c *gin.Context) {
	var req SettlementPeriodCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	startDate, err := handlershared.ParseTime(req.StartDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	endDate, err := handlershared.ParseTime(req.EndDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	settlementDate, err := handlershared.ParseTime(req.SettlementDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	period, err := h.SettlementPeriodService.Create(service.CreateSettlementPeriodInput{
		Name:           req.Name,
		StartDate:      startDate,
		EndDate:        endDate,
		SettlementDate: settlementDate,
	})
	if err != nil {
		respondSettlementPeriodError(c, err, "error.settlement_period_save_failed")
		return
	}
	requestLog(c).Infow("settlement_period_created", "period_id", period.ID, "name", period.Name)
	response.Success(c, period)
}

// CompleteSettlementPeriod 完成结算周期
func (h *Handler) CompleteSettlementPeriod(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	period, err := h.SettlementPeriodService.Complete(id)
	if err != nil {
		respondSettlementPeriodError(c, err, "error.settlement_period_save_failed")
		return
	}
	response.Success(c, period)
}

// GenerateSettlementPeriod 触发周期结算生成，队列可用时异步执行
func (h *Handler) GenerateSettlementPeriod(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	var req SettlementGenerateRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.SettlementPeriodService.Get(id); err != nil {
		respondSettlementPeriodError(c, err, "error.settlement_period_fetch_failed")
		return
	}

	if h.QueueClient.Enabled() {
		taskID, err := h.QueueClient.EnqueueGeneratePeriod(queue.GeneratePeriodPayload{PeriodID: id, Recalculate: req.Recalculate})
		if err == nil {
			requestLog(c).Infow("settlement_generate_enqueued", "period_id", id, "task_id", taskID)
		}
		respondGenerateEnqueued(c, taskID, err)
		return
	}

	report, err := h.SettlementService.GenerateForPeriod(c.Request.Context(), service.GeneratePeriodInput{
		PeriodID:    id,
		Recalculate: req.Recalculate,
	})
	if err != nil {
		respondSettlementGenerateError(c, err)
		return
	}
	response.Success(c, report)
}

// GenerateSellerSettlement 为单个商家触发结算生成
func (h *Handler) GenerateSellerSettlement(c *gin.Context) {
	periodID, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	sellerID, ok := parsePathUint64(c, "seller_id")
	if !ok {
		return
	}
	var req SettlementGenerateRequest
	if !bindJSON(c, &req) {
		return
	}

	if h.QueueClient.Enabled() {
		taskID, err := h.QueueClient.EnqueueGenerateSeller(queue.GenerateSellerPayload{
			PeriodID:    periodID,
			SellerID:    sellerID,
			Recalculate: req.Recalculate,
		})
		respondGenerateEnqueued(c, taskID, err)
		return
	}

	result, err := h.SettlementService.GenerateForSeller(c.Request.Context(), service.GenerateSellerInput{
		PeriodID:    periodID,
		SellerID:    sellerID,
		Recalculate: req.Recalculate,
	})
	if err != nil {
		respondSettlementGenerateError(c, err)
		return
	}
	response.Success(c, result)
}

// respondGenerateEnqueued 输出入队结果，相同生成任务仍在队列中时视为已受理
func respondGenerateEnqueued(c *gin.Context, taskID string, err error) {
	if errors.Is(err, asynq.ErrDuplicateTask) {
		response.Success(c, gin.H{"queued": true, "duplicate": true})
		return
	}
	if err != nil {
		respondError(c, response.CodeUnavailable, "error.queue_unavailable", err)
		return
	}
	response.Success(c, gin.H{"queued": true, "task_id": taskID})
}
