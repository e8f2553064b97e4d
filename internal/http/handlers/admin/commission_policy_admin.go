package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/seller-settlement/internal/http/handlers/shared"
	"github.com/seller-settlement/internal/http/response"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/repository"
	"github.com/seller-settlement/internal/service"

	"github.com/gin-gonic/gin"
)

// CommissionPolicyUpsertRequest 佣金策略创建/更新请求
type CommissionPolicyUpsertRequest struct {
	Name           string          `json:"name"`
	Scope          string          `json:"scope" binding:"required,oneof=global category seller"`
	SellerID       uint64          `json:"seller_id,string"`
	CategoryCode   string          `json:"category_code"`
	CommissionRate *models.Percent `json:"commission_rate" binding:"required"`
	EffectiveDate  string          `json:"effective_date" binding:"required"`
	IsActive       *bool           `json:"is_active"`
	Remark         string          `json:"remark"`
}

func (req CommissionPolicyUpsertRequest) toInput() (service.CommissionPolicyInput, error) {
	effectiveDate, err := handlershared.ParseTime(req.EffectiveDate)
	if err != nil {
		return service.CommissionPolicyInput{}, err
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return service.CommissionPolicyInput{
		Name:           req.Name,
		Scope:          req.Scope,
		SellerID:       req.SellerID,
		CategoryCode:   req.CategoryCode,
		CommissionRate: req.CommissionRate.Decimal,
		EffectiveDate:  effectiveDate,
		IsActive:       isActive,
		Remark:         req.Remark,
	}, nil
}

// GetAdminCommissionPolicies 获取佣金策略列表
func (h *Handler) GetAdminCommissionPolicies(c *gin.Context) {
	page, pageSize := handlershared.ParsePage(c)
	sellerID, ok := parseQueryUint64(c, "seller_id")
	if !ok {
		return
	}
	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		isActive = &parsed
	}

	policies, total, err := h.CommissionPolicyService.List(repository.CommissionPolicyListFilter{
		Page:         page,
		PageSize:     pageSize,
		Scope:        strings.TrimSpace(c.Query("scope")),
		SellerID:     sellerID,
		CategoryCode: strings.TrimSpace(c.Query("category_code")),
		IsActive:     isActive,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_policy_fetch_failed", err)
		return
	}
	successWithPage(c, policies, page, pageSize, total)
}

// GetAdminCommissionPolicy 获取佣金策略详情
func (h *Handler) GetAdminCommissionPolicy(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	policy, err := h.CommissionPolicyService.Get(id)
	if err != nil {
		respondCommissionPolicyError(c, err, "error.commission_policy_fetch_failed")
		return
	}
	response.Success(c, policy)
}

// CreateCommissionPolicy 创建佣金策略
func (h *Handler) CreateCommissionPolicy(c *gin.Context) {
	var req CommissionPolicyUpsertRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	policy, err := h.CommissionPolicyService.Create(input)
	if err != nil {
		respondCommissionPolicyError(c, err, "error.commission_policy_save_failed")
		return
	}
	requestLog(c).Infow("commission_policy_created", "policy_id", policy.ID, "scope", policy.Scope, "rate", policy.CommissionRate.String())
	response.Success(c, policy)
}

// UpdateCommissionPolicy 更新佣金策略
func (h *Handler) UpdateCommissionPolicy(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	var req CommissionPolicyUpsertRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	policy, err := h.CommissionPolicyService.Update(id, input)
	if err != nil {
		respondCommissionPolicyError(c, err, "error.commission_policy_save_failed")
		return
	}
	requestLog(c).Infow("commission_policy_updated", "policy_id", policy.ID, "rate", policy.CommissionRate.String())
	response.Success(c, policy)
}

// DeactivateCommissionPolicy 停用佣金策略
func (h *Handler) DeactivateCommissionPolicy(c *gin.Context) {
	id, ok := parsePathUint64(c, "id")
	if !ok {
		return
	}
	policy, err := h.CommissionPolicyService.Deactivate(id)
	if err != nil {
		respondCommissionPolicyError(c, err, "error.commission_policy_save_failed")
		return
	}
	response.Success(c, policy)
}

// ResolveCommissionPolicy 预览商家与类目在指定日期命中的佣金策略
func (h *Handler) ResolveCommissionPolicy(c *gin.Context) {
	sellerID, ok := parseQueryUint64(c, "seller_id")
	if !ok {
		return
	}
	orderDate, err := handlershared.ParseTime(c.Query("order_date"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	policy, err := h.CommissionPolicyService.ResolveRate(sellerID, c.Query("category_code"), orderDate)
	if err != nil {
		respondWithMappedError(c, err, commissionResolveErrorRules, response.CodeInternal, "error.commission_policy_fetch_failed")
		return
	}
	response.Success(c, policy)
}
