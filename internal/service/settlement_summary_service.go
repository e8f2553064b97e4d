package service

import (
	"context"
	"fmt"
	"time"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/logger"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/repository"
)

const (
	settlementSummaryCacheTTL = 45 * time.Second
	settlementSummaryTopLimit = 5
)

// SummaryCache 汇总结果 JSON 缓存
type SummaryCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// SettlementSummaryService 结算周期汇总服务
// 说明：聚合周期内结算单的状态分布与金额合计，结果短时缓存，结算单变化时失效。
type SettlementSummaryService struct {
	repo       repository.SettlementSummaryRepository
	periodRepo repository.SettlementPeriodRepository
	cache      SummaryCache
}

// NewSettlementSummaryService 创建结算汇总服务，cache 为空时不缓存
func NewSettlementSummaryService(repo repository.SettlementSummaryRepository, periodRepo repository.SettlementPeriodRepository, cache SummaryCache) *SettlementSummaryService {
	return &SettlementSummaryService{repo: repo, periodRepo: periodRepo, cache: cache}
}

// SettlementPeriodSummary 结算周期汇总响应
type SettlementPeriodSummary struct {
	Period                *models.SettlementPeriod      `json:"period"`
	SettlementCount       int64                         `json:"settlement_count"`
	ItemCount             int64                         `json:"item_count"`
	TotalOrderAmount      int64                         `json:"total_order_amount"`
	TotalCommission       int64                         `json:"total_commission"`
	FinalSettlementAmount int64                         `json:"final_settlement_amount"`
	OpenCount             int64                         `json:"open_count"`
	ByStatus              []SettlementStatusSummary     `json:"by_status"`
	TopSellers            []SettlementSellerSummaryItem `json:"top_sellers"`
	GeneratedAt           string                        `json:"generated_at"`
}

// SettlementStatusSummary 单个状态的统计
type SettlementStatusSummary struct {
	Status                string `json:"status"`
	SettlementCount       int64  `json:"settlement_count"`
	ItemCount             int64  `json:"item_count"`
	TotalOrderAmount      int64  `json:"total_order_amount"`
	TotalCommission       int64  `json:"total_commission"`
	FinalSettlementAmount int64  `json:"final_settlement_amount"`
}

// SettlementSellerSummaryItem 商家排行项
type SettlementSellerSummaryItem struct {
	SellerID              uint64 `json:"seller_id,string"`
	SellerCode            string `json:"seller_code"`
	SellerName            string `json:"seller_name"`
	Status                string `json:"status"`
	TotalOrderAmount      int64  `json:"total_order_amount"`
	FinalSettlementAmount int64  `json:"final_settlement_amount"`
}

// GetPeriodSummary 获取周期汇总，forceRefresh 为 true 时跳过缓存
func (s *SettlementSummaryService) GetPeriodSummary(ctx context.Context, periodID uint64, forceRefresh bool) (*SettlementPeriodSummary, error) {
	if periodID == 0 {
		return nil, ErrSettlementPeriodNotFound
	}
	// 周期状态实时读取，只缓存聚合部分
	period, err := s.periodRepo.GetByID(periodID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementPeriodFetchFailed, err)
	}
	if period == nil {
		return nil, ErrSettlementPeriodNotFound
	}

	cacheKey := summaryCacheKey(periodID)
	if !forceRefresh && s.cache != nil {
		var cached SettlementPeriodSummary
		hit, cacheErr := s.cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr != nil {
			logger.Warnw("settlement_summary_cache_get_failed", "period_id", periodID, "error", cacheErr)
		}
		if hit {
			cached.Period = period
			return &cached, nil
		}
	}

	statusRows, err := s.repo.GetPeriodStatusRows(periodID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFetchFailed, err)
	}
	sellerRows, err := s.repo.GetPeriodTopSellers(periodID, settlementSummaryTopLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFetchFailed, err)
	}

	summary := buildSettlementPeriodSummary(statusRows, sellerRows)
	summary.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, summary, settlementSummaryCacheTTL); err != nil {
			logger.Warnw("settlement_summary_cache_set_failed", "period_id", periodID, "error", err)
		}
	}
	summary.Period = period
	return summary, nil
}

// InvalidatePeriodSummary 清除周期汇总缓存
func (s *SettlementSummaryService) InvalidatePeriodSummary(ctx context.Context, periodID uint64) {
	if s == nil || s.cache == nil || periodID == 0 {
		return
	}
	if err := s.cache.Del(ctx, summaryCacheKey(periodID)); err != nil {
		logger.Warnw("settlement_summary_cache_del_failed", "period_id", periodID, "error", err)
	}
}

func buildSettlementPeriodSummary(statusRows []repository.SettlementStatusSummaryRow, sellerRows []repository.SettlementSellerSummaryRow) *SettlementPeriodSummary {
	summary := &SettlementPeriodSummary{
		ByStatus:   make([]SettlementStatusSummary, 0, len(statusRows)),
		TopSellers: make([]SettlementSellerSummaryItem, 0, len(sellerRows)),
	}
	for _, row := range statusRows {
		summary.ByStatus = append(summary.ByStatus, SettlementStatusSummary{
			Status:                row.Status,
			SettlementCount:       row.SettlementCount,
			ItemCount:             row.ItemCount,
			TotalOrderAmount:      row.TotalOrderAmount,
			TotalCommission:       row.TotalCommission,
			FinalSettlementAmount: row.FinalSettlementAmount,
		})
		summary.SettlementCount += row.SettlementCount
		if row.Status == constants.SettlementStatusCancelled {
			continue
		}
		summary.ItemCount += row.ItemCount
		summary.TotalOrderAmount += row.TotalOrderAmount
		summary.TotalCommission += row.TotalCommission
		summary.FinalSettlementAmount += row.FinalSettlementAmount
		if !IsTerminalSettlementStatus(row.Status) {
			summary.OpenCount += row.SettlementCount
		}
	}
	for _, row := range sellerRows {
		summary.TopSellers = append(summary.TopSellers, SettlementSellerSummaryItem{
			SellerID:              row.SellerID,
			SellerCode:            row.SellerCode,
			SellerName:            row.SellerName,
			Status:                row.Status,
			TotalOrderAmount:      row.TotalOrderAmount,
			FinalSettlementAmount: row.FinalSettlementAmount,
		})
	}
	return summary
}

func summaryCacheKey(periodID uint64) string {
	return fmt.Sprintf("summary:period:%d", periodID)
}
