package admin

import (
	"github.com/seller-settlement/internal/provider"
	"github.com/seller-settlement/internal/queue"
	"github.com/seller-settlement/internal/repository"
	"github.com/seller-settlement/internal/service"
)

// Handler 结算后台接口处理器，只持有后台接口用到的依赖
type Handler struct {
	SellerRepo               repository.SellerRepository
	QueueClient              *queue.Client
	CommissionPolicyService  *service.CommissionPolicyService
	SettlementPeriodService  *service.SettlementPeriodService
	SettlementService        *service.SettlementService
	SettlementExportService  *service.SettlementExportService
	SettlementSummaryService *service.SettlementSummaryService
}

// New 从容器创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{
		SellerRepo:               c.SellerRepo,
		QueueClient:              c.QueueClient,
		CommissionPolicyService:  c.CommissionPolicyService,
		SettlementPeriodService:  c.SettlementPeriodService,
		SettlementService:        c.SettlementService,
		SettlementExportService:  c.SettlementExportService,
		SettlementSummaryService: c.SettlementSummaryService,
	}
}
