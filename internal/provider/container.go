package provider

import (
	"fmt"

	"github.com/seller-settlement/internal/cache"
	"github.com/seller-settlement/internal/config"
	"github.com/seller-settlement/internal/events"
	"github.com/seller-settlement/internal/idgen"
	"github.com/seller-settlement/internal/logger"
	"github.com/seller-settlement/internal/queue"
	"github.com/seller-settlement/internal/repository"
	"github.com/seller-settlement/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *cache.Redis
	QueueClient *queue.Client
	Events      *events.Publisher
	IDGen       *idgen.Generator

	// Repositories
	SellerRepo            repository.SellerRepository
	OrderRepo             repository.OrderRepository
	CommissionPolicyRepo  repository.CommissionPolicyRepository
	SettlementPeriodRepo  repository.SettlementPeriodRepository
	SettlementRepo        repository.SettlementRepository
	SettlementSummaryRepo repository.SettlementSummaryRepository

	// Services
	CommissionPolicyService  *service.CommissionPolicyService
	SettlementPeriodService  *service.SettlementPeriodService
	SettlementService        *service.SettlementService
	SettlementExportService  *service.SettlementExportService
	SettlementSummaryService *service.SettlementSummaryService
}

// NewContainer 初始化容器，db 由调用方打开并负责关闭
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("provider: config and db are required")
	}

	generator, err := idgen.New(cfg.Settlement.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("provider: init snowflake: %w", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("provider: init queue client: %w", err)
	}

	publisher, err := events.NewPublisher(cfg.Events)
	if err != nil {
		// 事件投递失败不影响结算主流程
		logger.Warnw("provider_init_events_failed", "error", err)
		publisher, _ = events.NewPublisher(config.EventsConfig{Exchange: cfg.Events.Exchange})
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		Redis:       cache.NewRedis(&cfg.Redis),
		QueueClient: queueClient,
		Events:      publisher,
		IDGen:       generator,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c, nil
}

func (c *Container) initRepositories() {
	c.SellerRepo = repository.NewSellerRepository(c.DB)
	c.OrderRepo = repository.NewOrderRepository(c.DB)
	c.CommissionPolicyRepo = repository.NewCommissionPolicyRepository(c.DB)
	c.SettlementPeriodRepo = repository.NewSettlementPeriodRepository(c.DB)
	c.SettlementRepo = repository.NewSettlementRepository(c.DB)
	c.SettlementSummaryRepo = repository.NewSettlementSummaryRepository(c.DB)
}

func (c *Container) initServices() {
	settlementCfg := c.Config.Settlement

	c.CommissionPolicyService = service.NewCommissionPolicyService(c.CommissionPolicyRepo, c.SellerRepo, settlementCfg.PolicyCacheTTL())
	c.SettlementPeriodService = service.NewSettlementPeriodService(c.SettlementPeriodRepo, c.SettlementRepo, settlementCfg.Location(), settlementCfg.SettlementDelayDays)

	var summaryCache service.SummaryCache
	if c.Redis.Enabled() {
		summaryCache = c.Redis
	}
	c.SettlementSummaryService = service.NewSettlementSummaryService(c.SettlementSummaryRepo, c.SettlementPeriodRepo, summaryCache)

	opts := service.SettlementServiceOptions{
		Eligibility: service.NewSettlementEligibility(settlementCfg.EligibleOrderStatuses, settlementCfg.EligiblePaymentStatuses),
		Concurrency: settlementCfg.Concurrency,
		LockTTL:     settlementCfg.LockTTL(),
		Publisher:   c.Events,
		Summaries:   c.SettlementSummaryService,
	}
	if c.Redis.Enabled() {
		opts.Locker = c.Redis
	}
	c.SettlementService = service.NewSettlementService(
		c.SettlementRepo,
		c.SettlementPeriodRepo,
		c.OrderRepo,
		c.SellerRepo,
		c.CommissionPolicyService,
		c.IDGen,
		opts,
	)
	c.SettlementExportService = service.NewSettlementExportService(c.SettlementRepo)
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_failed", "error", err)
	}
	c.Events.Close()
	if err := c.Redis.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
