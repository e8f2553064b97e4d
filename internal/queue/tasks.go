package queue

import (
	"encoding/json"

	"github.com/seller-settlement/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskGeneratePeriod 生成整个周期的结算单
	TaskGeneratePeriod = constants.TaskSettlementGeneratePeriod
	// TaskGenerateSeller 生成单个商家的结算单
	TaskGenerateSeller = constants.TaskSettlementGenerateSeller
	// TaskMonthlyClose 月结：确保上月周期存在并生成结算单
	TaskMonthlyClose = constants.TaskSettlementMonthlyClose
)

// GeneratePeriodPayload 周期生成任务载荷
type GeneratePeriodPayload struct {
	PeriodID    uint64 `json:"period_id,string"`
	Recalculate bool   `json:"recalculate"`
}

// GenerateSellerPayload 单商家生成任务载荷
type GenerateSellerPayload struct {
	PeriodID    uint64 `json:"period_id,string"`
	SellerID    uint64 `json:"seller_id,string"`
	Recalculate bool   `json:"recalculate"`
}

// MonthlyClosePayload 月结任务载荷，Month 为空时处理上一个自然月
type MonthlyClosePayload struct {
	Month string `json:"month,omitempty"` // 2006-01
}

// NewGeneratePeriodTask 创建周期生成任务
func NewGeneratePeriodTask(payload GeneratePeriodPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGeneratePeriod, body), nil
}

// NewGenerateSellerTask 创建单商家生成任务
func NewGenerateSellerTask(payload GenerateSellerPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGenerateSeller, body), nil
}

// NewMonthlyCloseTask 创建月结任务
func NewMonthlyCloseTask(payload MonthlyClosePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMonthlyClose, body), nil
}
