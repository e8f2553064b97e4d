package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seller-settlement/internal/logger"
	"github.com/seller-settlement/internal/provider"
	"github.com/seller-settlement/internal/queue"
	"github.com/seller-settlement/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskGeneratePeriod, c.handleGeneratePeriod)
	mux.HandleFunc(queue.TaskGenerateSeller, c.handleGenerateSeller)
	mux.HandleFunc(queue.TaskMonthlyClose, c.handleMonthlyClose)
}

func (c *Consumer) handleGeneratePeriod(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_generate_period_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GeneratePeriodPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_generate_period_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.PeriodID == 0 {
		logger.Debugw("worker_generate_period_skip_invalid_payload", "period_id", payload.PeriodID)
		return nil
	}
	report, err := c.SettlementService.GenerateForPeriod(ctx, service.GeneratePeriodInput{
		PeriodID:    payload.PeriodID,
		Recalculate: payload.Recalculate,
	})
	if err != nil {
		return c.settlementTaskError("worker_generate_period_failed", err, "period_id", payload.PeriodID)
	}
	if report.Failed > 0 {
		// 失败的商家在下一次重试时会被重新尝试，已生成的会跳过
		logger.Warnw("worker_generate_period_partial_failure",
			"period_id", payload.PeriodID,
			"failed", report.Failed,
			"created", report.Created,
		)
		return fmt.Errorf("period %d: %d sellers failed", payload.PeriodID, report.Failed)
	}
	return nil
}

func (c *Consumer) handleGenerateSeller(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_generate_seller_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GenerateSellerPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_generate_seller_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.PeriodID == 0 || payload.SellerID == 0 {
		logger.Debugw("worker_generate_seller_skip_invalid_payload", "period_id", payload.PeriodID, "seller_id", payload.SellerID)
		return nil
	}
	result, err := c.SettlementService.GenerateForSeller(ctx, service.GenerateSellerInput{
		PeriodID:    payload.PeriodID,
		SellerID:    payload.SellerID,
		Recalculate: payload.Recalculate,
	})
	if err != nil {
		return c.settlementTaskError("worker_generate_seller_failed", err, "period_id", payload.PeriodID, "seller_id", payload.SellerID)
	}
	logger.Debugw("worker_generate_seller_done",
		"period_id", payload.PeriodID,
		"seller_id", payload.SellerID,
		"outcome", result.Outcome,
	)
	return nil
}

func (c *Consumer) handleMonthlyClose(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_monthly_close_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.MonthlyClosePayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Warnw("worker_monthly_close_unmarshal_failed", "error", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
	}
	month, err := c.resolveCloseMonth(payload.Month)
	if err != nil {
		logger.Warnw("worker_monthly_close_invalid_month", "month", payload.Month, "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	period, err := c.SettlementPeriodService.EnsureMonthlyPeriod(month)
	if err != nil {
		return c.settlementTaskError("worker_monthly_close_period_failed", err, "month", payload.Month)
	}
	logger.Infow("worker_monthly_close_period_ready", "period_id", period.ID, "name", period.Name, "status", period.Status)

	if c.QueueClient.Enabled() {
		taskID, err := c.QueueClient.EnqueueGeneratePeriod(queue.GeneratePeriodPayload{PeriodID: period.ID})
		if err == nil {
			logger.Infow("worker_monthly_close_enqueued", "period_id", period.ID, "task_id", taskID)
			return nil
		}
		if !errors.Is(err, asynq.ErrDuplicateTask) {
			logger.Warnw("worker_monthly_close_enqueue_failed", "period_id", period.ID, "error", err)
		} else {
			return nil
		}
	}
	report, err := c.SettlementService.GenerateForPeriod(ctx, service.GeneratePeriodInput{PeriodID: period.ID})
	if err != nil {
		return c.settlementTaskError("worker_monthly_close_generate_failed", err, "period_id", period.ID)
	}
	logger.Infow("worker_monthly_close_generated", "period_id", period.ID, "created", report.Created, "failed", report.Failed)
	return nil
}

func (c *Consumer) resolveCloseMonth(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return c.SettlementPeriodService.PreviousMonth(), nil
	}
	return time.ParseInLocation("2006-01", raw, c.Config.Settlement.Location())
}

// settlementTaskError 业务上不可重试的错误直接跳过重试，其余交给 asynq 重试
func (c *Consumer) settlementTaskError(event string, err error, kv ...interface{}) error {
	fields := append(kv, "error", err)
	if isPermanentSettlementError(err) {
		logger.Warnw(event+"_skip_retry", fields...)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	logger.Warnw(event, fields...)
	return err
}

func isPermanentSettlementError(err error) bool {
	switch {
	case errors.Is(err, service.ErrSettlementPeriodNotFound),
		errors.Is(err, service.ErrSettlementPeriodClosed),
		errors.Is(err, service.ErrSellerNotFound),
		errors.Is(err, service.ErrLineItemInconsistent):
		return true
	}
	return false
}
