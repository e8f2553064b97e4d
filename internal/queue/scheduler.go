package queue

import (
	"errors"
	"strings"
	"time"

	"github.com/seller-settlement/internal/config"
	"github.com/seller-settlement/internal/logger"

	"github.com/hibiken/asynq"
)

// DefaultMonthlyCron 每月 1 日 03:00 执行月结
const DefaultMonthlyCron = "0 3 1 * *"

// NewScheduler 创建周期任务调度器并注册月结任务
func NewScheduler(queueCfg *config.QueueConfig, settlementCfg config.SettlementConfig, location *time.Location) (*asynq.Scheduler, string, error) {
	if queueCfg == nil || !queueCfg.Enabled {
		return nil, "", errors.New("queue disabled")
	}
	if location == nil {
		location = time.UTC
	}
	spec := strings.TrimSpace(settlementCfg.MonthlyCron)
	if spec == "" {
		spec = DefaultMonthlyCron
	}

	scheduler := asynq.NewScheduler(buildRedisOpt(queueCfg), &asynq.SchedulerOpts{
		Location: location,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Warnw("scheduler_enqueue_failed", "error", err)
				return
			}
			logger.Infow("scheduler_enqueued", "task", info.Type, "task_id", info.ID, "queue", info.Queue)
		},
	})
	task, err := NewMonthlyCloseTask(MonthlyClosePayload{})
	if err != nil {
		return nil, "", err
	}
	entryID, err := scheduler.Register(spec, task, asynq.Queue(CriticalQueue))
	if err != nil {
		return nil, "", err
	}
	return scheduler, entryID, nil
}
