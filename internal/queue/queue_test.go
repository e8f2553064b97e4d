package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/seller-settlement/internal/config"
)

func TestNewGeneratePeriodTaskPayload(t *testing.T) {
	task, err := NewGeneratePeriodTask(GeneratePeriodPayload{PeriodID: 42, Recalculate: true})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskGeneratePeriod {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload["period_id"] != "42" || payload["recalculate"] != true {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("expected disabled client")
	}
	id, err := client.EnqueueGenerateSeller(GenerateSellerPayload{PeriodID: 1, SellerID: 2})
	if err != nil || id != "" {
		t.Fatalf("expected noop enqueue, got id=%q err=%v", id, err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] != 6 || cfg.Queues[DefaultQueue] != 3 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

func TestNewSchedulerRequiresQueue(t *testing.T) {
	if _, _, err := NewScheduler(&config.QueueConfig{Enabled: false}, config.SettlementConfig{}, time.UTC); err == nil {
		t.Fatalf("expected error for disabled queue")
	}
}
