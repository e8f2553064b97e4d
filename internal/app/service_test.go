package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seller-settlement/internal/config"
	"github.com/seller-settlement/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type stubService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *stubService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	failing := &stubService{name: "failing", startErr: errors.New("bind failed")}
	blocking := &stubService{name: "blocking", block: true}
	runner := NewRunner(failing, blocking)

	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "bind failed" {
		t.Fatalf("expected start error, got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("expected every service to be stopped")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	blocking := &stubService{name: "blocking", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRunner(blocking).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancel should be a clean exit, got %v", err)
	}
}

func openAppTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:app_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{NowFunc: models.UTCNow})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func TestBuildRunnerModes(t *testing.T) {
	db := openAppTestDB(t)
	cfg := &config.Config{
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: "0", Mode: "debug"},
		Settlement: config.SettlementConfig{Concurrency: 1, Timezone: "UTC", SnowflakeNode: 1},
	}

	if _, _, err := BuildRunner(cfg, db, "batch"); err == nil {
		t.Fatalf("expected unknown mode error")
	}
	if _, _, err := BuildRunner(cfg, db, ModeWorker); err == nil {
		t.Fatalf("worker mode requires the queue")
	}

	runner, container, err := BuildRunner(cfg, db, ModeAll)
	if err != nil {
		t.Fatalf("build runner failed: %v", err)
	}
	defer container.Close()
	if len(runner.services) != 1 || runner.services[0].Name() != "api" {
		t.Fatalf("queue disabled should start http only, got %d services", len(runner.services))
	}
}

func TestNewHTTPServiceAppliesTimeouts(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{
		Host:                     "127.0.0.1",
		Port:                     "9090",
		ReadHeaderTimeoutSeconds: 5,
		WriteTimeoutSeconds:      60,
	}, nil)
	if svc.server.Addr != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr: %s", svc.server.Addr)
	}
	if svc.server.ReadHeaderTimeout != 5*time.Second || svc.server.WriteTimeout != time.Minute {
		t.Fatalf("unexpected timeouts: %v/%v", svc.server.ReadHeaderTimeout, svc.server.WriteTimeout)
	}
	if svc.server.ReadTimeout != 0 || svc.server.IdleTimeout != 0 {
		t.Fatalf("unset timeouts should stay unlimited")
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop before start should be a no-op, got %v", err)
	}
}

func TestRunnerRejectsNilService(t *testing.T) {
	if err := NewRunner(nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected nil service error")
	}
}

func TestDefaultSignals(t *testing.T) {
	if got := DefaultSignals(); len(got) != 2 {
		t.Fatalf("expected interrupt and sigterm, got %v", got)
	}
}
