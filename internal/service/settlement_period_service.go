package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/repository"
)

// SettlementPeriodService 结算周期服务
type SettlementPeriodService struct {
	repo           repository.SettlementPeriodRepository
	settlementRepo repository.SettlementRepository
	location       *time.Location
	delayDays      int
	now            func() time.Time
}

// NewSettlementPeriodService 创建结算周期服务
func NewSettlementPeriodService(repo repository.SettlementPeriodRepository, settlementRepo repository.SettlementRepository, location *time.Location, delayDays int) *SettlementPeriodService {
	if location == nil {
		location = time.UTC
	}
	if delayDays <= 0 {
		delayDays = 1
	}
	return &SettlementPeriodService{
		repo:           repo,
		settlementRepo: settlementRepo,
		location:       location,
		delayDays:      delayDays,
		now:            time.Now,
	}
}

// CreateSettlementPeriodInput 创建结算周期输入
type CreateSettlementPeriodInput struct {
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	SettlementDate time.Time
}

// Create 创建结算周期，周期之间不允许重叠
func (s *SettlementPeriodService) Create(input CreateSettlementPeriodInput) (*models.SettlementPeriod, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrSettlementPeriodInvalid)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || !input.StartDate.Before(input.EndDate) {
		return nil, fmt.Errorf("%w: start_date must be before end_date", ErrSettlementPeriodInvalid)
	}
	if !input.SettlementDate.After(input.EndDate) {
		return nil, fmt.Errorf("%w: settlement_date must be after end_date", ErrSettlementPeriodInvalid)
	}

	existing, err := s.repo.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementPeriodFetchFailed, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: name %s already used", ErrSettlementPeriodOverlap, name)
	}
	overlap, err := s.repo.HasOverlap(input.StartDate, input.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementPeriodFetchFailed, err)
	}
	if overlap {
		return nil, ErrSettlementPeriodOverlap
	}

	period := &models.SettlementPeriod{
		Name:           name,
		StartDate:      input.StartDate.UTC(),
		EndDate:        input.EndDate.UTC(),
		SettlementDate: input.SettlementDate.UTC(),
		Status:         constants.SettlementPeriodStatusPreparing,
	}
	if err := s.repo.Create(period); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSettlementPeriodOverlap
		}
		return nil, fmt.Errorf("%w: %v", ErrSettlementPeriodUpdateFailed, err)
	}
	return period, nil
}

// EnsureMonthlyPeriod 确保 month 所在自然月的结算周期存在，返回已有或新建的周期
func (s *SettlementPeriodService) EnsureMonthlyPeriod(month time.Time) (*models.SettlementPeriod, error) {
	local := month.In(s.location)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.location)
	end := start.AddDate(0, 1, 0)
	name := start.Format("2006-01")

	existing, err := s.repo.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementPeriodFetchFailed, err)
	}
	if existing != nil {
		return existing, nil
	}
	period, err := s.Create(CreateSettlementPeriodInput{
		Name:           name,
		StartDate:      start,
		EndDate:        end,
		SettlementDate: end.AddDate(0, 0, s.delayDays),
	})
	if errors.Is(err, ErrSettlementPeriodOverlap) {
		// 并发创建时以已存在的为准
		if existing, getErr := s.repo.GetByName(name); getErr == nil && existing != nil {
			return existing, nil
		}
	}
	return period, err
}

// PreviousMonth 返回上一个自然月内的某个时间点
func (s *SettlementPeriodService) PreviousMonth() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location).AddDate(0, -1, 0)
}

// Get 获取结算周期
func (s *SettlementPeriodService) Get(id uint64) (*models.SettlementPeriod, error) {
	if id == 0 {
		return nil, ErrSettlementPeriodNotFound
	}
	period, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementPeriodFetchFailed, err)
	}
	if period == nil {
		return nil, ErrSettlementPeriodNotFound
	}
	return period, nil
}

// List 分页查询结算周期
func (s *SettlementPeriodService) List(filter repository.SettlementPeriodListFilter) ([]models.SettlementPeriod, int64, error) {
	rows, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSettlementPeriodFetchFailed, err)
	}
	return rows, total, nil
}

// Complete 完成结算周期，要求周期内结算单全部为终态
func (s *SettlementPeriodService) Complete(id uint64) (*models.SettlementPeriod, error) {
	period, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if period.Status == constants.SettlementPeriodStatusCompleted {
		return nil, ErrSettlementPeriodClosed
	}
	open, err := s.settlementRepo.CountByPeriodStatuses(id, openSettlementStatuses())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFetchFailed, err)
	}
	if open > 0 {
		return nil, fmt.Errorf("%w: %d open", ErrSettlementPeriodHasOpenSettlements, open)
	}
	now := s.now().UTC()
	if err := s.repo.MarkCompleted(id, now); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, ErrSettlementPeriodClosed
		}
		return nil, fmt.Errorf("%w: %v", ErrSettlementPeriodUpdateFailed, err)
	}
	period.Status = constants.SettlementPeriodStatusCompleted
	period.CompletedAt = &now
	return period, nil
}
