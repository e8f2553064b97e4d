package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/seller-settlement/internal/models"

	"gorm.io/gorm"
)

// CommissionPolicyRepository 佣金策略数据访问接口
type CommissionPolicyRepository interface {
	GetByID(id uint64) (*models.CommissionPolicy, error)
	Create(policy *models.CommissionPolicy) error
	Update(policy *models.CommissionPolicy) error
	List(filter CommissionPolicyListFilter) ([]models.CommissionPolicy, int64, error)
	ListActiveEffective(asOf time.Time) ([]models.CommissionPolicy, error)
}

// GormCommissionPolicyRepository GORM 佣金策略仓储
type GormCommissionPolicyRepository struct {
	db *gorm.DB
}

// NewCommissionPolicyRepository 创建佣金策略仓储
func NewCommissionPolicyRepository(db *gorm.DB) *GormCommissionPolicyRepository {
	return &GormCommissionPolicyRepository{db: db}
}

// GetByID 按ID获取佣金策略
func (r *GormCommissionPolicyRepository) GetByID(id uint64) (*models.CommissionPolicy, error) {
	var policy models.CommissionPolicy
	if err := r.db.First(&policy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

// Create 创建佣金策略
func (r *GormCommissionPolicyRepository) Create(policy *models.CommissionPolicy) error {
	return r.db.Create(policy).Error
}

// Update 更新佣金策略
func (r *GormCommissionPolicyRepository) Update(policy *models.CommissionPolicy) error {
	return r.db.Save(policy).Error
}

// List 分页查询佣金策略
func (r *GormCommissionPolicyRepository) List(filter CommissionPolicyListFilter) ([]models.CommissionPolicy, int64, error) {
	query := r.db.Model(&models.CommissionPolicy{})
	if scope := strings.TrimSpace(filter.Scope); scope != "" {
		query = query.Where("scope = ?", scope)
	}
	if filter.SellerID > 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if code := strings.TrimSpace(filter.CategoryCode); code != "" {
		query = query.Where("category_code = ?", code)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return countAndFind[models.CommissionPolicy](query, filter.Page, filter.PageSize, "effective_date DESC, id DESC")
}

// ListActiveEffective 查询在 asOf 之前（含）已生效的启用策略，按生效时间倒序
func (r *GormCommissionPolicyRepository) ListActiveEffective(asOf time.Time) ([]models.CommissionPolicy, error) {
	var policies []models.CommissionPolicy
	err := r.db.
		Where("is_active = ? AND effective_date <= ?", true, asOf.UTC()).
		Order("effective_date DESC, id DESC").
		Find(&policies).Error
	if err != nil {
		return nil, err
	}
	return policies, nil
}
