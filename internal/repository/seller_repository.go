package repository

import (
	"errors"
	"strings"

	"github.com/seller-settlement/internal/models"

	"gorm.io/gorm"
)

// SellerRepository 商家数据访问接口
type SellerRepository interface {
	GetByID(id uint64) (*models.Seller, error)
	ListByIDs(ids []uint64) ([]models.Seller, error)
	List(filter SellerListFilter) ([]models.Seller, int64, error)
	Create(seller *models.Seller) error
}

// GormSellerRepository GORM 商家仓储
type GormSellerRepository struct {
	db *gorm.DB
}

// NewSellerRepository 创建商家仓储
func NewSellerRepository(db *gorm.DB) *GormSellerRepository {
	return &GormSellerRepository{db: db}
}

// GetByID 按ID获取商家
func (r *GormSellerRepository) GetByID(id uint64) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.First(&seller, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seller, nil
}

// ListByIDs 批量获取商家
func (r *GormSellerRepository) ListByIDs(ids []uint64) ([]models.Seller, error) {
	var sellers []models.Seller
	if len(ids) == 0 {
		return sellers, nil
	}
	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&sellers).Error; err != nil {
		return nil, err
	}
	return sellers, nil
}

// List 分页查询商家
func (r *GormSellerRepository) List(filter SellerListFilter) ([]models.Seller, int64, error) {
	query := r.db.Model(&models.Seller{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where(likeClause(r.db, "name")+" OR "+likeClause(r.db, "code"), like, like)
	}
	return countAndFind[models.Seller](query, filter.Page, filter.PageSize, "id ASC")
}

// Create 创建商家
func (r *GormSellerRepository) Create(seller *models.Seller) error {
	return r.db.Create(seller).Error
}
