package repo

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-shop-api/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(p *domain.Product) error { return r.db.Create(p).Error }

func (r *ProductRepo) FindPage(q domain.ProductPage) ([]domain.ProductRow, error) {
	tx := r.db.Model(&domain.Product{}).Select("id", "name", "price")
	if q.NameContains != "" {
		tx = tx.Where("name LIKE ?", "%"+q.NameContains+"%")
	}
	tx = tx.Order(clause.OrderByColumn{
		Column: clause.Column{Name: q.SortBy},
		Desc:   q.Desc,
	})
	rows := make([]domain.ProductRow, 0)
	if err := tx.Limit(q.Limit).Offset(q.Offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	// 越界页返回空列表而不是错误
	return rows, nil
}

func (r *ProductRepo) UpdateFields(id uint, fields map[string]any) error {
	return r.db.Model(&domain.Product{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 只删 products 行，照片行和 blob 不级联
func (r *ProductRepo) Delete(id uint) error {
	return r.db.Where("id = ?", id).Delete(&domain.Product{}).Error
}

func (r *ProductRepo) Exists(id uint) (bool, error) {
	var n int64
	if err := r.db.Model(&domain.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
