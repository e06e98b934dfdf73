package repo

import (
	"errors"

	"gorm.io/gorm"

	"go-shop-api/internal/domain"
)

type PhotoRepo struct{ db *gorm.DB }

func NewPhotoRepo(db *gorm.DB) *PhotoRepo { return &PhotoRepo{db: db} }

func (r *PhotoRepo) Create(p *domain.ProductPhoto) error { return r.db.Create(p).Error }

// DeleteReturning 先查后删（非事务），拿到 name/extension 供调用方删 blob
func (r *PhotoRepo) DeleteReturning(id uint) (*domain.ProductPhoto, error) {
	var p domain.ProductPhoto
	err := r.db.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.Where("id = ?", id).Delete(&domain.ProductPhoto{}).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PhotoRepo) Exists(id uint) (bool, error) {
	var n int64
	if err := r.db.Model(&domain.ProductPhoto{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
