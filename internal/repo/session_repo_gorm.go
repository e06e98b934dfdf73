package repo

import (
	"errors"

	"gorm.io/gorm"

	"go-shop-api/internal/domain"
)

type SessionRepo struct{ db *gorm.DB }

func NewSessionRepo(db *gorm.DB) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) Create(s *domain.Session) error { return r.db.Create(s).Error }

func (r *SessionRepo) FindByPublicID(publicID string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.Select("expires_at").First(&s, "public_id = ?", publicID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteByPublicID 删除不存在的行不报错（登出对已失效 token 是静默成功）
func (r *SessionRepo) DeleteByPublicID(publicID string) error {
	return r.db.Where("public_id = ?", publicID).Delete(&domain.Session{}).Error
}
