package domain

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"` // bcrypt 哈希
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Session 会话令牌。PublicID 即对外的 bearer token（36 位 uuid）。
// 过期是惰性清理：只有 ValidateAuth 碰到过期行才会删除它。
type Session struct {
	ID          uint      `gorm:"primaryKey"`
	PublicID    string    `gorm:"uniqueIndex;size:36;not null"`
	ExpiresAt   time.Time `gorm:"not null"`
	CreatedByID uint      `gorm:"index;not null"`
	CreatedAt   time.Time
}

func (Session) TableName() string { return "sessions" }

type UserRepository interface {
	Create(u *User) error
	// FindByEmail 查不到返回 (nil, nil)
	FindByEmail(email string) (*User, error)
	EmailTaken(email string) (bool, error)
}

type SessionRepository interface {
	Create(s *Session) error
	// FindByPublicID 只取 ExpiresAt，查不到返回 (nil, nil)
	FindByPublicID(publicID string) (*Session, error)
	DeleteByPublicID(publicID string) error
}
