package domain

import "time"

type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:32;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Price         float64   `gorm:"not null" json:"price"`
	TaxPercentage float64   `gorm:"not null" json:"taxPercentage"`
	InStock       bool      `gorm:"not null" json:"inStock"`
	IsActive      bool      `gorm:"not null" json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// ProductPhoto 的 Name 由服务端生成（uuid），对象存储的 key 恒为 Name+"."+Extension
type ProductPhoto struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"uniqueIndex;size:36;not null" json:"name"`
	Extension string `gorm:"size:16;not null" json:"extension"`
	ProductID uint   `gorm:"index;not null" json:"productId"`
	CreatedAt time.Time
}

func (ProductPhoto) TableName() string { return "product_photos" }

// ProductRow 列表页的投影行
type ProductRow struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ProductPage 列表查询参数，分页换算（skip=25*(page-1)）在 service 层完成
type ProductPage struct {
	NameContains string // 空串表示不过滤
	SortBy       string // id / name / price
	Desc         bool
	Limit        int
	Offset       int
}

type ProductRepository interface {
	Create(p *Product) error
	FindPage(q ProductPage) ([]ProductRow, error)
	// UpdateFields 部分更新，fields 的 key 为列名
	UpdateFields(id uint, fields map[string]any) error
	Delete(id uint) error
	Exists(id uint) (bool, error)
}

type PhotoRepository interface {
	Create(p *ProductPhoto) error
	// DeleteReturning 删除行并返回删除前的内容，查不到返回 (nil, nil)
	DeleteReturning(id uint) (*ProductPhoto, error)
	Exists(id uint) (bool, error)
}
