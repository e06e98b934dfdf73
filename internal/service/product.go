package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-shop-api/internal/apperr"
	"go-shop-api/internal/core/cache"
	"go-shop-api/internal/domain"
	"go-shop-api/pkg/utils"
)

// PageSize 列表页固定 25 条，page 从 1 起
const PageSize = 25

const (
	listCacheTTL = 30 * time.Second
	listVerKey   = "products:list:ver"
)

// BlobStore is the object-storage port the photo operations need.
type BlobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}

type ProductInfo struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	TaxPercentage float64 `json:"taxPercentage"`
	InStock       bool    `json:"inStock"`
	IsActive      bool    `json:"isActive"`
}

// ProductPatch 部分更新，nil 字段不动
type ProductPatch struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	TaxPercentage *float64 `json:"taxPercentage"`
	InStock       *bool    `json:"inStock"`
	IsActive      *bool    `json:"isActive"`
}

// Fields returns the patch as column→value pairs, skipping unset fields.
func (p ProductPatch) Fields() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Price != nil {
		m["price"] = *p.Price
	}
	if p.TaxPercentage != nil {
		m["tax_percentage"] = *p.TaxPercentage
	}
	if p.InStock != nil {
		m["in_stock"] = *p.InStock
	}
	if p.IsActive != nil {
		m["is_active"] = *p.IsActive
	}
	return m
}

// Product owns catalog CRUD and photo attachment. Photo writes hit the
// database row first and the blob second, with no compensation when the
// second step fails.
type Product struct {
	products domain.ProductRepository
	photos   domain.PhotoRepository
	blobs    BlobStore
	cache    *cache.Cache // optional, nil disables list caching
	log      *zap.Logger
}

func NewProduct(products domain.ProductRepository, photos domain.PhotoRepository, blobs BlobStore, c *cache.Cache, log *zap.Logger) *Product {
	return &Product{products: products, photos: photos, blobs: blobs, cache: c, log: log}
}

func (s *Product) Create(info ProductInfo) (uint, error) {
	p := &domain.Product{
		Name:          info.Name,
		Description:   info.Description,
		Price:         info.Price,
		TaxPercentage: info.TaxPercentage,
		InStock:       info.InStock,
		IsActive:      info.IsActive,
	}
	if err := s.products.Create(p); err != nil {
		return 0, err
	}
	s.bumpListVer(context.Background())
	return p.ID, nil
}

func (s *Product) List(ctx context.Context, page int, sort, sortBy, query string) ([]domain.ProductRow, error) {
	q := domain.ProductPage{
		NameContains: query,
		SortBy:       sortBy,
		Desc:         sort == "desc",
		Limit:        PageSize,
		Offset:       PageSize * (page - 1),
	}
	if s.cache == nil {
		return s.products.FindPage(q)
	}
	// 带版本号的 key：任何写操作 bump 版本，老页面自然失效
	key := fmt.Sprintf("products:list:v%d:p%d:%s:%s:q=%s",
		s.cache.Ver(ctx, listVerKey), page, sortBy, sort, query)
	rows, err := cache.GetOrLoadJSON(s.cache, ctx, key, listCacheTTL,
		func(context.Context) ([]domain.ProductRow, error) {
			return s.products.FindPage(q)
		})
	if err != nil {
		s.log.Warn("product list cache bypassed", zap.Error(err))
		return s.products.FindPage(q)
	}
	if rows == nil {
		rows = []domain.ProductRow{}
	}
	return rows, nil
}

func (s *Product) Update(id uint, patch ProductPatch) error {
	if err := s.products.UpdateFields(id, patch.Fields()); err != nil {
		return err
	}
	s.bumpListVer(context.Background())
	return nil
}

// Delete removes the product row only. Photo rows and blobs stay behind.
func (s *Product) Delete(id uint) error {
	if err := s.products.Delete(id); err != nil {
		return err
	}
	s.bumpListVer(context.Background())
	return nil
}

func (s *Product) ProductExists(id uint) (bool, error) { return s.products.Exists(id) }
func (s *Product) PhotoExists(id uint) (bool, error)   { return s.photos.Exists(id) }

// UploadPhoto creates the row first, then writes the blob under
// name+"."+extension. The row holds the generated base name.
// A blob failure after the row commit leaves the two stores inconsistent.
func (s *Product) UploadPhoto(ctx context.Context, productID uint, fileName string, r io.Reader, size int64) (uint, error) {
	ext := ""
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		ext = fileName[i+1:]
	}
	photo := &domain.ProductPhoto{
		Name:      utils.NewID(),
		Extension: ext,
		ProductID: productID,
	}
	if err := s.photos.Create(photo); err != nil {
		return 0, err
	}
	key := photo.Name + "." + photo.Extension
	if err := s.blobs.Upload(ctx, key, r, size); err != nil {
		s.log.Error("photo blob write failed after row commit",
			zap.Uint("photoId", photo.ID), zap.String("key", key), zap.Error(err))
		return 0, err
	}
	return photo.ID, nil
}

// DeletePhoto removes the row first (to learn name/extension), then the
// blob. Same inconsistency window in reverse.
func (s *Product) DeletePhoto(ctx context.Context, id uint) error {
	photo, err := s.photos.DeleteReturning(id)
	if err != nil {
		return err
	}
	if photo == nil {
		// 中间件先校验过存在性，走到这只能是竞态
		return apperr.ErrPhotoNotFound
	}
	key := photo.Name + "." + photo.Extension
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Error("photo blob delete failed after row delete",
			zap.Uint("photoId", id), zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *Product) bumpListVer(ctx context.Context) {
	if s.cache != nil {
		s.cache.Bump(ctx, listVerKey)
	}
}
