// Package testutil provides in-memory implementations of the persistence and
// blob-store ports, shared by service and router tests.
package testutil

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"go-shop-api/internal/domain"
)

type UserRepo struct {
	mu    sync.Mutex
	seq   uint
	users map[string]*domain.User // key: email
}

func NewUserRepo() *UserRepo { return &UserRepo{users: map[string]*domain.User{}} }

func (r *UserRepo) Create(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	u.ID = r.seq
	cp := *u
	r.users[u.Email] = &cp
	return nil
}

func (r *UserRepo) FindByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) EmailTaken(email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[email]
	return ok, nil
}

type SessionRepo struct {
	mu       sync.Mutex
	seq      uint
	sessions map[string]*domain.Session // key: public id
}

func NewSessionRepo() *SessionRepo { return &SessionRepo{sessions: map[string]*domain.Session{}} }

func (r *SessionRepo) Create(s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = r.seq
	cp := *s
	r.sessions[s.PublicID] = &cp
	return nil
}

func (r *SessionRepo) FindByPublicID(publicID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[publicID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepo) DeleteByPublicID(publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, publicID)
	return nil
}

// Count 测试用：当前存活的会话数
func (r *SessionRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type ProductRepo struct {
	mu       sync.Mutex
	seq      uint
	products map[uint]*domain.Product
}

func NewProductRepo() *ProductRepo { return &ProductRepo{products: map[uint]*domain.Product{}} }

func (r *ProductRepo) Create(p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = r.seq
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) FindPage(q domain.ProductPage) ([]domain.ProductRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]domain.ProductRow, 0)
	for _, p := range r.products {
		if q.NameContains != "" && !strings.Contains(p.Name, q.NameContains) {
			continue
		}
		rows = append(rows, domain.ProductRow{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	sort.Slice(rows, func(i, j int) bool {
		var less bool
		switch q.SortBy {
		case "name":
			less = rows[i].Name < rows[j].Name
		case "price":
			less = rows[i].Price < rows[j].Price
		default:
			less = rows[i].ID < rows[j].ID
		}
		if q.Desc {
			return !less
		}
		return less
	})
	if q.Offset >= len(rows) {
		return []domain.ProductRow{}, nil
	}
	end := q.Offset + q.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[q.Offset:end], nil
}

func (r *ProductRepo) UpdateFields(id uint, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil
	}
	for col, v := range fields {
		switch col {
		case "name":
			p.Name = v.(string)
		case "description":
			p.Description = v.(string)
		case "price":
			p.Price = v.(float64)
		case "tax_percentage":
			p.TaxPercentage = v.(float64)
		case "in_stock":
			p.InStock = v.(bool)
		case "is_active":
			p.IsActive = v.(bool)
		}
	}
	return nil
}

func (r *ProductRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *ProductRepo) Exists(id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.products[id]
	return ok, nil
}

func (r *ProductRepo) Get(id uint) *domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

type PhotoRepo struct {
	mu     sync.Mutex
	seq    uint
	photos map[uint]*domain.ProductPhoto
}

func NewPhotoRepo() *PhotoRepo { return &PhotoRepo{photos: map[uint]*domain.ProductPhoto{}} }

func (r *PhotoRepo) Create(p *domain.ProductPhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = r.seq
	cp := *p
	r.photos[p.ID] = &cp
	return nil
}

func (r *PhotoRepo) DeleteReturning(id uint) (*domain.ProductPhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.photos[id]
	if !ok {
		return nil, nil
	}
	delete(r.photos, id)
	cp := *p
	return &cp, nil
}

func (r *PhotoRepo) Exists(id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.photos[id]
	return ok, nil
}

// BlobStore 记录调用顺序并保存对象内容，可注入失败
type BlobStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Calls     []string // "upload <key>" / "delete <key>"
	UploadErr error
	DeleteErr error
}

func NewBlobStore() *BlobStore { return &BlobStore{Objects: map[string][]byte{}} }

func (b *BlobStore) Upload(_ context.Context, key string, r io.Reader, _ int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls = append(b.Calls, "upload "+key)
	if b.UploadErr != nil {
		return b.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.Objects[key] = data
	return nil
}

func (b *BlobStore) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls = append(b.Calls, "delete "+key)
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	delete(b.Objects, key)
	return nil
}
