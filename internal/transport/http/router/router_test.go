package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-shop-api/internal/service"
	"go-shop-api/internal/testutil"
)

type env struct {
	r     *gin.Engine
	blobs *testutil.BlobStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	blobs := testutil.NewBlobStore()
	auth := service.NewAuth(testutil.NewUserRepo(), testutil.NewSessionRepo(), 7*24*time.Hour, zap.NewNop())
	products := service.NewProduct(testutil.NewProductRepo(), testutil.NewPhotoRepo(), blobs, nil, zap.NewNop())
	return &env{r: NewEngine(zap.NewNop(), auth, products), blobs: blobs}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Basic "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) register(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/users/register", "", gin.H{
		"email": email, "password": "password-123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.SessionID, 36)
	return out.SessionID
}

func errKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/users/register", "", gin.H{
		"email": "u@example.com", "password": "password-123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var info struct {
		UserEmail        string    `json:"userEmail"`
		SessionID        string    `json:"sessionId"`
		SessionExpiresAt time.Time `json:"sessionExpiresAt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "u@example.com", info.UserEmail)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), info.SessionExpiresAt, 5*time.Second)

	// 重复邮箱
	w = e.do(t, http.MethodPost, "/users/register", "", gin.H{
		"email": "u@example.com", "password": "password-123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "emailInUse", errKind(t, w))

	// 登录拿到新会话
	w = e.do(t, http.MethodPost, "/users/log-in", "", gin.H{
		"email": "u@example.com", "password": "password-123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// 错密码
	w = e.do(t, http.MethodPost, "/users/log-in", "", gin.H{
		"email": "u@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "wrongPassword", errKind(t, w))
}

func TestRegister_BadBody(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/users/register", "", gin.H{
		"email": "not-an-email", "password": "password-123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", errKind(t, w))

	w = e.do(t, http.MethodPost, "/users/register", "", gin.H{
		"email": "u@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", errKind(t, w))
}

func TestLogOut(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "u@example.com")

	w := e.do(t, http.MethodPost, "/users/log-out", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// 登出后同一个 token 直接 401
	w = e.do(t, http.MethodPost, "/users/log-out", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "tokenDoesNotExist", errKind(t, w))
}

func TestProducts_RequireAuth(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/products?page=1&sort=asc&sortBy=id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code) // 头部形状不合法
	assert.Equal(t, "validation", errKind(t, w))

	w = e.do(t, http.MethodGet, "/products?page=1&sort=asc&sortBy=id",
		"00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "tokenDoesNotExist", errKind(t, w))
}

// 注册 → 建品 → 改价 → 按价升序列出 → 删品 → 列表不再包含
func TestProductLifecycle(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "u@example.com")

	w := e.do(t, http.MethodPost, "/products", token, gin.H{
		"name": "lamp", "description": "desk lamp",
		"price": 9.99, "taxPercentage": 5.00,
		"inStock": true, "isActive": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	w = e.do(t, http.MethodPatch, fmt.Sprintf("/products/%d", created.ID), token, gin.H{
		"price": 19.99,
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/products?page=1&sort=asc&sortBy=price", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []struct {
		ID    uint    `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, created.ID, rows[0].ID)
	assert.Equal(t, 19.99, rows[0].Price)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", created.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, "/products?page=1&sort=asc&sortBy=price", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Empty(t, rows)
}

func TestProducts_NotFoundBeforeHandler(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "u@example.com")

	w := e.do(t, http.MethodDelete, "/products/999", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "productDoesNotExist", errKind(t, w))
}

func TestProducts_PatchNeedsAField(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "u@example.com")

	w := e.do(t, http.MethodPost, "/products", token, gin.H{
		"name": "lamp", "description": "", "price": 1.0,
		"taxPercentage": 0.0, "inStock": true, "isActive": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = e.do(t, http.MethodPatch, fmt.Sprintf("/products/%d", created.ID), token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", errKind(t, w))
}

// 建品 → 传照片 → 删照片 → 再删同一张报 productPhotoDoesNotExist
func TestPhotoLifecycle(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "u@example.com")

	w := e.do(t, http.MethodPost, "/products", token, gin.H{
		"name": "lamp", "description": "", "price": 1.0,
		"taxPercentage": 0.0, "inStock": true, "isActive": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// multipart 上传
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "star.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/products/%d/photos", created.ID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Basic "+token)
	rec := httptest.NewRecorder()
	e.r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var photo struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photo))
	require.NotZero(t, photo.ID)
	assert.Len(t, e.blobs.Objects, 1)

	path := fmt.Sprintf("/products/%d/photos/%d", created.ID, photo.ID)
	w = e.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, e.blobs.Objects)

	w = e.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "productPhotoDoesNotExist", errKind(t, w))
}

// 金额字段最多两位小数，创建和部分更新走同一套校验
func TestProducts_MoneyDecimalValidation(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "u@example.com")

	w := e.do(t, http.MethodPost, "/products", token, gin.H{
		"name": "lamp", "description": "", "price": 1.0,
		"taxPercentage": 0.0, "inStock": true, "isActive": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	patchPath := fmt.Sprintf("/products/%d", created.ID)

	cases := []struct {
		name   string
		method string
		path   string
		body   gin.H
	}{
		{"create price 3 decimals", http.MethodPost, "/products", gin.H{
			"name": "lamp", "description": "", "price": 9.999,
			"taxPercentage": 5.0, "inStock": true, "isActive": true,
		}},
		{"create tax 3 decimals", http.MethodPost, "/products", gin.H{
			"name": "lamp", "description": "", "price": 9.99,
			"taxPercentage": 5.555, "inStock": true, "isActive": true,
		}},
		{"patch price 3 decimals", http.MethodPatch, patchPath, gin.H{"price": 19.999}},
		{"patch tax above 100", http.MethodPatch, patchPath, gin.H{"taxPercentage": 100.01}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(t, tc.method, tc.path, token, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "validation", errKind(t, w))
		})
	}
}

// 请求体超过 2MB 上限统一报 fileIsTooBig
func TestBodyLimit_FileTooBig(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "u@example.com")

	w := e.do(t, http.MethodPost, "/products", token, gin.H{
		"name": "lamp", "description": "", "price": 1.0,
		"taxPercentage": 0.0, "inStock": true, "isActive": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	t.Run("multipart upload", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "huge.png")
		require.NoError(t, err)
		_, err = fw.Write(bytes.Repeat([]byte("a"), 3<<20))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/products/%d/photos", created.ID), &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Basic "+token)
		w := httptest.NewRecorder()
		e.r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "fileIsTooBig", errKind(t, w))
		assert.Empty(t, e.blobs.Objects)
	})

	t.Run("json body", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/products", token, gin.H{
			"name": "lamp", "description": strings.Repeat("a", 3<<20), "price": 1.0,
			"taxPercentage": 0.0, "inStock": true, "isActive": true,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "fileIsTooBig", errKind(t, w))
	})
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
