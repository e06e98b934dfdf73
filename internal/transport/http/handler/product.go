package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"go-shop-api/internal/apperr"
	"go-shop-api/internal/service"
	mdw "go-shop-api/internal/transport/http/middleware"
)

// 绑定失败统一按 validation 处理，超限的 body 单独映射成 fileIsTooBig
func bindErr(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return apperr.ErrFileTooBig
	}
	return apperr.Validation(err.Error())
}

// 金额类字段最多两位小数
func maxTwoDecimals(f float64) bool {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s)-i-1 <= 2
	}
	return true
}

func validatePatch(p *service.ProductPatch) error {
	if p.Name != nil && len(*p.Name) > 32 {
		return apperr.Validation("name must be at most 32 characters")
	}
	if p.Price != nil && (*p.Price < 0 || !maxTwoDecimals(*p.Price)) {
		return apperr.Validation("price must be non-negative with at most 2 decimals")
	}
	if p.TaxPercentage != nil && (*p.TaxPercentage < 0 || *p.TaxPercentage > 100 || !maxTwoDecimals(*p.TaxPercentage)) {
		return apperr.Validation("taxPercentage must be between 0 and 100 with at most 2 decimals")
	}
	return nil
}

// 创建时六个字段都必填，零值合法所以全用指针承接
type productBody struct {
	Name          *string  `json:"name" binding:"required,max=32"`
	Description   *string  `json:"description" binding:"required"`
	Price         *float64 `json:"price" binding:"required"`
	TaxPercentage *float64 `json:"taxPercentage" binding:"required"`
	InStock       *bool    `json:"inStock" binding:"required"`
	IsActive      *bool    `json:"isActive" binding:"required"`
}

type listQuery struct {
	Page   int    `form:"page" binding:"required,min=1"`
	Sort   string `form:"sort" binding:"required,oneof=asc desc"`
	SortBy string `form:"sortBy" binding:"required,oneof=id name price"`
	Query  string `form:"query"`
}

type Product struct {
	products  *service.Product
	productID mdw.IDAccessor
	photoID   mdw.IDAccessor
}

func NewProduct(products *service.Product) *Product {
	return &Product{
		products:  products,
		productID: mdw.PathID("productId"),
		photoID:   mdw.PathID("photoId"),
	}
}

func (h *Product) Create(c *gin.Context) {
	var in productBody
	if err := c.ShouldBindJSON(&in); err != nil {
		mdw.Fail(c, bindErr(err))
		return
	}
	info := service.ProductInfo{
		Name:          *in.Name,
		Description:   *in.Description,
		Price:         *in.Price,
		TaxPercentage: *in.TaxPercentage,
		InStock:       *in.InStock,
		IsActive:      *in.IsActive,
	}
	patch := service.ProductPatch{Name: in.Name, Price: in.Price, TaxPercentage: in.TaxPercentage}
	if err := validatePatch(&patch); err != nil {
		mdw.Fail(c, err)
		return
	}
	id, err := h.products.Create(info)
	if err != nil {
		mdw.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Product) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		mdw.Fail(c, bindErr(err))
		return
	}
	rows, err := h.products.List(c.Request.Context(), q.Page, q.Sort, q.SortBy, q.Query)
	if err != nil {
		mdw.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Product) Update(c *gin.Context) {
	id, err := h.productID(c)
	if err != nil {
		mdw.Fail(c, err)
		return
	}
	var patch service.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		mdw.Fail(c, bindErr(err))
		return
	}
	if len(patch.Fields()) == 0 {
		mdw.Fail(c, apperr.Validation("at least one field is required"))
		return
	}
	if err := validatePatch(&patch); err != nil {
		mdw.Fail(c, err)
		return
	}
	if err := h.products.Update(id, patch); err != nil {
		mdw.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Product) Delete(c *gin.Context) {
	id, err := h.productID(c)
	if err != nil {
		mdw.Fail(c, err)
		return
	}
	if err := h.products.Delete(id); err != nil {
		mdw.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Product) UploadPhoto(c *gin.Context) {
	id, err := h.productID(c)
	if err != nil {
		mdw.Fail(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			mdw.Fail(c, apperr.ErrFileTooBig)
		} else {
			mdw.Fail(c, apperr.Validation("file is required"))
		}
		return
	}
	f, err := fh.Open()
	if err != nil {
		mdw.Fail(c, err)
		return
	}
	defer f.Close()

	photoID, err := h.products.UploadPhoto(c.Request.Context(), id, fh.Filename, f, fh.Size)
	if err != nil {
		mdw.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": photoID})
}

func (h *Product) DeletePhoto(c *gin.Context) {
	id, err := h.photoID(c)
	if err != nil {
		mdw.Fail(c, err)
		return
	}
	if err := h.products.DeletePhoto(c.Request.Context(), id); err != nil {
		mdw.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
