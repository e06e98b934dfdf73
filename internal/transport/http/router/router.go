package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-shop-api/internal/apperr"
	"go-shop-api/internal/service"
	"go-shop-api/internal/transport/http/handler"
	mdw "go-shop-api/internal/transport/http/middleware"
	"go-shop-api/internal/transport/http/response"
)

// NewEngine 路由表。每条路由的中间件顺序是刻意的：
// 先鉴权再查资源存在性，未登录的调用方探测不到资源 id。
func NewEngine(l *zap.Logger, auth *service.Auth, products *service.Product) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(2<<20), // 照片限 2MB
		mdw.Timeout(10*time.Second),
		ginzap.CustomRecoveryWithZap(l, true, func(c *gin.Context, _ any) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Unknown)
		}),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
		mdw.Errors(l), // 最后注册，包住整条业务链
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	uh := handler.NewUser(auth)
	ph := handler.NewProduct(products)

	requireAuth := mdw.RequireAuth(auth)
	productExists := mdw.RequireExists(products.ProductExists, mdw.PathID("productId"), apperr.ErrProductNotFound)
	photoExists := mdw.RequireExists(products.PhotoExists, mdw.PathID("photoId"), apperr.ErrPhotoNotFound)

	users := r.Group("/users")
	{
		users.POST("/register", uh.Register)
		users.POST("/log-in", uh.LogIn)
		users.POST("/log-out", requireAuth, uh.LogOut)
	}

	prods := r.Group("/products", requireAuth)
	{
		prods.POST("", ph.Create)
		prods.GET("", ph.List)
		prods.PATCH("/:productId", productExists, ph.Update)
		prods.DELETE("/:productId", productExists, ph.Delete)
		prods.POST("/:productId/photos", productExists, ph.UploadPhoto)
		prods.DELETE("/:productId/photos/:photoId", productExists, photoExists, ph.DeletePhoto)
	}

	return r
}
