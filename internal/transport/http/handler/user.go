package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-shop-api/internal/service"
	mdw "go-shop-api/internal/transport/http/middleware"
)

type authBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=32"`
}

type User struct {
	auth *service.Auth
}

func NewUser(auth *service.Auth) *User { return &User{auth: auth} }

func (h *User) Register(c *gin.Context) {
	var in authBody
	if err := c.ShouldBindJSON(&in); err != nil {
		mdw.Fail(c, bindErr(err))
		return
	}
	info, err := h.auth.Register(in.Email, in.Password)
	if err != nil {
		mdw.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *User) LogIn(c *gin.Context) {
	var in authBody
	if err := c.ShouldBindJSON(&in); err != nil {
		mdw.Fail(c, bindErr(err))
		return
	}
	info, err := h.auth.LogIn(in.Email, in.Password)
	if err != nil {
		mdw.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// LogOut 路由上挂了 RequireAuth，token 一定已经校验过
func (h *User) LogOut(c *gin.Context) {
	if err := h.auth.LogOut(c.GetString(mdw.CtxToken)); err != nil {
		mdw.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
