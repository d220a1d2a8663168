package handler

import (
	"errors"
	"net/http"

	"github.com/contentgallery/internal/db"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

type loginPayload struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login 处理管理员登录请求
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBind(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "请输入用户名和密码")
		return
	}

	user, err := db.Authenticate(a.db.WithContext(c.Request.Context()), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, db.ErrInvalidCredentials) {
			a.logger.Warn("admin login rejected", zap.String("username", payload.Username), zap.String("client_ip", c.ClientIP()))
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "登录失败")
		return
	}

	// 设置会话
	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": translate(c, "登录成功"), "username": user.Username})
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.Error(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": translate(c, "已退出登录")})
}

// AuthRequired 是一个简单的认证中间件
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserIDKey) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": translate(c, "请先登录")})
			return
		}
		c.Next()
	}
}
