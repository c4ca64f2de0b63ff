package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-management-api/internal/interface/http"
)

// AuthModule registers the public registration and login endpoints.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", m.Handler.Signup)
	rg.POST("/auth/login", m.Handler.Login)
}
