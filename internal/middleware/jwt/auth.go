package jwt

import (
	"context"
	"strings"

	"TutorHub/internal/modules/access/domain/scope"
	"TutorHub/pkg/back"
	"TutorHub/pkg/xerr"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Resolver 将 bearer token 解析为身份
type Resolver interface {
	Resolve(ctx context.Context, credential string) (scope.Identity, error)
}

// Auth 从 Authorization 头解析身份并写入上下文
func Auth(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, resolver, bearer(c))
	}
}

// AuthQuery 仅用于 websocket 握手：浏览器无法设置请求头，允许退回到 ?token=
func AuthQuery(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := bearer(c)
		if credential == "" {
			credential = c.Query("token")
		}
		authenticate(c, resolver, credential)
	}
}

func bearer(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func authenticate(c *gin.Context, resolver Resolver, credential string) {
	if credential == "" {
		back.Error(c, xerr.Unauthorized, xerr.ErrUnauthenticated.Message)
		c.Abort()
		return
	}

	identity, err := resolver.Resolve(c.Request.Context(), credential)
	if err != nil {
		back.Result(c, nil, err)
		c.Abort()
		return
	}

	c.Set(identityKey, identity)
	c.Set("uuid", identity.ID)
	c.Set("username", identity.Username)
	c.Next()
}

// CurrentIdentity 取出 Auth 写入的身份，未登录时返回零值
func CurrentIdentity(c *gin.Context) scope.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return scope.Identity{}
	}
	identity, _ := v.(scope.Identity)
	return identity
}
