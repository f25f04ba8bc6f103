package ssl

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

type Options struct {
	SSLRedirect bool
	SSLHost     string
	Development bool
}

// SecureHandler 安全响应头，开启 SSLRedirect 时把 http 请求重定向到 SSLHost
func SecureHandler(opts Options) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:        opts.SSLRedirect,
		SSLHost:            opts.SSLHost,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      opts.Development,
	})
	return func(c *gin.Context) {
		// Process 出错时已写入重定向响应
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	}
}
