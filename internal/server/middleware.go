package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"webopt/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID はリクエストIDを付与する
// クライアントから渡された値があればそれを使う
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestIDFrom はコンテキストからリクエストIDを取り出す
func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// accessLogger はリクエストごとに1行のログを出力する
func accessLogger() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output: log.Writer(),
		Formatter: func(p gin.LogFormatterParams) string {
			id, _ := p.Keys[requestIDKey].(string)
			return fmt.Sprintf("%s リクエスト id=%s method=%s path=%s status=%d bytes=%d duration=%s remote=%s\n",
				p.TimeStamp.Format("2006/01/02 15:04:05"),
				id,
				p.Method,
				p.Path,
				p.StatusCode,
				p.BodySize,
				p.Latency.Round(time.Microsecond),
				p.ClientIP,
			)
		},
	})
}

// corsPolicy はCORSの設定を適用する
// 許可オリジンが空、または "*" を含む場合はすべて許可する
func corsPolicy(cfg config.CORSConfig) gin.HandlerFunc {
	policy := cors.DefaultConfig()
	policy.ExposeHeaders = []string{requestIDHeader}

	allowAll := len(cfg.AllowedOrigins) == 0
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
	}

	if allowAll {
		policy.AllowAllOrigins = true
	} else {
		policy.AllowOrigins = cfg.AllowedOrigins
	}

	return cors.New(policy)
}

// bodyLimit はリクエストボディの上限を適用する
// 宣言された長さが上限を超える場合はハンドラに渡さず 413 を返す
func bodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "request entity too large",
			})
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
