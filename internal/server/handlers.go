package server

import (
	"context"
	"log"
	"net/http"
	"path/filepath"

	"webopt/internal/api"
	"webopt/internal/config"
	"webopt/internal/render"

	"github.com/gin-gonic/gin"
)

// pageTitle はトップページのタイトル
const pageTitle = "Website Optimisation Examples"

// SiteHandler はトップページとAPIのハンドラ
type SiteHandler struct {
	config   *config.Config
	renderer *render.Renderer
}

// indexRequest はトップページのレンダリング要求を作る
func (h *SiteHandler) indexRequest() render.Request {
	views := h.config.Site.ViewsDir
	return render.Request{
		Template: filepath.Join(views, "template.html"),
		Partials: map[string]string{
			"partial": filepath.Join(views, "index.html"),
		},
		Locals: map[string]string{
			"title": pageTitle,
		},
	}
}

// Index はトップページを描画する
func (h *SiteHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	if timeout := h.config.Site.RenderTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	html, err := h.renderer.Render(ctx, h.indexRequest())
	if err != nil {
		log.Printf("ページの描画に失敗しました: id=%s err=%v", requestIDFrom(c), err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Ping はバージョン確認エンドポイント
func (h *SiteHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, api.PingResponse{
		Version: h.config.App.Version,
	})
}
