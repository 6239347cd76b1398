package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"webopt/internal/api"
	"webopt/internal/config"

	"github.com/getkin/kin-openapi/openapi3filter"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testCSS = "body{margin:0}\n"

// newTestConfig はテンプレートと静的ファイルを一時ディレクトリに用意した設定を作成する
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"views/template.html":    `<!DOCTYPE html><html><head><title>{{.title}}</title></head><body>{{template "partial" .}}</body></html>`,
		"views/index.html":       `<h1>{{.title}}</h1>`,
		"public/css/main.css":    testCSS,
		"public/docs/index.html": "<p>docs</p>",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("ディレクトリの作成に失敗しました: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("ファイルの作成に失敗しました: %v", err)
		}
	}

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0 // ランダムポートを使用
	cfg.Site.ViewsDir = filepath.Join(dir, "views")
	cfg.Site.PublicDir = filepath.Join(dir, "public")
	cfg.App.Version = "1.0.0"
	return cfg
}

// serve はリクエストをハンドラに渡してレスポンスを返す
func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// TestServerStartAndShutdown はサーバーの起動とシャットダウンをテストする
func TestServerStartAndShutdown(t *testing.T) {
	srv := New(newTestConfig(t))

	// テスト用のコンテキスト（タイムアウト付き）
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// サーバーを別ゴルーチンで起動
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// サーバーが起動するまで少し待つ
	time.Sleep(100 * time.Millisecond)

	// コンテキストをキャンセルしてサーバーを停止
	cancel()

	// エラーチャンネルから結果を受信
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("サーバーの起動/停止でエラーが発生しました: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("サーバーの停止がタイムアウトしました")
	}
}

// TestIndex はトップページの描画をテストする
func TestIndex(t *testing.T) {
	srv := New(newTestConfig(t))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("予期しないステータスコード: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type がHTMLではありません: %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "Website Optimisation Examples") {
		t.Errorf("タイトルが含まれていません: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "<h1>Website Optimisation Examples</h1>") {
		t.Errorf("パーシャルが展開されていません: %s", rec.Body.String())
	}
}

// TestIndexMissingTemplate はテンプレートが無い場合でもサーバーが応答を続けることをテストする
func TestIndexMissingTemplate(t *testing.T) {
	cfg := newTestConfig(t)
	if err := os.Remove(filepath.Join(cfg.Site.ViewsDir, "template.html")); err != nil {
		t.Fatalf("テンプレートの削除に失敗しました: %v", err)
	}
	srv := New(cfg)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("予期しないステータスコード: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rec.Body.String(), "template.html") {
		t.Errorf("エラー情報が含まれていません: %s", rec.Body.String())
	}

	// 失敗後も他のリクエストに応答できる
	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("失敗後のpingが応答しません: got %d", rec.Code)
	}
}

// TestPing はバージョン確認エンドポイントをテストする
func TestPing(t *testing.T) {
	srv := New(newTestConfig(t))

	doc, err := api.Load(context.Background())
	if err != nil {
		t.Fatalf("OpenAPIドキュメントの読み込みに失敗しました: %v", err)
	}
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		t.Fatalf("ルーターの作成に失敗しました: %v", err)
	}

	// 何度呼んでも同じ結果を返す
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		rec := serve(srv, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("予期しないステータスコード: got %d, want %d", rec.Code, http.StatusOK)
		}

		var body api.PingResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("JSONの解析に失敗しました: %v", err)
		}
		if body.Version != "1.0.0" {
			t.Errorf("バージョンが一致しません: got %s, want 1.0.0", body.Version)
		}

		// OpenAPIの定義と一致するか検証する
		route, params, err := router.FindRoute(req)
		if err != nil {
			t.Fatalf("ルートが見つかりません: %v", err)
		}
		input := &openapi3filter.ResponseValidationInput{
			RequestValidationInput: &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: params,
				Route:      route,
			},
			Status: rec.Code,
			Header: rec.Header(),
			Body:   io.NopCloser(bytes.NewReader(rec.Body.Bytes())),
		}
		if err := openapi3filter.ValidateResponse(context.Background(), input); err != nil {
			t.Errorf("レスポンスがOpenAPIの定義と一致しません: %v", err)
		}
	}
}

// TestStaticFiles は静的ファイルの配信をテストする
func TestStaticFiles(t *testing.T) {
	srv := New(newTestConfig(t))

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{"CSSファイル", http.MethodGet, "/css/main.css", http.StatusOK, testCSS},
		{"HEADリクエスト", http.MethodHead, "/css/main.css", http.StatusOK, ""},
		{"ディレクトリのindex.html", http.MethodGet, "/docs/", http.StatusOK, "<p>docs</p>"},
		{"存在しないファイル", http.MethodGet, "/css/missing.css", http.StatusNotFound, ""},
		{"ディレクトリ外へのアクセス", http.MethodGet, "/../views/index.html", http.StatusNotFound, ""},
		{"index.htmlの無いディレクトリ", http.MethodGet, "/css/", http.StatusNotFound, ""},
		{"GET以外のメソッド", http.MethodPost, "/css/main.css", http.StatusNotFound, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(srv, httptest.NewRequest(tc.method, tc.path, nil))

			if rec.Code != tc.expectedStatus {
				t.Fatalf("予期しないステータスコード: got %d, want %d", rec.Code, tc.expectedStatus)
			}
			if rec.Header().Get("ETag") != "" {
				t.Errorf("ETag が付与されています: %s", rec.Header().Get("ETag"))
			}
			if rec.Header().Get("Last-Modified") != "" {
				t.Errorf("Last-Modified が付与されています: %s", rec.Header().Get("Last-Modified"))
			}
			if tc.expectedBody != "" && rec.Body.String() != tc.expectedBody {
				t.Errorf("ボディが一致しません: got %q, want %q", rec.Body.String(), tc.expectedBody)
			}
		})
	}
}

// TestStaticDoesNotShadowRoutes は静的ファイルが名前付きルートを隠さないことをテストする
func TestStaticDoesNotShadowRoutes(t *testing.T) {
	cfg := newTestConfig(t)
	if err := os.MkdirAll(filepath.Join(cfg.Site.PublicDir, "api"), 0o755); err != nil {
		t.Fatalf("ディレクトリの作成に失敗しました: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Site.PublicDir, "api", "ping"), []byte("static"), 0o644); err != nil {
		t.Fatalf("ファイルの作成に失敗しました: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Site.PublicDir, "index.html"), []byte("static"), 0o644); err != nil {
		t.Fatalf("ファイルの作成に失敗しました: %v", err)
	}
	srv := New(cfg)

	for _, path := range []string{"/", "/api/ping"} {
		rec := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Body.String() == "static" {
			t.Errorf("%s が静的ファイルで上書きされています", path)
		}
	}
}

// TestBodyLimit はボディサイズの上限をテストする
func TestBodyLimit(t *testing.T) {
	srv := New(newTestConfig(t))

	req := httptest.NewRequest(http.MethodPost, "/api/ping", strings.NewReader(`{"a":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = 26 << 20

	rec := serve(srv, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("予期しないステータスコード: got %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}

	// 上限以下のボディは拒否しない
	req = httptest.NewRequest(http.MethodPost, "/api/ping", strings.NewReader(`{"a":1}`))
	req.Header.Set("Content-Type", "application/json")

	rec = serve(srv, req)
	if rec.Code == http.StatusRequestEntityTooLarge {
		t.Error("上限以下のボディが拒否されました")
	}
}

// TestBodyLimitStreaming は長さ不明のボディが読み込み時に制限されることをテストする
func TestBodyLimitStreaming(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Server.MaxBodyBytes = 16
	srv := New(cfg)

	var readErr error
	srv.engine.POST("/echo", func(c *gin.Context) {
		_, readErr = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	req.ContentLength = -1

	serve(srv, req)
	if readErr == nil {
		t.Error("上限を超えた読み込みがエラーになりませんでした")
	}
}

// TestCORS はクロスオリジンの設定をテストする
func TestCORS(t *testing.T) {
	t.Run("デフォルトは全許可", func(t *testing.T) {
		srv := New(newTestConfig(t))

		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.Header.Set("Origin", "http://localhost:8383")
		rec := serve(srv, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin: got %q, want *", got)
		}
	})

	t.Run("プリフライト", func(t *testing.T) {
		srv := New(newTestConfig(t))

		req := httptest.NewRequest(http.MethodOptions, "/api/ping", nil)
		req.Header.Set("Origin", "http://localhost:8383")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := serve(srv, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("予期しないステータスコード: got %d, want %d", rec.Code, http.StatusNoContent)
		}
	})

	t.Run("許可オリジンの指定", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.CORS.AllowedOrigins = []string{"http://localhost:8383"}
		srv := New(cfg)

		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.Header.Set("Origin", "http://localhost:8383")
		rec := serve(srv, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8383" {
			t.Errorf("Access-Control-Allow-Origin: got %q, want http://localhost:8383", got)
		}

		req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec = serve(srv, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("許可されていないオリジンが通りました: got %d", rec.Code)
		}
	})
}

// TestRequestID はリクエストIDの付与をテストする
func TestRequestID(t *testing.T) {
	srv := New(newTestConfig(t))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("リクエストIDが付与されていません")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = serve(srv, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("クライアントのリクエストIDが使われていません: got %s", got)
	}
}
