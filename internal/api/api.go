// Package api はHTTP APIの契約 (OpenAPI) とレスポンス型を定義します。
package api

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specYAML []byte

// PingResponse は GET /api/ping のレスポンス
type PingResponse struct {
	Version string `json:"version"`
}

// Load は埋め込まれたOpenAPIドキュメントを読み込み、検証する
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("OpenAPIドキュメントの読み込みに失敗: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("OpenAPIドキュメントの検証に失敗: %w", err)
	}

	return doc, nil
}
