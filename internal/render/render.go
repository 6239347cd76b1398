// Package render はファイル上のテンプレートとパーシャルからHTMLを生成します。
//
// 仕様:
//   - html/template を使用
//   - テンプレートは呼び出しごとに読み込む（キャッシュしない）
//   - パーシャルは名前付きテンプレートとして登録し、{{template "名前" .}} で埋め込む
//   - 拡張子 .md のパーシャルは goldmark でHTMLに変換してから登録する
//   - 失敗はすべて *Error として返す
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
)

// Request は1回のレンダリング要求
type Request struct {
	Template string            // ルートテンプレートのパス
	Partials map[string]string // パーシャル名 -> ファイルパス
	Locals   map[string]string // テンプレートに渡す値
}

// Error はレンダリングの失敗を表す
type Error struct {
	Template string // ルートテンプレートのパス
	Partial  string // 失敗したパーシャル名（ルートの場合は空）
	Err      error
}

func (e *Error) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("render %s (partial %q): %v", e.Template, e.Partial, e.Err)
	}
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Renderer はテンプレートのレンダリングを行う
// 状態を持たないため、複数のゴルーチンから同時に使用できる
type Renderer struct {
	markdown goldmark.Markdown
}

// New は新しいRendererを作成する
func New() *Renderer {
	return &Renderer{
		markdown: goldmark.New(),
	}
}

type result struct {
	html string
	err  error
}

// Render はテンプレートをレンダリングしてHTML文字列を返す
// ctx がキャンセルされた場合は完了を待たずに *Error を返す
func (r *Renderer) Render(ctx context.Context, req Request) (string, error) {
	// バッファ付きなので、待ち手がいなくなってもゴルーチンは終了できる
	done := make(chan result, 1)

	go func() {
		html, err := r.render(req)
		done <- result{html: html, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", &Error{Template: req.Template, Err: ctx.Err()}
	case res := <-done:
		return res.html, res.err
	}
}

// render はレンダリングの本体
func (r *Renderer) render(req Request) (string, error) {
	src, err := os.ReadFile(req.Template)
	if err != nil {
		return "", &Error{Template: req.Template, Err: err}
	}

	root, err := template.New(filepath.Base(req.Template)).
		Option("missingkey=error").
		Parse(string(src))
	if err != nil {
		return "", &Error{Template: req.Template, Err: err}
	}

	// 名前順に登録してエラーの発生箇所を安定させる
	names := make([]string, 0, len(req.Partials))
	for name := range req.Partials {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := r.loadPartial(req.Partials[name])
		if err != nil {
			return "", &Error{Template: req.Template, Partial: name, Err: err}
		}
		if _, err := root.New(name).Parse(body); err != nil {
			return "", &Error{Template: req.Template, Partial: name, Err: err}
		}
	}

	var buf bytes.Buffer
	if err := root.Execute(&buf, req.Locals); err != nil {
		return "", &Error{Template: req.Template, Err: err}
	}

	return buf.String(), nil
}

// loadPartial はパーシャルを読み込む。Markdownの場合はHTMLに変換する
func (r *Renderer) loadPartial(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if !strings.EqualFold(filepath.Ext(path), ".md") {
		return string(src), nil
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("markdownの変換に失敗: %w", err)
	}
	return buf.String(), nil
}
