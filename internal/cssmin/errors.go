package cssmin

import "fmt"

// 失敗した工程
const (
	OpRead   = "read"
	OpMinify = "minify"
	OpWrite  = "write"
)

// Error は圧縮の失敗を表す
type Error struct {
	Op   string // 失敗した工程
	Path string // 対象ファイル（文字列を直接圧縮した場合は空）
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("cssmin %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("cssmin %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
