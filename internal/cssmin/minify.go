package cssmin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tdewolff/minify/v2"
	cssminify "github.com/tdewolff/minify/v2/css"
)

const mediaType = "text/css"

// Minify はCSS文字列を圧縮する
func Minify(src string, opts Options) (string, error) {
	out, err := minifyString(src, opts)
	if err != nil {
		return "", &Error{Op: OpMinify, Err: err}
	}
	return out, nil
}

func minifyString(src string, opts Options) (string, error) {
	nodes, err := parseStylesheet(src)
	if err != nil {
		return "", err
	}

	if opts.Level1.RemoveComments {
		nodes = removeComments(nodes)
	}
	nodes = optimize(nodes, opts.Level2)

	out := serialize(nodes, opts.Level1.RemoveWhitespace)

	// 値の短縮はコメントも除くため、両方有効な場合だけ行う
	if opts.Level1.RemoveWhitespace && opts.Level1.RemoveComments {
		m := minify.New()
		m.AddFunc(mediaType, cssminify.Minify)

		out, err = m.String(mediaType, out)
		if err != nil {
			return "", err
		}
	}

	return out, nil
}

// CompressFile は in を圧縮して out に書き込む
// 圧縮に失敗した場合、out は変更しない
func CompressFile(in, out string, opts Options) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return &Error{Op: OpRead, Path: in, Err: err}
	}

	minified, err := minifyString(string(src), opts)
	if err != nil {
		return &Error{Op: OpMinify, Path: in, Err: err}
	}

	if err := writeFileAtomic(out, []byte(minified)); err != nil {
		return &Error{Op: OpWrite, Path: out, Err: err}
	}

	return nil
}

// writeFileAtomic は一時ファイルに書き込んでから置き換える
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("一時ファイルの置き換えに失敗: %w", err)
	}
	return nil
}
