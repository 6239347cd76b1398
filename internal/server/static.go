package server

import (
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
)

// staticFiles は root 以下のファイルをそのまま配信する
//
// ETag と Last-Modified は付与しない。更新時刻を渡さずに
// http.ServeContent を使うため、条件付きリクエストの検証子も生成されない
func staticFiles(root string) gin.HandlerFunc {
	fsys := http.Dir(root)

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			notFound(c)
			return
		}

		f, info, err := openStatic(fsys, path.Clean("/"+c.Request.URL.Path))
		if err != nil {
			notFound(c)
			return
		}
		defer f.Close()

		c.Header("Cache-Control", "public, max-age=0")
		http.ServeContent(c.Writer, c.Request, info.Name(), time.Time{}, f)
	}
}

// openStatic はファイルを開く。ディレクトリの場合は index.html を開く
func openStatic(fsys http.FileSystem, name string) (http.File, fs.FileInfo, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	if !info.IsDir() {
		return f, info, nil
	}
	f.Close()

	index := path.Join(name, "index.html")
	f, err = fsys.Open(index)
	if err != nil {
		return nil, nil, err
	}

	info, err = f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, nil, fs.ErrNotExist
	}
	return f, info, nil
}

// notFound は404を返す
func notFound(c *gin.Context) {
	c.String(http.StatusNotFound, "404 page not found")
}
