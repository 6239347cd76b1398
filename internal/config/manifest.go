package config

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// LoadManifest はパッケージマニフェスト (package.json) から version を取り出す
func LoadManifest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("マニフェストの読み込みに失敗: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("マニフェストのJSONが不正です: %s", path)
	}

	version := gjson.GetBytes(data, "version")
	if !version.Exists() || version.String() == "" {
		return "", fmt.Errorf("マニフェストに version がありません: %s", path)
	}

	return version.String(), nil
}
