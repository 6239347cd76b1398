package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultMaxBodyBytes はリクエストボディの上限 (25MB)
const DefaultMaxBodyBytes int64 = 25 << 20

// Config はアプリケーション全体の設定を保持する構造体
// 起動時に一度だけ構築され、以降は変更しない
type Config struct {
	Server ServerConfig `yaml:"server"`
	Site   SiteConfig   `yaml:"site"`
	CORS   CORSConfig   `yaml:"cors"`
	App    AppInfo      `yaml:"-"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host"` // リッスンするホスト
	Port int    `yaml:"port"` // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // 読み込みタイムアウト
	WriteTimeout time.Duration `yaml:"write_timeout"` // 書き込みタイムアウト

	MaxBodyBytes int64 `yaml:"max_body_bytes"` // リクエストボディの上限
}

// SiteConfig はテンプレートと静的ファイルの配置
type SiteConfig struct {
	ViewsDir      string        `yaml:"views_dir"`      // テンプレートのディレクトリ
	PublicDir     string        `yaml:"public_dir"`     // 静的ファイルのディレクトリ
	ManifestPath  string        `yaml:"manifest_path"`  // バージョンを持つマニフェスト (package.json)
	RenderTimeout time.Duration `yaml:"render_timeout"` // レンダリングの期限 (0で無効)
}

// CORSConfig はクロスオリジンの許可設定
// AllowedOrigins が空の場合はすべてのオリジンを許可する
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AppInfo は起動時にマニフェストから読み込む情報
type AppInfo struct {
	Version string
}

// Default はデフォルト値で埋めた設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Site: SiteConfig{
			ViewsDir:      "views",
			PublicDir:     "public",
			ManifestPath:  "package.json",
			RenderTimeout: 10 * time.Second,
		},
	}
}

// Load は設定を読み込む
//
// 優先順位: 環境変数 > APP_CONFIG のYAML > デフォルト値
// .env ファイルは既存の環境変数を上書きしない
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()

	if path := os.Getenv("APP_CONFIG"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	version, err := LoadManifest(cfg.Site.ManifestPath)
	if err != nil {
		return nil, err
	}
	cfg.App.Version = version

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// loadDotEnv は .env を環境変数へ読み込む。ファイルが無ければ何もしない
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(".env の読み込みに失敗: %w", err)
	}
	return nil
}

// loadYAML はYAMLファイルの内容をデフォルト値の上に重ねる
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗 (%s): %w", path, err)
	}
	return nil
}

// applyEnv は環境変数で設定を上書きする
func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("PORT", c.Server.Port)

	c.Site.ViewsDir = getEnvOrDefault("VIEWS_DIR", c.Site.ViewsDir)
	c.Site.PublicDir = getEnvOrDefault("PUBLIC_DIR", c.Site.PublicDir)
	c.Site.ManifestPath = getEnvOrDefault("MANIFEST_PATH", c.Site.ManifestPath)
	c.Site.RenderTimeout = getEnvAsDurationOrDefault("RENDER_TIMEOUT", c.Site.RenderTimeout)

	c.CORS.AllowedOrigins = getEnvAsListOrDefault("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	// サーバー設定の検証
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("無効なボディ上限: %d", c.Server.MaxBodyBytes)
	}

	// サイト設定の検証
	if c.Site.ViewsDir == "" {
		return fmt.Errorf("テンプレートのディレクトリが指定されていません")
	}
	if c.Site.PublicDir == "" {
		return fmt.Errorf("静的ファイルのディレクトリが指定されていません")
	}
	if c.Site.RenderTimeout < 0 {
		return fmt.Errorf("無効なレンダリング期限: %s", c.Site.RenderTimeout)
	}

	// CORS設定の検証
	for _, origin := range c.CORS.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("無効なオリジン: %s", origin)
		}
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault は環境変数を time.Duration として取得する
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsListOrDefault はカンマ区切りの環境変数をスライスとして取得する
func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
