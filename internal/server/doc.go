// Package server は、HTTPサーバーとルーティングを管理します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// テンプレートの描画、静的ファイルの配信を担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - トップページ (GET /) の描画
//   - バージョン確認 (GET /api/ping)
//   - 静的ファイル（HTML/CSS/JS）の配信
//   - CORS、リクエストID、ボディサイズ上限などの共通処理
//
// 仕様:
//   - ルーティングはgin-gonic/ginを使用
//   - 名前付きルートを優先し、それ以外は public/ の静的ファイルに委譲
//   - 静的ファイルには ETag / Last-Modified を付けない
//   - グレースフルシャットダウンに対応
package server
