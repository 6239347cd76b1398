// Package cssmin はCSSの圧縮を担う
//
// # 責務
// - CSSの構文解析（tdewolff/parse）
// - コメントと不要な空白の除去（レベル1）
// - 同じセレクタ・同じ本文を持つルールの統合、重複の除去（レベル2）
// - 値の短縮（tdewolff/minify）
// - ファイル単位の圧縮（読み込み、圧縮、書き込み）
//
// # 仕様
// - レベル2の統合は兄弟関係にあるルール同士だけを対象にする
// - 隣接していないルールは、後ろに完全に同じルールがある場合だけ削除する
// - 宣言は値まで同じ重複だけを削除する（フォールバック用の宣言は残す）
// - ベンダープレフィックス付きの擬似クラスを含むセレクタは統合しない
// - /*! で始まるコメントは常に残す
// - 出力ファイルは圧縮が成功した後にだけ書き換える
package cssmin
