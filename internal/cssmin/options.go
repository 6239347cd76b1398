package cssmin

// Options は圧縮の設定
type Options struct {
	Level1 Level1
	Level2 Level2
}

// Level1 は安全な圧縮（コメントと空白の除去）
type Level1 struct {
	RemoveComments   bool
	RemoveWhitespace bool
}

// Level2 は構造的な圧縮（ルールの統合）
type Level2 struct {
	MergeRules bool // 隣接するルールの統合
	Advanced   bool // 重複ルール・重複宣言・空ルールの除去
}

// DefaultOptions はすべての圧縮を有効にした設定を返す
func DefaultOptions() Options {
	return Options{
		Level1: Level1{
			RemoveComments:   true,
			RemoveWhitespace: true,
		},
		Level2: Level2{
			MergeRules: true,
			Advanced:   true,
		},
	}
}
