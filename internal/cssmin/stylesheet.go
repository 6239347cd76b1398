package cssmin

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	cssparse "github.com/tdewolff/parse/v2/css"
)

// nodeKind はスタイルシートの要素の種類
type nodeKind int

const (
	commentNode     nodeKind = iota // /* ... */
	rulesetNode                     // セレクタ { 宣言 }
	atBlockNode                     // @media ... { 子要素 }
	atStatementNode                 // @import ...;
	declarationNode                 // @font-face などの直下の宣言
	rawNode                         // 解釈できなかったトークン
)

// declaration は1つの宣言
type declaration struct {
	property string
	value    string
}

func (d declaration) String() string {
	return d.property + ":" + d.value
}

// node はスタイルシートの要素
type node struct {
	kind      nodeKind
	text      string        // コメント、@規則の名前と前置部、生のトークン
	selectors []string      // rulesetNode のセレクタ
	decls     []declaration // rulesetNode の宣言
	decl      declaration   // declarationNode の宣言
	children  []*node       // atBlockNode の子要素
}

// selectorKey はセレクタの比較用キー
func (n *node) selectorKey() string {
	return strings.Join(n.selectors, ",")
}

// bodyKey は宣言の比較用キー
func (n *node) bodyKey() string {
	parts := make([]string, len(n.decls))
	for i, d := range n.decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, ";")
}

// parseStylesheet はCSSを要素の木に変換する
func parseStylesheet(src string) ([]*node, error) {
	p := cssparse.NewParser(parse.NewInputString(src), false)

	root := &node{kind: atBlockNode}
	stack := []*node{root}
	top := func() *node { return stack[len(stack)-1] }

	var selectors []string
	var ruleset *node

	for {
		gt, _, data := p.Next()
		switch gt {
		case cssparse.ErrorGrammar:
			err := p.Err()
			if err == io.EOF {
				return root.children, nil
			}
			if err != nil {
				return nil, err
			}

		case cssparse.CommentGrammar:
			// 宣言の途中のコメントは保持しない
			if ruleset == nil {
				top().children = append(top().children, &node{kind: commentNode, text: string(data)})
			}

		case cssparse.AtRuleGrammar:
			top().children = append(top().children, &node{
				kind: atStatementNode,
				text: atRuleText(data, p.Values()),
			})

		case cssparse.BeginAtRuleGrammar:
			block := &node{kind: atBlockNode, text: atRuleText(data, p.Values())}
			top().children = append(top().children, block)
			stack = append(stack, block)

		case cssparse.EndAtRuleGrammar:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}

		case cssparse.QualifiedRuleGrammar:
			selectors = append(selectors, joinTokens(p.Values()))

		case cssparse.BeginRulesetGrammar:
			selectors = append(selectors, joinTokens(p.Values()))
			ruleset = &node{kind: rulesetNode, selectors: selectors}
			selectors = nil
			top().children = append(top().children, ruleset)

		case cssparse.EndRulesetGrammar:
			ruleset = nil

		case cssparse.DeclarationGrammar, cssparse.CustomPropertyGrammar:
			d := declaration{property: string(data), value: strings.TrimSpace(joinTokens(p.Values()))}
			if ruleset != nil {
				ruleset.decls = append(ruleset.decls, d)
			} else {
				top().children = append(top().children, &node{kind: declarationNode, decl: d})
			}

		case cssparse.TokenGrammar:
			if text := strings.TrimSpace(string(data)); text != "" {
				top().children = append(top().children, &node{kind: rawNode, text: text})
			}
		}
	}
}

// atRuleText は @規則の名前と前置部を連結する
func atRuleText(name []byte, values []cssparse.Token) string {
	prelude := joinTokens(values)
	if prelude == "" {
		return string(name)
	}
	return string(name) + " " + prelude
}

// joinTokens はトークン列を文字列にする。連続する空白は1つにまとめ、前後の空白は除く
func joinTokens(tokens []cssparse.Token) string {
	var sb strings.Builder
	space := false

	for _, t := range tokens {
		switch t.TokenType {
		case cssparse.WhitespaceToken:
			space = true
			continue
		case cssparse.CommentToken:
			continue
		}

		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.Write(t.Data)
	}

	return sb.String()
}
