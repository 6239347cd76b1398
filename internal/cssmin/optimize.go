package cssmin

import "strings"

// removeComments はコメントを除く。/*! で始まるコメントは残す
func removeComments(nodes []*node) []*node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.kind == commentNode && !strings.HasPrefix(n.text, "/*!") {
			continue
		}
		if n.kind == atBlockNode {
			n.children = removeComments(n.children)
		}
		out = append(out, n)
	}
	return out
}

// optimize はレベル2の圧縮を兄弟要素ごとに再帰的に適用する
func optimize(nodes []*node, opts Level2) []*node {
	for _, n := range nodes {
		if n.kind == atBlockNode {
			n.children = optimize(n.children, opts)
		}
	}

	if opts.Advanced {
		nodes = removeDuplicateRulesets(nodes)
	}
	if opts.MergeRules {
		nodes = mergeAdjacent(nodes)
	}
	if opts.Advanced {
		for _, n := range nodes {
			if n.kind == rulesetNode {
				n.decls = removeDuplicateDeclarations(n.decls)
			}
		}
		nodes = removeEmpty(nodes)
	}

	return nodes
}

// removeDuplicateRulesets は後ろに完全に同じルールがあるルールを除く
func removeDuplicateRulesets(nodes []*node) []*node {
	seen := make(map[string]bool)
	keep := make([]bool, len(nodes))

	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		keep[i] = true
		if n.kind != rulesetNode {
			continue
		}
		key := n.selectorKey() + "{" + n.bodyKey() + "}"
		if seen[key] {
			keep[i] = false
			continue
		}
		seen[key] = true
	}

	out := make([]*node, 0, len(nodes))
	for i, n := range nodes {
		if keep[i] {
			out = append(out, n)
		}
	}
	return out
}

// mergeAdjacent は隣接するルールを統合する
//   - 同じセレクタ: 宣言を連結する
//   - 同じ本文: セレクタを連結する
func mergeAdjacent(nodes []*node) []*node {
	out := make([]*node, 0, len(nodes))

	for _, n := range nodes {
		if len(out) == 0 || n.kind != rulesetNode || out[len(out)-1].kind != rulesetNode {
			out = append(out, n)
			continue
		}

		prev := out[len(out)-1]
		switch {
		case prev.selectorKey() == n.selectorKey():
			prev.decls = append(prev.decls, n.decls...)
		case prev.bodyKey() == n.bodyKey() && mergeableSelectors(prev.selectors) && mergeableSelectors(n.selectors):
			prev.selectors = appendUnique(prev.selectors, n.selectors...)
		default:
			out = append(out, n)
		}
	}

	return out
}

// mergeableSelectors はセレクタをまとめても安全かどうかを返す
// 未対応のブラウザではセレクタリスト全体が無効になるため、ベンダープレフィックスは統合しない
func mergeableSelectors(selectors []string) bool {
	for _, s := range selectors {
		if strings.Contains(s, ":-") {
			return false
		}
	}
	return true
}

// removeDuplicateDeclarations は値まで同じ宣言の重複を除き、最後のものを残す
func removeDuplicateDeclarations(decls []declaration) []declaration {
	seen := make(map[string]bool)
	keep := make([]bool, len(decls))

	for i := len(decls) - 1; i >= 0; i-- {
		key := strings.ToLower(decls[i].property) + ":" + decls[i].value
		keep[i] = !seen[key]
		seen[key] = true
	}

	out := make([]declaration, 0, len(decls))
	for i, d := range decls {
		if keep[i] {
			out = append(out, d)
		}
	}
	return out
}

// removeEmpty は宣言の無いルールと子要素の無い @規則 を除く
func removeEmpty(nodes []*node) []*node {
	out := nodes[:0]
	for _, n := range nodes {
		switch {
		case n.kind == rulesetNode && len(n.decls) == 0:
			continue
		case n.kind == atBlockNode && len(n.children) == 0:
			continue
		}
		out = append(out, n)
	}
	return out
}

// appendUnique は重複しない要素だけを追加する
func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
