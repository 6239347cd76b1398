package cssmin

import "strings"

// printer は要素の木をCSSに戻す
type printer struct {
	sb      strings.Builder
	compact bool
}

func (p *printer) write(nodes []*node, depth int) {
	for _, n := range nodes {
		switch n.kind {
		case commentNode, rawNode:
			p.line(depth, n.text)

		case atStatementNode:
			p.line(depth, n.text+";")

		case declarationNode:
			p.declaration(depth, n.decl)

		case rulesetNode:
			sep := ","
			if !p.compact {
				sep = ", "
			}
			p.open(depth, strings.Join(n.selectors, sep))
			if p.compact {
				// 最後の宣言のセミコロンは省く
				p.sb.WriteString(n.bodyKey())
			} else {
				for _, d := range n.decls {
					p.declaration(depth+1, d)
				}
			}
			p.close(depth)

		case atBlockNode:
			p.open(depth, n.text)
			p.write(n.children, depth+1)
			p.close(depth)
		}
	}
}

func (p *printer) declaration(depth int, d declaration) {
	if p.compact {
		p.sb.WriteString(d.String() + ";")
		return
	}
	p.line(depth, d.property+": "+d.value+";")
}

func (p *printer) open(depth int, head string) {
	if p.compact {
		p.sb.WriteString(head + "{")
		return
	}
	p.line(depth, head+" {")
}

func (p *printer) close(depth int) {
	if p.compact {
		p.sb.WriteString("}")
		return
	}
	p.line(depth, "}")
}

func (p *printer) line(depth int, text string) {
	if p.compact {
		p.sb.WriteString(text)
		return
	}
	p.sb.WriteString(strings.Repeat("  ", depth))
	p.sb.WriteString(text)
	p.sb.WriteByte('\n')
}

// serialize はCSS文字列を返す
func serialize(nodes []*node, compact bool) string {
	p := &printer{compact: compact}
	p.write(nodes, 0)
	return p.sb.String()
}
