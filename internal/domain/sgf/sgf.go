package sgf

import (
	"fmt"
	"strings"

	errs "ink_goban/internal/errors"
)

// Property — одно свойство узла, например B[dd] или AB[aa][bb].
// Свойства хранятся срезом, а не map: порядок внутри узла значим
// для проигрывания записи.
type Property struct {
	Name   string
	Values []string
}

// Node представляет один узел SGF (набор свойств между ';' и следующим ';')
type Node struct {
	Properties []Property
}

// GameTree представляет одно дерево в SGF (узлы основной линии + варианты)
type GameTree struct {
	Nodes    []Node
	Children []*GameTree
}

// SGF представляет разобранный SGF-файл: одна или несколько партий подряд
type SGF struct {
	Trees []*GameTree
}

type parser struct {
	src string
	pos int
}

// Parse разбирает сырой SGF-текст. Любая синтаксическая ошибка фатальна:
// частичного дерева не возвращается.
func Parse(raw string) (*SGF, error) {
	p := &parser{src: raw}
	out := &SGF{}

	p.skipSpace()
	for !p.eof() {
		tree, err := p.parseTree()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMalformedSGF, err)
		}
		out.Trees = append(out.Trees, tree)
		p.skipSpace()
	}

	if len(out.Trees) == 0 {
		return nil, fmt.Errorf("%w: empty input", errs.ErrMalformedSGF)
	}

	return out, nil
}

func (p *parser) parseTree() (*GameTree, error) {
	if !p.expect('(') {
		return nil, fmt.Errorf("expected '(' at offset %d", p.pos)
	}

	tree := &GameTree{}

	p.skipSpace()
	for p.peek() == ';' {
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		tree.Nodes = append(tree.Nodes, node)
		p.skipSpace()
	}

	if len(tree.Nodes) == 0 {
		return nil, fmt.Errorf("game tree without nodes at offset %d", p.pos)
	}

	for p.peek() == '(' {
		child, err := p.parseTree()
		if err != nil {
			return nil, err
		}
		tree.Children = append(tree.Children, child)
		p.skipSpace()
	}

	if !p.expect(')') {
		return nil, fmt.Errorf("expected ')' at offset %d", p.pos)
	}

	return tree, nil
}

func (p *parser) parseNode() (Node, error) {
	p.pos++ // ';'
	node := Node{}

	p.skipSpace()
	for isUpper(p.peek()) {
		prop, err := p.parseProperty()
		if err != nil {
			return Node{}, err
		}
		node.Properties = append(node.Properties, prop)
		p.skipSpace()
	}

	return node, nil
}

func (p *parser) parseProperty() (Property, error) {
	start := p.pos
	for isUpper(p.peek()) || isLower(p.peek()) {
		p.pos++
	}
	prop := Property{Name: strings.Map(dropLower, p.src[start:p.pos])}

	p.skipSpace()
	if p.peek() != '[' {
		return Property{}, fmt.Errorf("property %s without value at offset %d", prop.Name, p.pos)
	}

	for p.peek() == '[' {
		value, err := p.parseValue()
		if err != nil {
			return Property{}, err
		}
		prop.Values = append(prop.Values, value)
		p.skipSpace()
	}

	return prop, nil
}

func (p *parser) parseValue() (string, error) {
	p.pos++ // '['
	var sb strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.src) {
				return "", fmt.Errorf("dangling escape at offset %d", p.pos)
			}
			sb.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case ']':
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated property value at offset %d", p.pos)
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) bool {
	if p.peek() != c {
		return false
	}
	p.pos++
	return true
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

// Старые SGF (FF[3]) допускали строчные буквы в имени свойства,
// нормализованное имя состоит только из заглавных.
func dropLower(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return -1
	}
	return r
}

// Serialize собирает SGF-текст обратно из дерева.
func Serialize(s *SGF) string {
	var builder strings.Builder
	for _, tree := range s.Trees {
		serializeGameTree(&builder, tree)
	}
	return builder.String()
}

func serializeGameTree(builder *strings.Builder, tree *GameTree) {
	builder.WriteString("(")
	for _, node := range tree.Nodes {
		builder.WriteString(";")
		for _, prop := range node.Properties {
			builder.WriteString(prop.Name)
			for _, v := range prop.Values {
				builder.WriteString(fmt.Sprintf("[%s]", escapeValue(v)))
			}
		}
	}
	for _, child := range tree.Children {
		serializeGameTree(builder, child)
	}
	builder.WriteString(")")
}

func escapeValue(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	return strings.ReplaceAll(v, "]", "\\]")
}
