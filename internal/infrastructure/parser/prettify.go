package parser

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"PaperCrawler/internal/ports"
)

const indentUnit = " "

var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
}

// Prettify re-renders an HTML document one node per line, indented by depth.
// Whitespace-only text nodes are dropped; other text is trimmed.
func Prettify(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var sb strings.Builder
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		writeNode(&sb, c, 0)
	}
	return sb.String(), nil
}

func writeNode(sb *strings.Builder, n *html.Node, depth int) {
	indent := strings.Repeat(indentUnit, depth)

	switch n.Type {
	case html.DoctypeNode:
		sb.WriteString("<!DOCTYPE " + n.Data + ">\n")
	case html.CommentNode:
		sb.WriteString(indent + "<!--" + n.Data + "-->\n")
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return
		}
		if !rawTextParent(n) {
			text = html.EscapeString(text)
		}
		sb.WriteString(indent + text + "\n")
	case html.ElementNode:
		sb.WriteString(indent + openTag(n) + "\n")
		if voidElements[n.DataAtom] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(sb, c, depth+1)
		}
		sb.WriteString(indent + "</" + n.Data + ">\n")
	}
}

func openTag(n *html.Node) string {
	var sb strings.Builder
	sb.WriteString("<" + n.Data)
	for _, attr := range n.Attr {
		key := attr.Key
		if attr.Namespace != "" {
			key = attr.Namespace + ":" + key
		}
		sb.WriteString(fmt.Sprintf(" %s=\"%s\"", key, html.EscapeString(attr.Val)))
	}
	sb.WriteString(">")
	return sb.String()
}

func rawTextParent(n *html.Node) bool {
	if n.Parent == nil {
		return false
	}
	switch n.Parent.DataAtom {
	case atom.Script, atom.Style:
		return true
	}
	return false
}

// Prettifier exposes Prettify as a ports.DocumentRenderer.
type Prettifier struct{}

var _ ports.DocumentRenderer = Prettifier{}

// Render implements ports.DocumentRenderer.
func (Prettifier) Render(raw []byte) (string, error) {
	return Prettify(raw)
}
