package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var markdown = goldmark.New()

// FromMarkdown converts a Markdown draft into a content tree. Fenced code
// blocks tagged "excalidraw" whose body is a JSON object become diagram
// nodes; the optional top-level "id" and "name" keys of that object become
// the node attributes and the remaining keys its data.
func FromMarkdown(src []byte) *Node {
	root := markdown.Parser().Parse(text.NewReader(src))
	c := mdConverter{src: src}
	doc := NewDoc()
	doc.Content = c.blocks(root)
	return doc
}

type mdConverter struct {
	src []byte
}

func (c mdConverter) blocks(parent ast.Node) []*Node {
	var out []*Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if n := c.block(child); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (c mdConverter) block(n ast.Node) *Node {
	switch n := n.(type) {
	case *ast.Heading:
		return &Node{
			Type:    TypeHeading,
			Attrs:   map[string]any{"level": n.Level},
			Content: c.inlines(n, nil),
		}
	case *ast.Paragraph, *ast.TextBlock:
		return &Node{Type: TypeParagraph, Content: c.inlines(n, nil)}
	case *ast.List:
		list := &Node{Type: TypeBulletList}
		if n.IsOrdered() {
			list.Type = TypeOrderedList
			if n.Start != 1 {
				list.Attrs = map[string]any{"start": n.Start}
			}
		}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			list.Content = append(list.Content, &Node{Type: TypeListItem, Content: c.blocks(item)})
		}
		return list
	case *ast.Blockquote:
		return &Node{Type: TypeBlockquote, Content: c.blocks(n)}
	case *ast.FencedCodeBlock:
		lang := string(n.Language(c.src))
		body := c.lines(n)
		if lang == TypeDiagram {
			if d := diagramFromFence(body); d != nil {
				return d
			}
		}
		return codeBlock(lang, body)
	case *ast.CodeBlock:
		return codeBlock("", c.lines(n))
	case *ast.ThematicBreak:
		return &Node{Type: TypeHorizontalRule}
	case *ast.HTMLBlock:
		body := strings.TrimRight(c.lines(n), "\n")
		if body == "" {
			return nil
		}
		return &Node{Type: TypeParagraph, Content: []*Node{{Type: TypeText, Text: body}}}
	}
	if n.HasChildren() {
		return &Node{Type: TypeParagraph, Content: c.inlines(n, nil)}
	}
	return nil
}

func (c mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.src))
	}
	return buf.String()
}

func codeBlock(lang, body string) *Node {
	n := &Node{Type: TypeCodeBlock}
	if lang != "" {
		n.Attrs = map[string]any{"language": lang}
	}
	body = strings.TrimSuffix(body, "\n")
	if body != "" {
		n.Content = []*Node{{Type: TypeText, Text: body}}
	}
	return n
}

func diagramFromFence(body string) *Node {
	var obj map[string]any
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return nil
	}
	id, _ := obj["id"].(string)
	name, _ := obj["name"].(string)
	delete(obj, "id")
	delete(obj, "name")
	return NewDiagramNode(id, name, obj)
}

func (c mdConverter) inlines(parent ast.Node, marks []Mark) []*Node {
	var out []*Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, c.inline(child, marks)...)
	}
	return mergeText(out)
}

func (c mdConverter) inline(n ast.Node, marks []Mark) []*Node {
	switch n := n.(type) {
	case *ast.Text:
		value := n.Segment.Value(c.src)
		if !n.IsRaw() {
			value = util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(value)))
		}
		s := string(value)
		switch {
		case n.HardLineBreak():
			return []*Node{textNode(s, marks), {Type: TypeHardBreak}}
		case n.SoftLineBreak():
			s += " "
		}
		return []*Node{textNode(s, marks)}
	case *ast.String:
		return []*Node{textNode(string(n.Value), marks)}
	case *ast.Emphasis:
		m := MarkItalic
		if n.Level >= 2 {
			m = MarkBold
		}
		return c.inlines(n, withMark(marks, Mark{Type: m}))
	case *ast.CodeSpan:
		return c.inlines(n, withMark(marks, Mark{Type: MarkCode}))
	case *ast.Link:
		link := Mark{Type: MarkLink, Attrs: map[string]any{"href": string(n.Destination)}}
		return c.inlines(n, withMark(marks, link))
	case *ast.AutoLink:
		url := string(n.URL(c.src))
		link := Mark{Type: MarkLink, Attrs: map[string]any{"href": url}}
		return []*Node{textNode(url, withMark(marks, link))}
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(c.src))
		}
		return []*Node{textNode(buf.String(), marks)}
	}
	return c.inlines(n, marks)
}

func textNode(s string, marks []Mark) *Node {
	return &Node{Type: TypeText, Text: s, Marks: marks}
}

func withMark(marks []Mark, m Mark) []Mark {
	out := make([]Mark, len(marks), len(marks)+1)
	copy(out, marks)
	return append(out, m)
}

// mergeText joins adjacent text runs with identical marks and drops empty
// ones, so a tree converted twice comes out the same.
func mergeText(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.Type == TypeText && n.Text == "" {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if n.Type == TypeText && last.Type == TypeText && sameMarks(last.Marks, n.Marks) {
				last.Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	if len(out) > 0 {
		last := out[len(out)-1]
		if last.Type == TypeText {
			last.Text = strings.TrimRight(last.Text, " ")
			if last.Text == "" {
				out = out[:len(out)-1]
			}
		}
	}
	return out
}

// ToMarkdown renders the tree as Markdown. Diagram nodes are written as
// "excalidraw" fences that FromMarkdown reads back.
func ToMarkdown(root *Node) string {
	var b strings.Builder
	for _, n := range root.Content {
		writeBlock(&b, n)
	}
	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func writeBlock(b *strings.Builder, n *Node) {
	switch n.Type {
	case TypeHeading:
		level := attrInt(n.Attrs, "level", 1)
		b.WriteString(strings.Repeat("#", level) + " " + renderInline(n.Content) + "\n\n")
	case TypeParagraph:
		b.WriteString(renderInline(n.Content) + "\n\n")
	case TypeBulletList, TypeOrderedList:
		num := attrInt(n.Attrs, "start", 1)
		for _, item := range n.Content {
			marker := "- "
			if n.Type == TypeOrderedList {
				marker = fmt.Sprintf("%d. ", num)
				num++
			}
			var inner strings.Builder
			for _, c := range item.Content {
				writeBlock(&inner, c)
			}
			body := strings.TrimRight(inner.String(), "\n")
			indent := strings.Repeat(" ", len(marker))
			b.WriteString(marker + strings.ReplaceAll(body, "\n", "\n"+indent) + "\n")
		}
		b.WriteString("\n")
	case TypeBlockquote:
		var inner strings.Builder
		for _, c := range n.Content {
			writeBlock(&inner, c)
		}
		body := strings.TrimRight(inner.String(), "\n")
		b.WriteString("> " + strings.ReplaceAll(body, "\n", "\n> ") + "\n\n")
	case TypeCodeBlock:
		b.WriteString("```" + attrString(n.Attrs, "language") + "\n")
		if body := PlainText(n); body != "" {
			b.WriteString(body + "\n")
		}
		b.WriteString("```\n\n")
	case TypeHorizontalRule:
		b.WriteString("---\n\n")
	case TypeDiagram:
		b.WriteString("```" + TypeDiagram + "\n" + diagramFence(n) + "\n```\n\n")
	default:
		if len(n.Content) > 0 && isInline(n.Content[0]) {
			b.WriteString(renderInline(n.Content) + "\n\n")
			return
		}
		for _, c := range n.Content {
			writeBlock(b, c)
		}
	}
}

func diagramFence(n *Node) string {
	obj := map[string]any{}
	if data, ok := n.Attrs["data"].(map[string]any); ok {
		for k, v := range data {
			obj[k] = v
		}
	}
	if id := attrString(n.Attrs, "id"); id != "" {
		obj["id"] = id
	}
	if name := attrString(n.Attrs, "name"); name != "" {
		obj["name"] = name
	}
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// markOrder fixes the nesting of marks when rendering so that equal mark
// sets always produce the same delimiters.
var markOrder = map[string]int{MarkLink: 0, MarkBold: 1, MarkItalic: 2, MarkCode: 3}

func renderInline(nodes []*Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case TypeText:
			b.WriteString(renderText(n))
		case TypeHardBreak:
			b.WriteString("  \n")
		default:
			b.WriteString(renderInline(n.Content))
		}
	}
	return b.String()
}

func renderText(n *Node) string {
	s := n.Text
	if _, ok := hasMark(n, MarkCode); ok {
		s = "`" + s + "`"
	} else {
		s = escapeMarkdown(s)
	}
	marks := make([]Mark, len(n.Marks))
	copy(marks, n.Marks)
	sort.SliceStable(marks, func(i, j int) bool {
		return markOrder[marks[i].Type] > markOrder[marks[j].Type]
	})
	for _, m := range marks {
		switch m.Type {
		case MarkItalic:
			s = "*" + s + "*"
		case MarkBold:
			s = "**" + s + "**"
		case MarkLink:
			s = "[" + s + "](" + attrString(m.Attrs, "href") + ")"
		}
	}
	return s
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}
