package export

import (
	"bytes"
	"strconv"
	"strings"

	"baliance.com/gooxml/document"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var headingStyles = map[string]string{
	"h1": "Heading1",
	"h2": "Heading2",
	"h3": "Heading3",
}

// HTMLToDocx converts an HTML fragment into a Word document. It covers the
// structure a rich-text editor emits: h1-h3, paragraphs, bullet and numbered
// lists, bold and italic runs. Unknown elements fall back to their text.
func HTMLToDocx(fragment string) ([]byte, error) {
	sel, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}

	doc := document.New()
	sel.Find("body").Children().Each(func(_ int, node *goquery.Selection) {
		renderBlock(doc, node)
	})

	// A fragment of bare text parses to a body with no element children.
	if text := strings.TrimSpace(sel.Find("body").Text()); len(doc.Paragraphs()) == 0 && text != "" {
		para := doc.AddParagraph()
		para.AddRun().AddText(text)
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderBlock(doc *document.Document, node *goquery.Selection) {
	tag := goquery.NodeName(node)
	switch tag {
	case "h1", "h2", "h3":
		para := doc.AddParagraph()
		para.SetStyle(headingStyles[tag])
		para.AddRun().AddText(strings.TrimSpace(node.Text()))
	case "ul", "ol":
		node.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
			para := doc.AddParagraph()
			prefix := "• "
			if tag == "ol" {
				prefix = strconv.Itoa(i+1) + ". "
			}
			para.AddRun().AddText(prefix)
			renderInline(para, li.Nodes[0], false, false)
		})
	case "p", "div", "blockquote":
		para := doc.AddParagraph()
		renderInline(para, node.Nodes[0], false, false)
	default:
		if text := strings.TrimSpace(node.Text()); text != "" {
			doc.AddParagraph().AddRun().AddText(text)
		}
	}
}

// renderInline walks an element's children emitting one run per formatting
// span, carrying bold/italic state down nested tags.
func renderInline(para document.Paragraph, node *html.Node, bold, italic bool) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			if child.Data == "" {
				continue
			}
			run := para.AddRun()
			run.AddText(child.Data)
			if bold {
				run.Properties().SetBold(true)
			}
			if italic {
				run.Properties().SetItalic(true)
			}
		case html.ElementNode:
			switch child.Data {
			case "strong", "b":
				renderInline(para, child, true, italic)
			case "em", "i":
				renderInline(para, child, bold, true)
			case "br":
				para.AddRun().AddBreak()
			default:
				renderInline(para, child, bold, italic)
			}
		}
	}
}
