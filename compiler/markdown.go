package compiler

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// FrontMatter is the YAML header of a Markdown page.
type FrontMatter struct {
	Title    string `yaml:"title"`
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Series   string `yaml:"series,omitempty"`
	Manifest string `yaml:"manifest,omitempty"`
}

// MarkdownConverter turns rendered artifact pages into Markdown.
type MarkdownConverter struct {
	converter *md.Converter
}

// NewMarkdownConverter creates a converter with GitHub-flavored output.
func NewMarkdownConverter() *MarkdownConverter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &MarkdownConverter{converter: converter}
}

// Convert converts page to Markdown preceded by front matter. An empty
// front matter title is filled from the page's <title>.
func (c *MarkdownConverter) Convert(page string, fm FrontMatter) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	if fm.Title == "" {
		fm.Title = pageTitle(doc)
	}

	content := page
	if main := findElement(doc, "main"); main != nil {
		content = renderNode(main)
	}
	body, err := c.converter.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("convert page: %w", err)
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	sb.WriteString(cleanMarkdown(body))
	sb.WriteString("\n")
	return sb.String(), nil
}

// pageTitle returns the text of the first <title> element.
func pageTitle(doc *html.Node) string {
	n := findElement(doc, "title")
	if n == nil || n.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(n.FirstChild.Data)
}

// findElement returns the first element with the given tag name.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func renderNode(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// cleanMarkdown collapses runs of blank lines and trailing whitespace.
func cleanMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
