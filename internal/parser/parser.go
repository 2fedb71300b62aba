// Package parser reads and writes the Markdown note format: an optional YAML
// frontmatter block (title, date, tags) followed by the note text.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/notestore"
)

const delim = "---"

var tagRe = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}][\p{L}\p{N}_/-]*)`)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Title string
	Date  string
	Tags  []string
	Body  string
}

// Parse extracts title, date, tags and body from raw Markdown bytes.
// A frontmatter block that is not valid YAML is an error.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	res := &Result{Body: body}
	if fm != nil {
		res.Title = fm.Title
		res.Date = fm.Date
		res.Tags = fm.Tags
	}
	if res.Title == "" {
		res.Title = firstHeading(body)
	}
	res.Tags = notestore.CleanTagNames(append(res.Tags, inlineTags(body)...))
	return res, nil
}

type frontmatter struct {
	Title string
	Date  string
	Tags  []string
}

// splitFrontmatter separates the YAML block between leading --- lines from
// the body. Without an opening and a closing delimiter the whole input is body.
func splitFrontmatter(data []byte) (*frontmatter, string, error) {
	if !bytes.HasPrefix(data, []byte(delim+"\n")) && !bytes.HasPrefix(data, []byte(delim+"\r\n")) {
		return nil, string(data), nil
	}

	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	// Drop the remainder of the closing delimiter line.
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		after = nil
	}

	fm, err := decodeFrontmatter(block)
	if err != nil {
		return nil, "", err
	}
	return fm, string(after), nil
}

// decodeFrontmatter walks the YAML node tree instead of decoding into a map
// so that dates stay verbatim strings.
func decodeFrontmatter(block []byte) (*frontmatter, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, fmt.Errorf("parser: frontmatter: %w", err)
	}
	fm := &frontmatter{}
	if len(doc.Content) == 0 {
		return fm, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parser: frontmatter is not a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		switch key {
		case "title":
			fm.Title = strings.TrimSpace(scalar(val))
		case "date":
			fm.Date = strings.TrimSpace(scalar(val))
		case "tags":
			switch val.Kind {
			case yaml.SequenceNode:
				for _, item := range val.Content {
					fm.Tags = append(fm.Tags, scalar(item))
				}
			case yaml.ScalarNode:
				fm.Tags = append(fm.Tags, notestore.SplitTagNames(val.Value)...)
			}
		}
	}
	return fm, nil
}

func scalar(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

func inlineTags(body string) []string {
	var out []string
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	return out
}

// firstHeading returns the text of the first H1 line, or "".
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

type renderedFrontmatter struct {
	Title string   `yaml:"title,omitempty"`
	Date  string   `yaml:"date,omitempty"`
	Tags  []string `yaml:"tags,omitempty"`
}

// Render writes a note in the format Parse reads back.
func Render(note models.Note, tags []string) ([]byte, error) {
	head, err := yaml.Marshal(renderedFrontmatter{
		Title: note.Title,
		Date:  note.Date,
		Tags:  tags,
	})
	if err != nil {
		return nil, fmt.Errorf("parser: render: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	if !bytes.Equal(head, []byte("{}\n")) {
		buf.Write(head)
	}
	buf.WriteString(delim + "\n")
	buf.WriteString(note.Text)
	return buf.Bytes(), nil
}
