package importer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the YAML header of a Markdown draft. Everything below the
// header is the note body.
type FrontMatter struct {
	ID            string   `yaml:"id,omitempty"`
	Title         string   `yaml:"title"`
	Tags          []string `yaml:"tags,omitempty"`
	Status        string   `yaml:"status,omitempty"`
	Priority      string   `yaml:"priority,omitempty"`
	TargetRelease string   `yaml:"target_release,omitempty"`
	DueDate       string   `yaml:"due_date,omitempty"`
	Stakeholders  []string `yaml:"stakeholders,omitempty"`
	ProjectID     string   `yaml:"project_id,omitempty"`
}

var delimiter = []byte("---")

// splitFrontMatter separates the YAML header from the body. Input without
// a leading delimiter is all body.
func splitFrontMatter(data []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		return fm, data, nil
	}

	rest := data[bytes.IndexByte(data, '\n')+1:]
	end := closingDelimiter(rest)
	if end < 0 {
		return fm, nil, errors.New("front matter started but no closing delimiter found")
	}

	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return fm, nil, fmt.Errorf("parsing front matter: %w", err)
	}

	body := rest[end+len(delimiter):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))
	return fm, body, nil
}

// closingDelimiter returns the offset of the first line that is exactly
// "---", or -1.
func closingDelimiter(s []byte) int {
	offset := 0
	for len(s) > 0 {
		line := s
		next := len(s)
		if i := bytes.IndexByte(s, '\n'); i >= 0 {
			line = s[:i]
			next = i + 1
		}
		if string(bytes.TrimRight(line, "\r")) == string(delimiter) {
			return offset
		}
		offset += next
		s = s[next:]
	}
	return -1
}

// formatFrontMatter renders fm as a delimited YAML header.
func formatFrontMatter(fm FrontMatter) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}
	buf.WriteString("---\n")
	return buf.Bytes(), nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
