// Package parser locates and decodes YAML frontmatter and collects the tags
// of a Markdown note.
package parser

import (
	"bytes"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/basetag/internal/markdown"
)

// Block locates a frontmatter block inside a document. All offsets are byte
// offsets into the document.
type Block struct {
	// Open and Close are the offsets of the opening and closing fence lines.
	Open  int
	Close int
	// YAMLStart and YAMLEnd delimit the YAML text between the fences.
	YAMLStart int
	YAMLEnd   int
	// BodyStart is the first byte after the closing fence line.
	BodyStart int
}

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	// Node is the decoded frontmatter document, nil when absent or invalid.
	Node  *yaml.Node
	Block Block
	// HasFrontmatter is false when the note has no valid frontmatter.
	HasFrontmatter bool
	Body           string
	BodyOffset     int
	Tags           []string
	Title          string
}

// Parse splits frontmatter from the body and extracts tags and title.
func Parse(data []byte) (*Result, error) {
	res := &Result{Body: string(data)}

	if blk, ok := Locate(data); ok {
		var node yaml.Node
		if err := yaml.Unmarshal(data[blk.YAMLStart:blk.YAMLEnd], &node); err == nil {
			var fm map[string]interface{}
			// Non-mapping frontmatter decodes to nothing useful; keep the body whole.
			if node.Kind == 0 || node.Decode(&fm) == nil {
				res.Frontmatter = fm
				res.Node = &node
				res.Block = blk
				res.HasFrontmatter = true
				res.BodyOffset = blk.BodyStart
				res.Body = string(data[blk.BodyStart:])
			}
		}
	}

	res.Tags = extractTags([]byte(res.Body), res.Frontmatter)
	res.Title = deriveTitle(res.Frontmatter, res.Body)
	return res, nil
}

// Locate finds a frontmatter block: a "---" line at the start of the document
// (after optional blank lines), closed by a "---" or "..." line.
func Locate(data []byte) (Block, bool) {
	start := 0
	for start < len(data) && (data[start] == '\n' || data[start] == '\r') {
		start++
	}
	first, next := line(data, start)
	if string(first) != "---" {
		return Block{}, false
	}
	yamlStart := next
	for pos := next; pos < len(data); {
		l, after := line(data, pos)
		if s := string(l); s == "---" || s == "..." {
			return Block{
				Open:      start,
				Close:     pos,
				YAMLStart: yamlStart,
				YAMLEnd:   pos,
				BodyStart: after,
			}, true
		}
		pos = after
	}
	return Block{}, false
}

// line returns the line starting at pos without its terminator, and the
// offset of the following line.
func line(data []byte, pos int) ([]byte, int) {
	end := bytes.IndexByte(data[pos:], '\n')
	if end < 0 {
		return bytes.TrimRight(data[pos:], "\r"), len(data)
	}
	return bytes.TrimRight(data[pos:pos+end], "\r"), pos + end + 1
}

// IsTagKey reports whether a frontmatter key holds tags.
func IsTagKey(key string) bool {
	k := strings.ToLower(key)
	return k == "tags" || k == "tag"
}

// extractTags collects tags from the frontmatter "tags"/"tag" field followed
// by inline #tags from the body, without duplicates.
func extractTags(body []byte, fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	keys := make([]string, 0, len(fm))
	for key := range fm {
		if IsTagKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		switch v := fm[key].(type) {
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		case string:
			for _, s := range strings.Fields(v) {
				add(s)
			}
		}
	}

	for _, seg := range markdown.FindHashtags(body) {
		add(string(seg.Value(body)[1:]))
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
