// Package template loads templates from single-file components and plain
// HTML files and turns them into AST documents, consulting the document
// cache when one is configured.
package template

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNoTemplate is returned for a component without a <template> block.
	ErrNoTemplate = errors.New("no <template> block")
	// ErrUnterminated is returned when a top-level block is never closed.
	ErrUnterminated = errors.New("unterminated block")
	// ErrUnsupportedLang is returned for templates in a preprocessor language.
	ErrUnsupportedLang = errors.New("unsupported template language")
)

var (
	blockOpenRE    = regexp.MustCompile(`(?i)<(template|script|style)(\s[^>]*)?>`)
	templateTagRE  = regexp.MustCompile(`(?i)<(/?)template(\s[^>]*)?>`)
	langAttrRE     = regexp.MustCompile(`(?i)\blang\s*=\s*["']?([\w-]+)`)
	commentStartRE = regexp.MustCompile(`<!--`)
)

// Block is the <template> section of a single-file component.
type Block struct {
	// Content is the source between the open and close tags.
	Content string
	// Offset is the byte offset of Content in the component source.
	Offset int
	// Attrs is the raw attribute text of the open tag.
	Attrs string
}

// ExtractTemplate finds the top-level <template> block of a single-file
// component. Nested <template> elements inside it are kept in Content;
// <script> and <style> bodies and top-level comments are skipped.
func ExtractTemplate(source string) (Block, error) {
	pos := 0
	for pos < len(source) {
		loc := blockOpenRE.FindStringSubmatchIndex(source[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]

		if c := commentStartRE.FindStringIndex(source[pos:start]); c != nil {
			closeAt := strings.Index(source[pos+c[1]:], "-->")
			if closeAt < 0 {
				return Block{}, fmt.Errorf("%w: comment", ErrUnterminated)
			}
			pos = pos + c[1] + closeAt + len("-->")
			continue
		}

		name := strings.ToLower(source[pos+loc[2] : pos+loc[3]])
		var attrs string
		if loc[4] >= 0 {
			attrs = strings.TrimSpace(source[pos+loc[4] : pos+loc[5]])
		}

		if name != "template" {
			closeTag := "</" + name
			closeAt := strings.Index(strings.ToLower(source[end:]), closeTag)
			if closeAt < 0 {
				return Block{}, fmt.Errorf("%w: <%s>", ErrUnterminated, name)
			}
			pos = end + closeAt + len(closeTag)
			continue
		}

		if strings.HasSuffix(attrs, "/") {
			return Block{Offset: end, Attrs: strings.TrimSpace(strings.TrimSuffix(attrs, "/"))}, nil
		}
		if m := langAttrRE.FindStringSubmatch(attrs); m != nil && !strings.EqualFold(m[1], "html") {
			return Block{}, fmt.Errorf("%w: %s", ErrUnsupportedLang, m[1])
		}

		closeStart, err := matchingClose(source, end)
		if err != nil {
			return Block{}, err
		}
		return Block{
			Content: source[end:closeStart],
			Offset:  end,
			Attrs:   attrs,
		}, nil
	}
	return Block{}, ErrNoTemplate
}

// matchingClose returns the offset of the </template> that closes the block
// whose content starts at from.
func matchingClose(source string, from int) (int, error) {
	depth := 1
	for _, loc := range templateTagRE.FindAllStringSubmatchIndex(source[from:], -1) {
		closing := loc[3] > loc[2]
		selfClosing := loc[4] >= 0 && strings.HasSuffix(strings.TrimSpace(source[from+loc[4]:from+loc[5]]), "/")
		switch {
		case closing:
			depth--
		case !selfClosing:
			depth++
		}
		if depth == 0 {
			return from + loc[0], nil
		}
	}
	return 0, fmt.Errorf("%w: <template>", ErrUnterminated)
}

// IsComponentFile reports whether path holds a single-file component rather
// than a bare template.
func IsComponentFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vue")
}
