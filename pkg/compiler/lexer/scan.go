package lexer

import "github.com/recera/vuec/pkg/compiler/ast"

type scannedAttr struct {
	name  string
	quote ast.QuoteType
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f'
}

// rawTagName reads the tag name out of a raw `<tag ...>` or `</tag>`.
func rawTagName(raw string) string {
	i := 0
	if i < len(raw) && raw[i] == '<' {
		i++
	}
	if i < len(raw) && raw[i] == '/' {
		i++
	}
	start := i
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	return raw[start:i]
}

// scanAttrs walks a raw start tag and reports each attribute's name as
// written together with its quote style. It mirrors the tokenizer's
// attribute rules closely enough to pair up with TagAttr by position.
func scanAttrs(raw string) []scannedAttr {
	i := 1
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}

	var out []scannedAttr
	for i < len(raw) {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}

		start := i
		i++ // a leading '=' belongs to the name
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '=' && raw[i] != '>' {
			i++
		}
		a := scannedAttr{name: raw[start:i], quote: ast.NoValue}

		j := i
		for j < len(raw) && isSpace(raw[j]) {
			j++
		}
		if j < len(raw) && raw[j] == '=' {
			j++
			for j < len(raw) && isSpace(raw[j]) {
				j++
			}
			switch {
			case j < len(raw) && (raw[j] == '"' || raw[j] == '\''):
				q := raw[j]
				if q == '"' {
					a.quote = ast.Double
				} else {
					a.quote = ast.Single
				}
				j++
				for j < len(raw) && raw[j] != q {
					j++
				}
				j++
			default:
				a.quote = ast.Unquoted
				for j < len(raw) && !isSpace(raw[j]) && raw[j] != '>' {
					j++
				}
			}
			i = j
		}
		out = append(out, a)
	}
	return out
}
