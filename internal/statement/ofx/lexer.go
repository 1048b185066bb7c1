package ofx

import (
	"strings"
)

type tokenKind int

const (
	tokenOpen tokenKind = iota
	tokenClose
)

// token is a single OFX tag. Open tags carry the text that follows them up
// to the next tag; in SGML files that text is the element value and the
// closing tag is usually omitted.
type token struct {
	kind  tokenKind
	name  string
	value string
	line  int
}

var entities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&nbsp;", " ",
)

// lex splits the OFX body into tags. Processing instructions, declarations
// and comments are dropped. Text before the first tag (the OFX 1.x colon
// header) is ignored.
func lex(body string) []token {
	var (
		tokens []token
		line   = 1
		i      = 0
	)

	for i < len(body) {
		start := strings.IndexByte(body[i:], '<')
		if start < 0 {
			break
		}

		line += strings.Count(body[i:i+start], "\n")
		i += start

		end := strings.IndexByte(body[i:], '>')
		if end < 0 {
			break
		}

		raw := body[i+1 : i+end]
		tagLine := line
		line += strings.Count(raw, "\n")
		i += end + 1

		if raw == "" || raw[0] == '?' || raw[0] == '!' {
			continue
		}

		if raw[0] == '/' {
			tokens = append(tokens, token{
				kind: tokenClose,
				name: strings.ToUpper(strings.TrimSpace(raw[1:])),
				line: tagLine,
			})

			continue
		}

		next := strings.IndexByte(body[i:], '<')
		if next < 0 {
			next = len(body) - i
		}

		text := body[i : i+next]
		line += strings.Count(text, "\n")
		i += next

		tokens = append(tokens, token{
			kind:  tokenOpen,
			name:  strings.ToUpper(tagName(raw)),
			value: entities.Replace(strings.TrimSpace(text)),
			line:  tagLine,
		})
	}

	return tokens
}

// tagName strips attributes from an XML start tag.
func tagName(raw string) string {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	if i := strings.IndexAny(raw, " \t\r\n"); i >= 0 {
		return raw[:i]
	}

	return raw
}
