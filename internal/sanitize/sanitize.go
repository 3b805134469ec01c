// Package sanitize neutralizes active markup in bookmark text before it is
// echoed to clients.
//
// The policy is a whitelist: known inline and block tags survive with a
// filtered attribute set, anything else has its angle brackets
// entity-escaped so it renders as text. Output is stable under repeated
// application.
package sanitize

import (
	"html"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/MrSnakeDoc/bookmarkd/internal/domain"
)

// Bookmark returns an output-safe copy of b. ID and Rating pass through.
func Bookmark(b domain.Bookmark) domain.Bookmark {
	return domain.Bookmark{
		ID:     b.ID,
		Title:  HTML(b.Title),
		URL:    HTML(b.URL),
		Desc:   HTML(b.Desc),
		Rating: b.Rating,
	}
}

// Bookmarks sanitizes every element of bs. It never returns nil.
func Bookmarks(bs []domain.Bookmark) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(bs))
	for _, b := range bs {
		out = append(out, Bookmark(b))
	}
	return out
}

// HTML filters s through the tag whitelist.
func HTML(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 16)

	z := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if z.Err() != io.EOF {
				// Unreachable without a buffer limit; fall back to escaping everything.
				return escapeBrackets(s)
			}
			// A tag cut off by the end of input, e.g. "see <b".
			sb.WriteString(escapeBrackets(string(z.Raw())))
			return sb.String()

		case xhtml.TextToken:
			sb.WriteString(escapeBrackets(string(z.Raw())))

		case xhtml.CommentToken:
			// Only real <!-- --> comments are dropped. The tokenizer also
			// reports "</ x>", "<!x>" and "<?x" as comments; those are text.
			raw := string(z.Raw())
			if !strings.HasPrefix(raw, "<!--") {
				sb.WriteString(escapeBrackets(raw))
			}

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			// Tokenize the content of <script>, <style>, <title>… like any
			// other text so nested tags go through the whitelist too.
			if tt == xhtml.StartTagToken {
				z.NextIsNotRawText()
			}
			allowed, ok := whitelist[tok.Data]
			if !ok {
				sb.WriteString(escapeBrackets(raw))
				continue
			}
			writeStartTag(&sb, tok, allowed, tt == xhtml.SelfClosingTagToken)

		case xhtml.EndTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			if _, ok := whitelist[tok.Data]; !ok {
				sb.WriteString(escapeBrackets(raw))
				continue
			}
			sb.WriteString("</")
			sb.WriteString(tok.Data)
			sb.WriteByte('>')

		default:
			// doctype and anything else is rendered as text
			sb.WriteString(escapeBrackets(string(z.Raw())))
		}
	}
}

func writeStartTag(sb *strings.Builder, tok xhtml.Token, allowed []string, selfClosing bool) {
	sb.WriteByte('<')
	sb.WriteString(tok.Data)
	for _, attr := range tok.Attr {
		if attr.Namespace != "" || !contains(allowed, attr.Key) {
			continue
		}
		if urlAttrs[attr.Key] && !safeURL(attr.Val) {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(attr.Key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(attr.Val))
		sb.WriteByte('"')
	}
	if selfClosing {
		sb.WriteString(" /")
	}
	sb.WriteByte('>')
}

var bracketEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

func escapeBrackets(s string) string {
	return bracketEscaper.Replace(s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
