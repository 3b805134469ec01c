package sanitize

import "strings"

// whitelist maps allowed tag names to their allowed attributes.
var whitelist = map[string][]string{
	"a":          {"href", "title", "target"},
	"abbr":       {"title"},
	"address":    nil,
	"article":    nil,
	"aside":      nil,
	"b":          nil,
	"bdi":        {"dir"},
	"bdo":        {"dir"},
	"big":        nil,
	"blockquote": {"cite"},
	"br":         nil,
	"caption":    nil,
	"center":     nil,
	"cite":       nil,
	"code":       nil,
	"col":        {"align", "valign", "span", "width"},
	"colgroup":   {"align", "valign", "span", "width"},
	"dd":         nil,
	"del":        {"datetime"},
	"details":    {"open"},
	"div":        nil,
	"dl":         nil,
	"dt":         nil,
	"em":         nil,
	"figcaption": nil,
	"figure":     nil,
	"font":       {"color", "size", "face"},
	"footer":     nil,
	"h1":         nil,
	"h2":         nil,
	"h3":         nil,
	"h4":         nil,
	"h5":         nil,
	"h6":         nil,
	"header":     nil,
	"hr":         nil,
	"i":          nil,
	"img":        {"src", "alt", "title", "width", "height"},
	"ins":        {"datetime"},
	"li":         nil,
	"mark":       nil,
	"nav":        nil,
	"ol":         nil,
	"p":          nil,
	"pre":        nil,
	"s":          nil,
	"section":    nil,
	"small":      nil,
	"span":       nil,
	"strong":     nil,
	"sub":        nil,
	"summary":    nil,
	"sup":        nil,
	"table":      {"width", "border", "align", "valign"},
	"tbody":      {"align", "valign"},
	"td":         {"width", "rowspan", "colspan", "align", "valign"},
	"tfoot":      {"align", "valign"},
	"th":         {"width", "rowspan", "colspan", "align", "valign"},
	"thead":      {"align", "valign"},
	"tr":         {"rowspan", "align", "valign"},
	"tt":         nil,
	"u":          nil,
	"ul":         nil,
}

// urlAttrs are checked against safeURL before being kept.
var urlAttrs = map[string]bool{
	"href": true,
	"src":  true,
	"cite": true,
}

var safeURLPrefixes = []string{
	"http://",
	"https://",
	"mailto:",
	"tel:",
	"data:image/",
	"ftp://",
	"#",
	"/",
	"./",
	"../",
}

// safeURL rejects script-bearing schemes. Relative references without a
// scheme are allowed.
func safeURL(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return true
	}
	for _, p := range safeURLPrefixes {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	colon := strings.IndexByte(v, ':')
	if colon < 0 {
		return true
	}
	// "a/b:c" or "?x=y:z" are relative, the colon is not a scheme separator.
	return strings.ContainsAny(v[:colon], "/?#")
}
