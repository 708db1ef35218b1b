package cache

import "strings"

// keyEscaper maps keys to flat filenames. '|' is the escape character and
// is itself escaped, which keeps the mapping injective: "a/b" and "a||b"
// end up as "a||b" and "a|p|pb".
var keyEscaper = strings.NewReplacer(
	"|", "|p",
	"/", "||",
	"\\", "|b",
)

// EscapeKey converts a cache key into a filename that contains no path
// separators. Scoped npm packages keep a readable name:
// "@babel/core.vit" becomes "@babel||core.vit".
func EscapeKey(key string) string {
	name := keyEscaper.Replace(key)
	if name == "" || name == "." || name == ".." {
		// Dot-only names cannot be files. Neither escaped form can come
		// out of the replacer for any other key.
		return "|e" + strings.Repeat("|d", len(name))
	}
	return name
}
