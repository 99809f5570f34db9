package scaffold

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var punct = regexp.MustCompile("[\t !\"#$%&'()*\\-/<=>?@\\[\\\\\\]^_`{|},.]+")

// Letters that have no canonical decomposition into an ASCII base letter.
var translit = map[rune]string{
	'ß': "ss",
	'æ': "ae",
	'ø': "o",
	'œ': "oe",
	'ł': "l",
	'đ': "d",
	'ð': "d",
	'þ': "th",
	'ħ': "h",
	'ı': "i",
	'ŋ': "ng",
	'ŧ': "t",
	'ĸ': "k",
	'ſ': "s",
}

// Slugify derives an ASCII, URL-safe identifier from text. "Héllo World!"
// becomes "hello-world".
func Slugify(text string) string {
	var words []string
	for _, word := range punct.Split(strings.ToLower(text), -1) {
		if word = toASCII(word); word != "" {
			words = append(words, word)
		}
	}
	return strings.Join(words, "-")
}

// toASCII strips diacritics and transliterates the remaining non-ASCII
// letters it knows; anything else is dropped.
func toASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	decomposed, _, err := transform.String(t, s)
	if err != nil {
		decomposed = s
	}
	var b strings.Builder
	for _, r := range decomposed {
		switch {
		case r < utf8.RuneSelf:
			b.WriteRune(r)
		case translit[r] != "":
			b.WriteString(translit[r])
		}
	}
	return b.String()
}
