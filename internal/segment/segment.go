// Package segment splits response text into speakable sentence units.
package segment

import "strings"

// Sentences splits text into trimmed, non-empty sentence fragments.
// Delimiters are the Latin full stop and the Devanagari danda (U+0964), so
// both English and Hindi responses segment the same way. The delimiter is
// dropped from the fragment. Text without any terminal punctuation comes
// back as a single trimmed element; blank input yields nil.
func Sentences(text string) []string {
	txt := strings.TrimSpace(text)
	if txt == "" {
		return nil
	}
	var out []string
	var b strings.Builder
	for _, r := range txt {
		switch r {
		case '.', '।':
			flush(&b, &out)
		default:
			b.WriteRune(r)
		}
	}
	flush(&b, &out)
	return out
}

func flush(b *strings.Builder, out *[]string) {
	s := strings.TrimSpace(b.String())
	if s != "" {
		*out = append(*out, s)
	}
	b.Reset()
}
