package domain

import "strings"

// Digraphs map to a single cyrillic letter and must be tried before the
// single-letter table. Mixed-case forms appear in shouted street names
// like "HUSINjSKIH".
var latinDigraphs = map[string]rune{
	"dj": 'ђ', "lj": 'љ', "nj": 'њ',
	"DJ": 'Ђ', "Dj": 'Ђ',
	"LJ": 'Љ', "Lj": 'Љ',
	"NJ": 'Њ', "Nj": 'Њ',
}

var latinToCyrillic = map[rune]rune{
	'a': 'а', 'b': 'б', 'c': 'ц', 'č': 'ч', 'ć': 'ћ',
	'd': 'д', 'đ': 'ђ', 'e': 'е', 'f': 'ф', 'g': 'г',
	'h': 'х', 'i': 'и', 'j': 'ј', 'k': 'к', 'l': 'л',
	'm': 'м', 'n': 'н', 'o': 'о', 'p': 'п', 'r': 'р',
	's': 'с', 'š': 'ш', 't': 'т', 'u': 'у', 'v': 'в',
	'z': 'з', 'ž': 'ж',
	'A': 'А', 'B': 'Б', 'C': 'Ц', 'Č': 'Ч', 'Ć': 'Ћ',
	'D': 'Д', 'Đ': 'Ђ', 'E': 'Е', 'F': 'Ф', 'G': 'Г',
	'H': 'Х', 'I': 'И', 'J': 'Ј', 'K': 'К', 'L': 'Л',
	'M': 'М', 'N': 'Н', 'O': 'О', 'P': 'П', 'R': 'Р',
	'S': 'С', 'Š': 'Ш', 'T': 'Т', 'U': 'У', 'V': 'В',
	'Z': 'З', 'Ž': 'Ж',
}

// ToCyrillic transliterates Serbian latin text to cyrillic. Runes without
// a mapping (digits, punctuation, text already in cyrillic) pass through
// unchanged, so the function is idempotent on canonical input.
func ToCyrillic(latin string) string {
	runes := []rune(latin)
	var b strings.Builder
	b.Grow(len(latin))

	for i := 0; i < len(runes); i++ {
		if i+1 < len(runes) {
			if cyr, ok := latinDigraphs[string(runes[i:i+2])]; ok {
				b.WriteRune(cyr)
				i++
				continue
			}
		}
		if cyr, ok := latinToCyrillic[runes[i]]; ok {
			b.WriteRune(cyr)
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
