package document

import (
	"strings"
	"unicode/utf8"
)

// helveticaWidths holds the Helvetica advance widths of the printable ASCII range,
// in thousandths of the font size, starting at the space character.
var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

// boldFactor approximates Helvetica-Bold from the regular metrics.
const boldFactor = 1.08

func textWidth(s string, f font, size float64) float64 {
	units := 0
	for _, r := range s {
		if r >= ' ' && r <= '~' {
			units += helveticaWidths[r-' ']
			continue
		}
		units += 556
	}

	w := float64(units) * size / 1000
	if f == bold {
		w *= boldFactor
	}
	return w
}

// wrap splits s into lines no wider than width. Explicit newlines are kept and a
// single word wider than width is cut by characters.
func wrap(s string, f font, size, width float64) []string {
	var lines []string

	for _, paragraph := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := ""
		for _, word := range words {
			for textWidth(word, f, size) > width && utf8.RuneCountInString(word) > 1 {
				if current != "" {
					lines = append(lines, current)
					current = ""
				}
				head, tail := splitToWidth(word, f, size, width)
				lines = append(lines, head)
				word = tail
			}

			candidate := word
			if current != "" {
				candidate = current + " " + word
			}

			if textWidth(candidate, f, size) <= width {
				current = candidate
				continue
			}

			lines = append(lines, current)
			current = word
		}
		lines = append(lines, current)
	}

	return lines
}

func splitToWidth(word string, f font, size, width float64) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && textWidth(string(runes[:n+1]), f, size) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

// truncate shortens s with an ellipsis so it fits width.
func truncate(s string, f font, size, width float64) string {
	if textWidth(s, f, size) <= width {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && textWidth(string(runes)+"...", f, size) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
