package document

import (
	"bytes"
	"fmt"
)

const (
	marginLeft   = 57.0
	marginRight  = 57.0
	marginTop    = 70.0
	marginBottom = 140.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// layout places content top-down and opens a new page when the next block does
// not fit above the bottom margin. The bottom band stays free for the approval
// stamp and the page footer.
type layout struct {
	pages []*bytes.Buffer
	y     float64
}

func newLayout() *layout {
	l := &layout{}
	l.newPage()
	return l
}

func (l *layout) newPage() {
	l.pages = append(l.pages, &bytes.Buffer{})
	l.y = pageHeight - marginTop
}

func (l *layout) out() *bytes.Buffer {
	return l.pages[len(l.pages)-1]
}

// ensure reports whether a page break was needed to fit h points.
func (l *layout) ensure(h float64) bool {
	if l.y-h >= marginBottom {
		return false
	}
	l.newPage()
	return true
}

func (l *layout) space(h float64) {
	l.y -= h
	if l.y < marginBottom {
		l.newPage()
	}
}

func (l *layout) textAt(x, y float64, f font, size float64, s string, a align, width float64) {
	switch a {
	case alignCenter:
		x += (width - textWidth(s, f, size)) / 2
	case alignRight:
		x += width - textWidth(s, f, size)
	}
	l.out().WriteString(textOp(x, y, f, size, s))
}

// paragraph writes wrapped text across the content width, breaking pages between lines.
func (l *layout) paragraph(s string, f font, size float64, a align) {
	leading := size * 1.3
	for _, line := range wrap(s, f, size, contentWidth) {
		l.ensure(leading)
		l.y -= leading
		l.textAt(marginLeft, l.y+size*0.3, f, size, line, a, contentWidth)
	}
}

func (l *layout) heading(s string) {
	l.ensure(40)
	l.space(6)
	l.paragraph(s, bold, 11, alignLeft)
	l.space(4)
}

func (l *layout) rect(x, y, w, h float64, fillGray float64, fill bool) {
	if fill {
		fmt.Fprintf(l.out(), "q %s g %s %s %s %s re B Q\n", num(fillGray), num(x), num(y), num(w), num(h))
		return
	}
	fmt.Fprintf(l.out(), "%s %s %s %s re S\n", num(x), num(y), num(w), num(h))
}

func (l *layout) line(x1, y1, x2, y2 float64) {
	fmt.Fprintf(l.out(), "%s %s m %s %s l S\n", num(x1), num(y1), num(x2), num(y2))
}

// cell is one box of a table row.
type cell struct {
	lines  []string
	font   font
	align  align
	width  float64
	filled bool
	gray   float64
	white  bool
}

const (
	cellPadding = 5.0
	cellSize    = 9.0
	cellLeading = 11.0
)

// row draws the cells side by side with a shared height and moves the cursor below them.
func (l *layout) row(cells []cell) {
	height := rowHeight(cells)
	top := l.y
	x := marginLeft
	for _, c := range cells {
		l.rect(x, top-height, c.width, height, c.gray, c.filled)
		if c.white {
			l.out().WriteString("1 g\n")
		}
		for i, text := range c.lines {
			baseline := top - cellPadding - float64(i+1)*cellLeading + 2.5
			l.textAt(x+cellPadding, baseline, c.font, cellSize, text, c.align, c.width-2*cellPadding)
		}
		if c.white {
			l.out().WriteString("0 g\n")
		}
		x += c.width
	}

	l.y = top - height
}

func rowHeight(cells []cell) float64 {
	height := 0.0
	for _, c := range cells {
		if h := float64(len(c.lines))*cellLeading + 2*cellPadding; h > height {
			height = h
		}
	}
	return height
}

// pageContents returns the streams with a "Página i de n" footer on every page.
func (l *layout) pageContents() [][]byte {
	total := len(l.pages)
	contents := make([][]byte, total)
	for i, page := range l.pages {
		footer := fmt.Sprintf("Página %d de %d", i+1, total)
		page.WriteString(textOp(marginLeft+(contentWidth-textWidth(footer, regular, 8))/2, 30, regular, 8, footer))
		contents[i] = bytes.TrimRight(page.Bytes(), "\n")
	}
	return contents
}
