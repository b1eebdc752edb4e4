package document

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	pageWidth  = 595.0
	pageHeight = 842.0
)

type font string

const (
	regular font = "F1"
	bold    font = "F2"
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// Object numbers of the fixed part of every composed document. Page i uses
// firstPageObj+2i and its content stream firstPageObj+2i+1.
const (
	catalogObj   = 1
	pagesObj     = 2
	regularObj   = 3
	boldObj      = 4
	firstPageObj = 5
)

// pdfString encodes s as a WinAnsi literal string. Characters outside the code page
// become '?'.
func pdfString(s string) string {
	encoded, err := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()).String(s)
	if err != nil {
		encoded = s
	}

	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		switch {
		case c == '\\' || c == '(' || c == ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 32 || c > 126:
			fmt.Fprintf(&b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func textOp(x, y float64, f font, size float64, s string) string {
	return fmt.Sprintf("BT /%s %s Tf %s %s Td %s Tj ET\n", f, num(size), num(x), num(y), pdfString(s))
}

// writeDocument serializes the page content streams into a complete PDF file.
func writeDocument(pages [][]byte) []byte {
	objects := make([]string, 0, firstPageObj-1+2*len(pages))

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPageObj+2*i)
	}

	objects = append(objects,
		fmt.Sprintf("%d 0 obj\n<< /Type /Catalog /Pages %d 0 R >>\nendobj\n", catalogObj, pagesObj),
		fmt.Sprintf("%d 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", pagesObj, strings.Join(kids, " "), len(pages)),
		fmt.Sprintf("%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>\nendobj\n", regularObj),
		fmt.Sprintf("%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>\nendobj\n", boldObj),
	)

	for i, content := range pages {
		pageObj := firstPageObj + 2*i
		objects = append(objects,
			fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /%s %d 0 R /%s %d 0 R >> >> /Contents %d 0 R >>\nendobj\n",
				pageObj, pagesObj, int(pageWidth), int(pageHeight), regular, regularObj, bold, boldObj, pageObj+1),
			streamObject(pageObj+1, content),
		)
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects)+1)
	offsets = append(offsets, 0)

	for _, obj := range objects {
		offsets = append(offsets, out.Len())
		out.WriteString(obj)
	}

	xrefStart := out.Len()
	out.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)))
	out.WriteString("0000000000 65535 f \n")
	for i := 1; i < len(offsets); i++ {
		out.WriteString(fmt.Sprintf("%010d 00000 n \n", offsets[i]))
	}
	out.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets), catalogObj, xrefStart))

	return out.Bytes()
}

func streamObject(n int, content []byte) string {
	return fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", n, len(content), content)
}
