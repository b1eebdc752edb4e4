package document

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"hr-ops-bot/internal/models"

	"github.com/sirupsen/logrus"
)

// Stamp box on the first page, inside the bottom band kept free by the layout.
const (
	stampX      = 330.0
	stampY      = 60.0
	stampWidth  = 225.0
	stampHeight = 62.0
)

var (
	startxrefRe = regexp.MustCompile(`startxref\s+(\d+)\s+%%EOF\s*$`)
	sizeRe      = regexp.MustCompile(`/Size\s+(\d+)`)
	rootRe      = regexp.MustCompile(`/Root\s+(\d+)\s+0\s+R`)
	kidsRe      = regexp.MustCompile(`/Kids\s*\[\s*(\d+)\s+0\s+R`)
	contentsRe  = regexp.MustCompile(`/Contents\s*(\[[^\]]*\]|\d+\s+0\s+R)`)
)

// Stamp appends an approval box to the first page as an incremental update: a new
// content stream, a revised first page object and a new xref section. The bytes
// of doc stay an exact prefix of the result. On any failure doc is returned as is.
func (c *Composer) Stamp(doc []byte, stamp models.ApprovalStamp) []byte {
	out, err := appendStamp(doc, stamp)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"approver_id": stamp.ID,
			"bytes":       len(doc),
		}).Error("Failed to stamp document, returning it unchanged")
		return doc
	}

	return out
}

func appendStamp(doc []byte, stamp models.ApprovalStamp) ([]byte, error) {
	m := startxrefRe.FindSubmatch(doc)
	if m == nil {
		return nil, errors.New("startxref not found")
	}
	prevXref, _ := strconv.Atoi(string(m[1]))

	trailerAt := bytes.LastIndex(doc, []byte("trailer"))
	if trailerAt < 0 {
		return nil, errors.New("trailer not found")
	}
	trailer := doc[trailerAt:]

	sm := sizeRe.FindSubmatch(trailer)
	rm := rootRe.FindSubmatch(trailer)
	if sm == nil || rm == nil {
		return nil, errors.New("trailer is missing /Size or /Root")
	}
	size, _ := strconv.Atoi(string(sm[1]))
	root, _ := strconv.Atoi(string(rm[1]))

	pagesRef, err := dictRef(doc, root, `/Pages\s+(\d+)\s+0\s+R`)
	if err != nil {
		return nil, err
	}

	pagesBody, err := objectBody(doc, pagesRef)
	if err != nil {
		return nil, err
	}
	km := kidsRe.FindSubmatch(pagesBody)
	if km == nil {
		return nil, errors.New("page tree has no kids")
	}
	firstPage, _ := strconv.Atoi(string(km[1]))

	pageBody, err := objectBody(doc, firstPage)
	if err != nil {
		return nil, err
	}

	streamNum := size
	revised, err := withExtraContent(pageBody, streamNum)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(doc)
	if !bytes.HasSuffix(doc, []byte("\n")) {
		out.WriteByte('\n')
	}

	streamOffset := out.Len()
	out.WriteString(streamObject(streamNum, stampContent(stamp)))

	pageOffset := out.Len()
	fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", firstPage, revised)

	xrefStart := out.Len()
	out.WriteString("xref\n")
	fmt.Fprintf(&out, "%d 1\n%010d 00000 n \n", firstPage, pageOffset)
	fmt.Fprintf(&out, "%d 1\n%010d 00000 n \n", streamNum, streamOffset)
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root %d 0 R /Prev %d >>\nstartxref\n%d\n%%%%EOF\n", size+1, root, prevXref, xrefStart)

	return out.Bytes(), nil
}

// objectBody returns the dictionary of the latest definition of object n.
func objectBody(doc []byte, n int) ([]byte, error) {
	header := []byte(fmt.Sprintf("\n%d 0 obj\n", n))
	at := bytes.LastIndex(doc, header)
	if at < 0 {
		return nil, fmt.Errorf("object %d not found", n)
	}

	body := doc[at+len(header):]
	end := bytes.Index(body, []byte("endobj"))
	if end < 0 {
		return nil, fmt.Errorf("object %d is not terminated", n)
	}
	body = bytes.TrimSpace(body[:end])

	if s := bytes.Index(body, []byte("stream")); s >= 0 {
		body = bytes.TrimSpace(body[:s])
	}

	return body, nil
}

func dictRef(doc []byte, n int, pattern string) (int, error) {
	body, err := objectBody(doc, n)
	if err != nil {
		return 0, err
	}

	m := regexp.MustCompile(pattern).FindSubmatch(body)
	if m == nil {
		return 0, fmt.Errorf("object %d has no match for %s", n, pattern)
	}

	return strconv.Atoi(string(m[1]))
}

// withExtraContent rewrites /Contents of a page dictionary into an array that ends
// with the stamp stream.
func withExtraContent(page []byte, streamNum int) ([]byte, error) {
	loc := contentsRe.FindSubmatchIndex(page)
	if loc == nil {
		return nil, errors.New("page has no /Contents")
	}

	current := bytes.TrimSpace(page[loc[2]:loc[3]])
	current = bytes.TrimSpace(bytes.TrimSuffix(bytes.TrimPrefix(current, []byte("[")), []byte("]")))

	replacement := fmt.Sprintf("/Contents [%s %d 0 R]", current, streamNum)

	var revised bytes.Buffer
	revised.Write(page[:loc[0]])
	revised.WriteString(replacement)
	revised.Write(page[loc[1]:])

	return revised.Bytes(), nil
}

func stampContent(stamp models.ApprovalStamp) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "q 0.94 1 0.94 rg 0 0.5 0 RG 1 w %s %s %s %s re B Q\n",
		num(stampX), num(stampY), num(stampWidth), num(stampHeight))

	lines := [][2]string{
		{"Aprovado digitalmente por: ", stamp.Name},
		{"ID Discord: ", stamp.ID},
		{"Data/Hora: ", stamp.At.Format("02/01/2006 15:04:05")},
	}

	const size = 8.0
	x := stampX + 8
	y := stampY + stampHeight - 16
	for _, line := range lines {
		labelWidth := textWidth(line[0], bold, size)
		value := truncate(line[1], regular, size, stampWidth-16-labelWidth)
		fmt.Fprintf(&b, "BT 0 g /%s %s Tf %s %s Td %s Tj /%s %s Tf %s Tj ET\n",
			bold, num(size), num(x), num(y), pdfString(line[0]), regular, num(size), pdfString(value))
		y -= 15
	}

	return bytes.TrimRight(b.Bytes(), "\n")
}
