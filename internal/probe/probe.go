// Package probe inspects yearly source files before any full read happens.
//
// For each file it samples a bounded prefix, detects the character encoding
// and the field separator, extracts the header column list, and parses the
// sales year out of the filename. The pipeline treats probe failures on a
// source file as fatal: a file whose header cannot be read would silently
// corrupt the superset schema downstream.
package probe

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"prescricoes/internal/datasource/file"
)

// maxHeaderBytes bounds how much of a file is sampled for header inspection.
const maxHeaderBytes = 8192

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// yearRe matches the 4-digit sales year embedded in source filenames
// (grouped_2014.csv, grouped_2021.csv, ...). Only years beginning "20" are
// accepted; anything else in the name is ignored.
var yearRe = regexp.MustCompile(`20\d{2}`)

// FileInfo describes one source file as seen by the header inspector.
type FileInfo struct {
	// Path is the inspected file path.
	Path string
	// Encoding is the detected content encoding: file.EncodingUTF8 or
	// file.EncodingLatin1 (the fallback when detection is inconclusive).
	Encoding string
	// Sep is the detected field separator (';' or ',').
	Sep rune
	// Year is the 4-digit sales year parsed from the filename.
	Year string
	// Columns is the ordered header column list. Empty-named columns
	// (trailing separators) are dropped.
	Columns []string
}

// Inspect samples the head of the file at path and returns its FileInfo.
// It fails when the file cannot be read, the filename carries no year, or
// the header is empty after decoding.
func Inspect(ctx context.Context, path string) (FileInfo, error) {
	info := FileInfo{Path: path}

	year, err := YearFromFilename(path)
	if err != nil {
		return info, err
	}
	info.Year = year

	head, err := peek(ctx, path, maxHeaderBytes)
	if err != nil {
		return info, err
	}
	if len(head) == 0 {
		return info, fmt.Errorf("empty file: %s", path)
	}

	info.Encoding = DetectEncoding(head)

	first := firstLine(head, info.Encoding)
	if first == "" {
		return info, fmt.Errorf("empty header in %s", path)
	}
	info.Sep = DetectSep(first)

	cols := headerColumns(first, info.Sep)
	if len(cols) == 0 {
		return info, fmt.Errorf("no usable columns in header of %s", path)
	}
	info.Columns = cols
	return info, nil
}

// YearFromFilename extracts the sales year from the base name of path.
func YearFromFilename(path string) (string, error) {
	m := yearRe.FindString(filepath.Base(path))
	if m == "" {
		return "", fmt.Errorf("no year (20xx) in filename %s", path)
	}
	return m, nil
}

// DetectEncoding classifies a sampled prefix. A UTF-8 BOM or fully valid
// UTF-8 bytes mean UTF-8; anything else falls back to latin1, the legacy
// encoding used by older extracts. The sample may end mid-rune, so up to
// three trailing bytes are ignored when validating.
func DetectEncoding(head []byte) string {
	if bytes.HasPrefix(head, []byte(utf8BOM)) {
		return file.EncodingUTF8
	}
	b := head
	for i := 0; i < 3 && len(b) > 0 && !utf8.Valid(b); i++ {
		b = b[:len(b)-1]
	}
	if utf8.Valid(b) {
		return file.EncodingUTF8
	}
	return file.EncodingLatin1
}

// DetectSep picks the field separator for a header line by comparing
// candidate delimiter counts. Semicolon wins ties.
func DetectSep(line string) rune {
	if strings.Count(line, ";") >= strings.Count(line, ",") {
		return ';'
	}
	return ','
}

// peek reads at most n bytes from the start of path.
func peek(ctx context.Context, path string, n int) ([]byte, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	lr := &io.LimitedReader{R: rc, N: int64(n)}
	if _, err := io.Copy(&buf, lr); err != nil {
		return nil, fmt.Errorf("sample %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// firstLine decodes the sampled prefix and returns its first line, with any
// trailing carriage return and leading BOM removed.
func firstLine(head []byte, encoding string) string {
	var text string
	if encoding == file.EncodingLatin1 {
		text = file.DecodeLatin1(head)
	} else {
		text = string(head)
	}
	text = strings.TrimPrefix(text, utf8BOM)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimRight(text, "\r")
}

// headerColumns parses the header line with a structural CSV read so quoted
// names containing the separator survive. When that fails it falls back to a
// raw split on the separator. Names are trimmed; empty names are dropped.
func headerColumns(line string, sep rune) []string {
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = sep
	cr.LazyQuotes = true

	fields, err := cr.Read()
	if err != nil {
		fields = strings.Split(line, string(sep))
	}

	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		c := strings.TrimSpace(f)
		if c == "" {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}
