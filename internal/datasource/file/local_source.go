// Package file implements a local filesystem-backed data source with
// optional legacy-encoding decoding for the consolidation pipeline.
package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding names understood by this package. They match what the header
// inspector reports for source files; the dictionary is always latin1.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin1"
)

// Local is a filesystem data source that opens files from the local disk and
// transparently decodes legacy single-byte content to UTF-8.
type Local struct {
	path     string
	encoding string
}

// NewLocal returns a Local source bound to path, assuming UTF-8 content.
func NewLocal(path string) *Local {
	return &Local{path: path, encoding: EncodingUTF8}
}

// NewLocalEncoded returns a Local source bound to path whose content is
// decoded from the named encoding. Unknown encoding names behave as UTF-8.
func NewLocalEncoded(path, encoding string) *Local {
	return &Local{path: path, encoding: encoding}
}

// decodedReadCloser pairs a transform.Reader with the underlying file so the
// caller's Close reaches the file handle.
type decodedReadCloser struct {
	io.Reader
	io.Closer
}

// Open opens the configured path for reading and returns an io.ReadCloser
// that yields UTF-8 text.
//
// Behavior:
//   - If the context is already canceled or its deadline exceeded at the time
//     of the call, Open returns the context error immediately without touching
//     the filesystem.
//   - Filesystem errors are wrapped with the path for context while still
//     permitting errors.Is/As checks (e.g., errors.Is(err, os.ErrNotExist)).
//   - For latin1 sources, bytes pass through an ISO 8859-1 decoder; every
//     byte is a valid code point, so decoding itself never fails.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	if l.encoding == EncodingLatin1 {
		return &decodedReadCloser{
			Reader: transform.NewReader(f, charmap.ISO8859_1.NewDecoder()),
			Closer: f,
		}, nil
	}
	return f, nil
}

// DecodeLatin1 decodes a byte slice of ISO 8859-1 text to a UTF-8 string.
// Used by the header inspector on sampled prefixes.
func DecodeLatin1(b []byte) string {
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), b)
	if err != nil {
		// Cannot happen for 8859-1 input; fall back to the raw bytes.
		return string(b)
	}
	return string(out)
}
