// Package textenc resolves and auto-detects character encodings for the
// input and output streams.
package textenc

import (
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// SniffLen is how many bytes of the file head Detect needs at most.
const SniffLen = 4096

// Resolve returns the encoding registered under the given IANA/WHATWG label.
func Resolve(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, eris.Wrapf(err, "textenc: unknown encoding %q", label)
	}
	return enc, nil
}

// Detect sniffs raw file content and returns the best-guess encoding and its
// canonical name. Ambiguous content falls back to windows-1252, which decodes
// ASCII unchanged.
func Detect(head []byte) (encoding.Encoding, string) {
	enc, name, _ := charset.DetermineEncoding(head, "")
	return enc, name
}

// Reader decodes enc-encoded bytes from r into UTF-8.
func Reader(r io.Reader, enc encoding.Encoding) io.Reader {
	return enc.NewDecoder().Reader(r)
}

// Writer encodes UTF-8 text written to it into enc before passing it to w.
func Writer(w io.Writer, enc encoding.Encoding) io.Writer {
	return enc.NewEncoder().Writer(w)
}
