// Package testutil defines support code for unit tests.
package testutil

import (
	"strings"

	"github.com/creachadair/jreader"
)

// NewReader returns a reader over input with the given lenient setting.
func NewReader(input string, lenient bool) *jreader.Reader {
	return jreader.NewReaderWithOptions(strings.NewReader(input), jreader.Options{Lenient: lenient})
}

// Tokens reads all the tokens from r until the end of its input, and returns
// them along with the path reported after each token. The final EndDocument
// token is included.
func Tokens(r *jreader.Reader) (toks []jreader.Token, paths []string, err error) {
	for {
		tok, err := r.Next()
		if err != nil {
			return toks, paths, err
		}
		toks = append(toks, tok)
		paths = append(paths, r.Path())
		if tok.Kind == jreader.EndDocument {
			return toks, paths, nil
		}
	}
}
