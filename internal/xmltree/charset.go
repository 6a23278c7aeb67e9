package xmltree

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/ianaindex"
)

// charsetReader transcodes documents whose XML declaration names a non-UTF-8
// encoding (e.g. encoding="ISO-8859-1"), resolving the name through the IANA
// encoding index.
//
// The decoder only calls this for charsets it does not handle natively, so
// UTF-8 input never pays for a lookup.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", charset, err)
	}
	if enc == nil {
		// The IANA index knows the name but x/text ships no decoder for it.
		return nil, fmt.Errorf("charset %q: no decoder available", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}
