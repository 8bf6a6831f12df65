package ministream

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// lookupEncoding maps a TextEncoding name to a golang.org/x/text Encoding.
// The zero value ("") selects UTF-8.
func lookupEncoding(e TextEncoding) (encoding.Encoding, bool) {
	switch e {
	case "", EncodingUTF8:
		return unicode.UTF8, true
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), true
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), true
	default:
		return nil, false
	}
}

// encodeString converts s to bytes in the named encoding, using the
// golang.org/x/text encoder in the opposite direction from lookupEncoding's
// decoder. UTF-8 (the zero value) is Go's native string representation, so
// it skips the transformer entirely.
func encodeString(e TextEncoding, s string) ([]byte, error) {
	enc, ok := lookupEncoding(e)
	if !ok {
		return nil, ErrUnsupportedEncoding
	}
	if e == "" || e == EncodingUTF8 {
		return []byte(s), nil
	}
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decoder wraps a golang.org/x/text incremental transform.Transformer so
// that a trailing partial multi-byte sequence stays buffered here, inside
// the adapter, rather than inside the Stream's own Buffer. This is the
// decoder adapter that sits between the raw bytes a producer writes and
// the complete-codepoint strings a Text-mode Stream emits.
type decoder struct {
	t       transform.Transformer
	pending []byte // unconsumed tail bytes from the last Write
}

func newDecoder(enc encoding.Encoding) *decoder {
	return &decoder{t: enc.NewDecoder()}
}

// Write produces the longest prefix of b (plus any previously pending
// bytes) that forms complete codepoints. Trailing partial bytes are
// retained internally and consumed on the next Write or on End.
func (d *decoder) Write(b []byte) string {
	src := b
	if len(d.pending) > 0 {
		src = make([]byte, 0, len(d.pending)+len(b))
		src = append(src, d.pending...)
		src = append(src, b...)
		d.pending = nil
	}
	return d.drain(src, false)
}

// End flushes any remaining pending bytes, typically emitting replacement
// characters for a truncated sequence per the encoding's error policy.
func (d *decoder) End() string {
	if len(d.pending) == 0 {
		return ""
	}
	src := d.pending
	d.pending = nil
	return d.drain(src, true)
}

// HasPending reports whether the decoder currently holds a partial
// multi-byte sequence. The Stream's write fast path, which skips the
// decode round trip for same-encoding string chunks, only applies when
// HasPending is false.
func (d *decoder) HasPending() bool {
	return len(d.pending) > 0
}

func (d *decoder) drain(src []byte, atEOF bool) string {
	var out bytes.Buffer
	dst := make([]byte, 4096)
	for {
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]
		switch err {
		case transform.ErrShortDst:
			continue
		case transform.ErrShortSrc:
			if !atEOF {
				d.pending = append([]byte(nil), src...)
			}
			return out.String()
		default:
			return out.String()
		}
	}
}
