package riffio

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Codec converts between Go strings and the byte strings stored in soundbank
// chunks. Soundbank tools write names in the host code page, so the reader
// needs to be told which one.
type Codec struct {
	name string
	enc  encoding.Encoding
}

var codecs = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"shift-jis":    japanese.ShiftJIS,
	"utf-8":        unicode.UTF8,
}

// DefaultCodec is used when no code page is configured
var DefaultCodec = &Codec{name: "windows-1252", enc: charmap.Windows1252}

// LookupCodec returns the codec registered under name
func LookupCodec(name string) (*Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "cp1252":
		key = "windows-1252"
	case "latin1":
		key = "iso-8859-1"
	case "sjis", "cp932":
		key = "shift-jis"
	case "utf8":
		key = "utf-8"
	}
	enc, ok := codecs[key]
	if !ok {
		return nil, errors.Errorf("unknown code page %q", name)
	}
	return &Codec{name: key, enc: enc}, nil
}

// CodecNames lists the canonical code page names
func CodecNames() []string {
	return []string{"windows-1252", "iso-8859-1", "shift-jis", "utf-8"}
}

// Name returns the canonical code page name
func (c *Codec) Name() string {
	if c == nil {
		return DefaultCodec.name
	}
	return c.name
}

func (c *Codec) encoding() encoding.Encoding {
	if c == nil {
		return DefaultCodec.enc
	}
	return c.enc
}

// DecodeZSTR decodes a zero-terminated string. Bytes after the first NUL
// are ignored.
func (c *Codec) DecodeZSTR(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	s, _, err := transform.Bytes(c.encoding().NewDecoder(), b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

func (c *Codec) encode(s string) []byte {
	enc := encoding.ReplaceUnsupported(c.encoding().NewEncoder())
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return b
}

// EncodeZSTR encodes s as a zero-terminated string padded to an even length
func (c *Codec) EncodeZSTR(s string) []byte {
	b := append(c.encode(s), 0)
	if len(b)&1 == 1 {
		b = append(b, 0)
	}
	return b
}

// EncodeName encodes s into a fixed-width field. The field always ends with
// at least one NUL.
func (c *Codec) EncodeName(s string, width int) []byte {
	out := make([]byte, width)
	b := c.encode(s)
	if len(b) > width-1 {
		b = b[:width-1]
	}
	copy(out, b)
	return out
}
