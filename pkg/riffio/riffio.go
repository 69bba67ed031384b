// Package riffio walks and writes RIFF chunk trees for the DLS and SF2 codecs
package riffio

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/go-audio/riff"
	"github.com/pkg/errors"
)

// Chunk identifiers shared by the soundbank formats
const (
	IDRiff = "RIFF"
	IDList = "LIST"
)

var (
	// ErrNotRIFF is returned when data does not start with a RIFF header
	ErrNotRIFF = errors.New("not a RIFF file")
	// ErrTruncated is returned when a chunk claims more bytes than its parent holds
	ErrTruncated = errors.New("truncated chunk")
)

// Chunk is one parsed chunk. For LIST chunks Type holds the list type and
// Data the payload after it.
type Chunk struct {
	ID     string
	Type   string
	Offset int // offset of the chunk header inside the walked body
	Data   []byte
}

// IsList reports whether c is a LIST of the given type
func (c Chunk) IsList(typ string) bool {
	return c.ID == IDList && c.Type == typ
}

// ReadForm checks the RIFF header of data and returns the form body that
// follows the form type.
func ReadForm(data []byte, form string) ([]byte, error) {
	p := riff.New(bytes.NewReader(data))
	if err := p.ParseHeaders(); err != nil {
		return nil, errors.Wrap(ErrNotRIFF, err.Error())
	}
	if got := string(p.Format[:]); got != form {
		return nil, errors.Wrapf(ErrNotRIFF, "form type %q, want %q", got, form)
	}

	body := data[12:]
	// Declared sizes larger than the file are left to Walk to report.
	if size := int(p.Size) - 4; size >= 0 && size < len(body) {
		body = body[:size]
	}
	return body, nil
}

// Walk returns the chunks directly contained in body, in order. Odd-sized
// chunks skip their pad byte. When a chunk overruns body, the chunks read
// so far are returned together with ErrTruncated.
func Walk(body []byte) ([]Chunk, error) {
	r := bytes.NewReader(body)
	p := riff.New(r)

	var chunks []Chunk
	for r.Len() >= 8 {
		offset := len(body) - r.Len()
		id, size, err := p.IDnSize()
		if err != nil {
			return chunks, errors.Wrapf(err, "chunk header at offset %d", offset)
		}

		start := offset + 8
		end := start + int(size)
		if end > len(body) {
			return chunks, errors.Wrapf(ErrTruncated, "%q at offset %d declares %d bytes, %d available",
				string(id[:]), offset, size, len(body)-start)
		}

		c := Chunk{ID: string(id[:]), Offset: offset, Data: body[start:end]}
		if (c.ID == IDList || c.ID == IDRiff) && len(c.Data) >= 4 {
			c.Type = string(c.Data[:4])
			c.Data = c.Data[4:]
		}
		chunks = append(chunks, c)

		next := end + int(size&1)
		if next >= len(body) {
			break
		}
		if _, err := r.Seek(int64(next), io.SeekStart); err != nil {
			return chunks, errors.WithStack(err)
		}
	}
	return chunks, nil
}

// Find returns the first chunk with the given id
func Find(chunks []Chunk, id string) (Chunk, bool) {
	for _, c := range chunks {
		if c.ID == id {
			return c, true
		}
	}
	return Chunk{}, false
}

// FindList returns the first LIST chunk of the given type
func FindList(chunks []Chunk, typ string) (Chunk, bool) {
	for _, c := range chunks {
		if c.IsList(typ) {
			return c, true
		}
	}
	return Chunk{}, false
}

// Node is an element of a chunk tree being written
type Node interface {
	size() int
	appendTo(dst []byte) []byte
}

type leaf struct {
	id   string
	data []byte
}

type list struct {
	id       string
	typ      string
	children []Node
}

// Leaf creates a data chunk
func Leaf(id string, data []byte) Node {
	return &leaf{id: id, data: data}
}

// List creates a LIST chunk of the given type
func List(typ string, children ...Node) Node {
	return &list{id: IDList, typ: typ, children: children}
}

// Form creates the top-level RIFF chunk
func Form(form string, children ...Node) Node {
	return &list{id: IDRiff, typ: form, children: children}
}

func (l *leaf) size() int {
	return 8 + len(l.data) + len(l.data)&1
}

func (l *leaf) appendTo(dst []byte) []byte {
	dst = appendFourCC(dst, l.id)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(l.data)))
	dst = append(dst, l.data...)
	if len(l.data)&1 == 1 {
		dst = append(dst, 0)
	}
	return dst
}

func (l *list) size() int {
	n := 12
	for _, c := range l.children {
		n += c.size()
	}
	return n
}

func (l *list) appendTo(dst []byte) []byte {
	dst = appendFourCC(dst, l.id)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(l.size()-8))
	dst = appendFourCC(dst, l.typ)
	for _, c := range l.children {
		dst = c.appendTo(dst)
	}
	return dst
}

func appendFourCC(dst []byte, id string) []byte {
	var cc [4]byte
	copy(cc[:], "    ")
	copy(cc[:], id)
	return append(dst, cc[:]...)
}

// Encode serialises a chunk tree
func Encode(n Node) []byte {
	return n.appendTo(make([]byte, 0, n.size()))
}

// WriteTo serialises a chunk tree to w
func WriteTo(w io.Writer, n Node) (int64, error) {
	written, err := w.Write(Encode(n))
	return int64(written), err
}
