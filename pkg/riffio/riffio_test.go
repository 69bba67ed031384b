package riffio

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestWalkRoundTrip(t *testing.T) {
	tree := Form("test",
		Leaf("abcd", []byte{1, 2, 3}),
		List("INFO",
			Leaf("INAM", []byte("Bank\x00")),
		),
		Leaf("efgh", []byte{9, 9}),
	)
	data := Encode(tree)

	body, err := ReadForm(data, "test")
	if err != nil {
		t.Fatalf("ReadForm() error = %v", err)
	}

	chunks, err := Walk(body)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("Walk() returned %d chunks, want 3", len(chunks))
	}

	if chunks[0].ID != "abcd" || !bytes.Equal(chunks[0].Data, []byte{1, 2, 3}) {
		t.Errorf("chunk 0 = %q %v", chunks[0].ID, chunks[0].Data)
	}
	if !chunks[1].IsList("INFO") {
		t.Errorf("chunk 1 = %q/%q, want LIST/INFO", chunks[1].ID, chunks[1].Type)
	}
	// odd chunk is padded, so the LIST starts at 8+3+1
	if chunks[1].Offset != 12 {
		t.Errorf("chunk 1 offset = %d, want 12", chunks[1].Offset)
	}

	inner, err := Walk(chunks[1].Data)
	if err != nil {
		t.Fatalf("Walk(INFO) error = %v", err)
	}
	if nam, ok := Find(inner, "INAM"); !ok || DefaultCodec.DecodeZSTR(nam.Data) != "Bank" {
		t.Errorf("INAM not found or wrong: %+v", inner)
	}
	if _, ok := FindList(chunks, "INFO"); !ok {
		t.Error("FindList(INFO) failed")
	}
}

func TestReadFormErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"wrong magic", []byte("RIFX\x04\x00\x00\x00test")},
		{"wrong form", Encode(Form("abcd"))},
		{"short", []byte("RI")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadForm(tt.data, "test"); !errors.Is(err, ErrNotRIFF) {
				t.Errorf("ReadForm() error = %v, want ErrNotRIFF", err)
			}
		})
	}
}

func TestWalkTruncated(t *testing.T) {
	data := Encode(List("lins", Leaf("aaaa", []byte{1, 2}), Leaf("bbbb", make([]byte, 16))))
	body := data[12 : len(data)-4]

	chunks, err := Walk(body)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("Walk() error = %v, want ErrTruncated", err)
	}
	if len(chunks) != 1 || chunks[0].ID != "aaaa" {
		t.Errorf("Walk() chunks = %+v, want the first chunk only", chunks)
	}
}

func TestCodec(t *testing.T) {
	if _, err := LookupCodec("klingon"); err == nil {
		t.Error("LookupCodec(klingon) should fail")
	}

	for _, name := range CodecNames() {
		c, err := LookupCodec(name)
		if err != nil {
			t.Fatalf("LookupCodec(%q) error = %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("Name() = %q, want %q", c.Name(), name)
		}
	}

	if got := DefaultCodec.DecodeZSTR([]byte{'C', 'a', 'f', 0xE9, 0, 'x'}); got != "Café" {
		t.Errorf("DecodeZSTR() = %q, want %q", got, "Café")
	}

	z := DefaultCodec.EncodeZSTR("abc")
	if !bytes.Equal(z, []byte{'a', 'b', 'c', 0}) {
		t.Errorf("EncodeZSTR(abc) = %v", z)
	}
	z = DefaultCodec.EncodeZSTR("ab")
	if len(z) != 4 || z[2] != 0 {
		t.Errorf("EncodeZSTR(ab) = %v, want padded to 4", z)
	}

	name := DefaultCodec.EncodeName("A name that is far too long for SF2", 20)
	if len(name) != 20 || name[19] != 0 {
		t.Errorf("EncodeName() = %v, want 20 bytes ending in NUL", name)
	}

	sjis, _ := LookupCodec("sjis")
	enc := sjis.EncodeName("ピアノ", 20)
	if got := sjis.DecodeZSTR(enc); got != "ピアノ" {
		t.Errorf("shift-jis round trip = %q", got)
	}
}
