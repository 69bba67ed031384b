package api

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/james-see/bank2sf2/pkg/converter"
	"github.com/james-see/bank2sf2/pkg/riffio"
	"github.com/james-see/bank2sf2/pkg/sf2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func le(v ...uint32) []byte {
	var out []byte
	for _, x := range v {
		out = binary.LittleEndian.AppendUint32(out, x)
	}
	return out
}

// testDLS is a one-instrument collection with a 64-point 16-bit wave
func testDLS() []byte {
	fmtChunk := []byte{1, 0, 1, 0}
	fmtChunk = append(fmtChunk, le(44100, 88200)...)
	fmtChunk = append(fmtChunk, 2, 0, 16, 0)

	rgn := riffio.List("rgn ",
		riffio.Leaf("rgnh", []byte{0, 0, 127, 0, 0, 0, 127, 0, 0, 0, 0, 0}),
		riffio.Leaf("wlnk", append([]byte{0, 0, 0, 0}, le(1, 0)...)),
	)
	ins := riffio.List("ins ",
		riffio.Leaf("insh", le(1, 0, 0)),
		riffio.List("lrgn", rgn),
		riffio.List("INFO", riffio.Leaf("INAM", []byte("Lead\x00\x00"))),
	)
	wave := riffio.List("wave",
		riffio.Leaf("fmt ", fmtChunk),
		riffio.Leaf("data", make([]byte, 128)),
	)
	return riffio.Encode(riffio.Form("DLS ",
		riffio.List("lins", ins),
		riffio.List("wvpl", wave),
	))
}

func upload(t *testing.T, target, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(data)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	NewServer(converter.DefaultOptions()).Router().ServeHTTP(w, req)
	return w
}

func TestHealthAndFormats(t *testing.T) {
	router := NewServer(converter.DefaultOptions()).Router()

	tests := []struct {
		path string
		key  string
	}{
		{"/health", "status"},
		{"/api/v1/health", "status"},
		{"/api/v1/formats", "conversions"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("GET %s = %d", tt.path, w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if _, ok := body[tt.key]; !ok {
				t.Errorf("GET %s has no %q: %v", tt.path, tt.key, body)
			}
		})
	}
}

func TestConvertDLS(t *testing.T) {
	w := upload(t, "/api/v1/convert/dls2sf2?verify=true", "lead.dls", testDLS())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=lead.sf2" {
		t.Errorf("Content-Disposition = %q", got)
	}

	bank, err := sf2.NewReader(nil).Read(w.Body.Bytes())
	if err != nil {
		t.Fatalf("response is not a SoundFont: %v", err)
	}
	if bank.Presets[0].Name != "Lead" {
		t.Errorf("preset = %q, want Lead", bank.Presets[0].Name)
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		filename string
		data     []byte
		want     int
	}{
		{"no file", "/api/v1/convert/dls2sf2", "", nil, http.StatusBadRequest},
		{"not DLS", "/api/v1/convert/dls2sf2", "x.dls", []byte("garbage"), http.StatusUnprocessableEntity},
		{"inspect unknown", "/api/v1/inspect", "x.bin", []byte("garbage"), http.StatusUnprocessableEntity},
		{"inspect ECW", "/api/v1/inspect", "x.ecw", []byte("garbage"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := upload(t, tt.target, tt.filename, tt.data)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestInspect(t *testing.T) {
	w := upload(t, "/api/v1/inspect", "lead.dls", testDLS())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var s converter.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if s.Format != converter.FormatDLS || len(s.Presets) != 1 || s.Presets[0].Name != "Lead" {
		t.Errorf("summary = %+v", s)
	}
}
