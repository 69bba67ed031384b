package mcpserver

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/james-see/bank2sf2/pkg/converter"
	"github.com/james-see/bank2sf2/pkg/riffio"
	"github.com/mark3labs/mcp-go/mcp"
)

func le(v ...uint32) []byte {
	var out []byte
	for _, x := range v {
		out = binary.LittleEndian.AppendUint32(out, x)
	}
	return out
}

func writeDLS(t *testing.T, dir string) string {
	t.Helper()
	fmtChunk := []byte{1, 0, 1, 0}
	fmtChunk = append(fmtChunk, le(44100, 88200)...)
	fmtChunk = append(fmtChunk, 2, 0, 16, 0)

	rgn := riffio.List("rgn ",
		riffio.Leaf("rgnh", []byte{0, 0, 127, 0, 0, 0, 127, 0, 0, 0, 0, 0}),
		riffio.Leaf("wlnk", append([]byte{0, 0, 0, 0}, le(1, 0)...)),
	)
	ins := riffio.List("ins ",
		riffio.Leaf("insh", le(1, 0, 5)),
		riffio.List("lrgn", rgn),
		riffio.List("INFO", riffio.Leaf("INAM", []byte("Pad\x00"))),
	)
	wave := riffio.List("wave",
		riffio.Leaf("fmt ", fmtChunk),
		riffio.Leaf("data", make([]byte, 128)),
	)
	data := riffio.Encode(riffio.Form("DLS ",
		riffio.List("lins", ins),
		riffio.List("wvpl", wave),
	))

	path := filepath.Join(dir, "pad.dls")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func TestNewServer(t *testing.T) {
	if NewServer(converter.DefaultOptions()) == nil {
		t.Fatal("NewServer() returned nil")
	}
}

func TestListConversions(t *testing.T) {
	tl := &tools{opts: converter.DefaultOptions()}
	res, err := tl.listConversions(context.Background(), call(nil))
	if err != nil {
		t.Fatal(err)
	}
	if got := resultText(t, res); !strings.Contains(got, "dls -> sf2") {
		t.Errorf("conversions = %q", got)
	}
}

func TestConvertAndInspect(t *testing.T) {
	dir := t.TempDir()
	in := writeDLS(t, dir)
	out := filepath.Join(dir, "pad.sf2")
	tl := &tools{opts: converter.DefaultOptions()}
	ctx := context.Background()

	res, err := tl.convertDLS(ctx, call(map[string]any{"input": in, "output": out}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("convert failed: %s", resultText(t, res))
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output not written: %v", err)
	}

	res, err = tl.inspect(ctx, call(map[string]any{"path": out}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("inspect failed: %s", resultText(t, res))
	}
	var summary converter.Summary
	if err := json.Unmarshal([]byte(resultText(t, res)), &summary); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if len(summary.Presets) != 1 || summary.Presets[0].Name != "Pad" || summary.Presets[0].Program != 5 {
		t.Errorf("presets = %+v", summary.Presets)
	}
}

func TestToolErrors(t *testing.T) {
	dir := t.TempDir()
	tl := &tools{opts: converter.DefaultOptions()}
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() (*mcp.CallToolResult, error)
	}{
		{"inspect missing path", func() (*mcp.CallToolResult, error) {
			return tl.inspect(ctx, call(map[string]any{}))
		}},
		{"inspect missing file", func() (*mcp.CallToolResult, error) {
			return tl.inspect(ctx, call(map[string]any{"path": filepath.Join(dir, "none.sf2")}))
		}},
		{"convert missing output", func() (*mcp.CallToolResult, error) {
			return tl.convertDLS(ctx, call(map[string]any{"input": "a.dls"}))
		}},
		{"convert missing input file", func() (*mcp.CallToolResult, error) {
			return tl.convertDLS(ctx, call(map[string]any{
				"input":  filepath.Join(dir, "none.dls"),
				"output": filepath.Join(dir, "none.sf2"),
			}))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			if err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if !res.IsError {
				t.Errorf("expected an error result, got %q", resultText(t, res))
			}
		})
	}
}
