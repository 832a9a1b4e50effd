package mesh

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func exampleBytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "example.txt"))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestDecodeScanPayload_Text(t *testing.T) {
	got, err := DecodeScanPayload(append([]byte("\n\n  "), exampleBytes(t)...))
	if err != nil {
		t.Fatalf("DecodeScanPayload() error: %v", err)
	}
	if diff := cmp.Diff(loadExample(t), got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeScanPayload_JSON(t *testing.T) {
	want := loadExample(t)
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeScanPayload(data)
	if err != nil {
		t.Fatalf("DecodeScanPayload() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeScanPayload_Zlib(t *testing.T) {
	want := loadExample(t)

	for name, raw := range map[string][]byte{
		"text": exampleBytes(t),
		"json": func() []byte { b, _ := json.Marshal(want); return b }(),
	} {
		t.Run(name, func(t *testing.T) {
			packed := compress(t, raw)
			if !IsZlib(packed) {
				t.Fatal("IsZlib() = false for zlib output")
			}
			got, err := DecodeScanPayload(packed)
			if err != nil {
				t.Fatalf("DecodeScanPayload() error: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeScanPayload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{"empty", nil, "empty payload"},
		{"whitespace", []byte(" \n\t"), "empty payload"},
		{"unknown", []byte("hello"), "unknown format"},
		{"bad json", []byte("[{"), "parsing scanner JSON"},
		{"json id gap", []byte(`[{"id":0,"beacons":[]},{"id":2,"beacons":[]}]`), "expected scanner 1"},
		{"bad text", []byte("--- scanner 0 ---\n1,2\n"), "expected 3 coordinates"},
		{"compressed empty", compress(t, []byte("   ")), "decoded payload is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeScanPayload(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeScanPayload_NoScanners(t *testing.T) {
	if _, err := DecodeScanPayload([]byte("[]")); !errors.Is(err, ErrNoScanners) {
		t.Errorf("error = %v, want ErrNoScanners", err)
	}
}

func TestDecodeScanPayload_OversizedZlib(t *testing.T) {
	line := []byte("100000,100000,100000\n")
	var report bytes.Buffer
	report.WriteString("--- scanner 0 ---\n")
	report.Write(bytes.Repeat(line, maxInflatedBytes/len(line)+1))

	_, err := DecodeScanPayload(compress(t, report.Bytes()))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestReadLimited(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int64
		wantErr bool
	}{
		{"under", "abc", 4, false},
		{"exact", "abcd", 4, false},
		{"over by one", "abcde", 4, true},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readLimited(strings.NewReader(tt.input), tt.limit)
			if tt.wantErr {
				if !errors.Is(err, ErrPayloadTooLarge) {
					t.Errorf("error = %v, want ErrPayloadTooLarge", err)
				}
				if got != nil {
					t.Errorf("got %q alongside the error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.input {
				t.Errorf("got %q, want %q", got, tt.input)
			}
		})
	}
}

func TestIsZlib(t *testing.T) {
	tests := []struct {
		data []byte
		want bool
	}{
		{[]byte{0x78, 0x9c}, true},
		{[]byte{0x78, 0x01}, true},
		{[]byte{0x78, 0xda}, true},
		{[]byte{0x78}, false},
		{[]byte("--"), false},
		{[]byte("[{"), false},
	}
	for _, tt := range tests {
		if got := IsZlib(tt.data); got != tt.want {
			t.Errorf("IsZlib(%x) = %v, want %v", tt.data, got, tt.want)
		}
	}
}
