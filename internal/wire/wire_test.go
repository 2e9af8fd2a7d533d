package wire

import (
	"bufio"
	"bytes"
	"io"
	"testing"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", []byte{}},
		{"short text", []byte("LOGIN worker-1")},
		{"space in argument", []byte("SETSCENE /scenes/a cave.xml")},
		{"binary pixels", bytes.Repeat([]byte{0x00, 0x7f, 0xff}, 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := bufio.NewWriter(&buf)
			if err := Encode(w, tt.payload); err != nil {
				t.Fatalf("Encode: %v", err)
			}

			r := bufio.NewReader(&buf)
			got, err := Decode(r)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("roundtrip mismatch: got %q, want %q", got, tt.payload)
			}
		})
	}
}

func TestDecodeMalformedSize(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"non-digit", "4x LOGI\x00"},
		{"empty size", " \x00"},
		{"overflow", "99999999999999999999999 x\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(bytes.NewBufferString(tt.in))
			if _, err := Decode(r); err == nil {
				t.Fatal("expected an error")
			} else if err != ErrMalformedSize && !isWrapped(err, ErrMalformedSize) {
				t.Errorf("got %v, want ErrMalformedSize", err)
			}
		})
	}
}

func TestDecodeMissingTerminator(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("5 ABCDE?"))
	if _, err := Decode(r); err != ErrMissingTerminator {
		t.Errorf("got %v, want ErrMissingTerminator", err)
	}
}

func TestDecodeShortRead(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("10 short"))
	_, err := Decode(r)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestDecodeCleanEOF(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader(nil))
	if _, err := Decode(r); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
}

func isWrapped(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
