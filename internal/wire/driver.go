package wire

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// Driver issues one command at a time on an owned (reader, writer) pair and
// reads back the paired reply, verifying the reply's tag. It does not
// retry and does not buffer multiple replies: exactly one reply per
// command, per spec.
type Driver struct {
	conn    net.Conn
	r       *bufio.Reader
	w       *bufio.Writer
	timeout time.Duration
}

// NewDriver wraps conn's buffered reader/writer with a protocol driver.
// A non-positive timeout disables the per-read deadline.
func NewDriver(conn net.Conn, r *bufio.Reader, w *bufio.Writer, timeout time.Duration) *Driver {
	return &Driver{conn: conn, r: r, w: w, timeout: timeout}
}

// Send encodes and writes cmd as one framed message.
func (d *Driver) Send(cmd string) error {
	if err := Encode(d.w, []byte(cmd)); err != nil {
		return fmt.Errorf("wire: sending %q: %w", firstToken(cmd), err)
	}
	return nil
}

// Expect decodes one frame, requires its first token to equal tag, and
// returns the remainder after that token's separating space. ok reports
// whether an argument followed the tag.
func (d *Driver) Expect(tag string) (arg string, ok bool, err error) {
	payload, err := d.decode(tag)
	if err != nil {
		return "", false, err
	}
	gotTag, rest, hasArg := strings.Cut(string(payload), " ")
	if gotTag != tag {
		return "", false, fmt.Errorf("%w: expected %q, got %q", ErrProtocolViolation, tag, gotTag)
	}
	return rest, hasArg, nil
}

// ExpectResult decodes one RESULT frame, verifies its "RESULT 1 " header
// and its total length (9 + width*3), and copies its pixel bytes into
// dst at relative row yRel.
func (d *Driver) ExpectResult(width int, dst []byte, yRel int) error {
	payload, err := d.decode("RESULT")
	if err != nil {
		return err
	}

	const header = "RESULT 1 "
	want := len(header) + width*3
	if len(payload) != want {
		return fmt.Errorf("%w: RESULT frame is %d bytes, want %d", ErrProtocolViolation, len(payload), want)
	}
	if string(payload[:len(header)]) != header {
		return fmt.Errorf("%w: RESULT header %q", ErrProtocolViolation, payload[:len(header)])
	}

	rowBytes := width * 3
	off := yRel * rowBytes
	copy(dst[off:off+rowBytes], payload[len(header):])
	return nil
}

func (d *Driver) decode(label string) ([]byte, error) {
	if d.timeout > 0 {
		if err := d.conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
			return nil, fmt.Errorf("wire: setting read deadline: %w", err)
		}
	}
	payload, err := Decode(d.r)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, fmt.Errorf("wire: waiting for %s: %w", label, ErrIOTimeout)
		}
		return nil, err
	}
	return payload, nil
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
