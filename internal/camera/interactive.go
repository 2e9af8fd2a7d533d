package camera

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hatchway/raycoord/internal/frame"
	"github.com/hatchway/raycoord/internal/snapshot"
)

// upgrader accepts connections from the browser-based preview window; it
// is the stand-in for a native GUI toolkit, which nothing in the
// retrieved corpus provides.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1 << 20,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// keyEvent is the JSON shape the browser sends for every keydown.
type keyEvent struct {
	Key string `json:"key"`
}

// Link is a single browser connection acting as both camera Source (key
// events in) and display.Surface (rendered frames out), matching the
// interactive variant's single external GUI window (spec §9).
type Link struct {
	conn    *websocket.Conn
	timeout time.Duration
	enc     snapshot.Encoder
}

// Upgrade promotes an HTTP request to a websocket connection and wraps
// it as a Link. timeout bounds each read of a keystroke event.
func Upgrade(w http.ResponseWriter, r *http.Request, timeout time.Duration) (*Link, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("camera: websocket upgrade: %w", err)
	}
	return &Link{conn: conn, timeout: timeout, enc: snapshot.PNGEncoder{}}, nil
}

// Next implements Source: it blocks for the next keydown event, skipping
// keys with no camera meaning, until Escape (quit) or a read error.
func (l *Link) Next() (mnemonic string, quit bool, err error) {
	for {
		if l.timeout > 0 {
			if err := l.conn.SetReadDeadline(time.Now().Add(l.timeout)); err != nil {
				return "", false, fmt.Errorf("camera: setting read deadline: %w", err)
			}
		}
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			return "", false, fmt.Errorf("camera: reading key event: %w", err)
		}

		var evt keyEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}
		if evt.Key == "Escape" {
			return "", true, nil
		}
		if m, ok := Translate(evt.Key); ok {
			return m, false, nil
		}
	}
}

// Show implements display.Surface: it PNG-encodes buf and pushes it to
// the browser as a binary websocket message.
func (l *Link) Show(buf *frame.Buffer) error {
	data, err := l.enc.Encode(buf)
	if err != nil {
		return fmt.Errorf("camera: encoding preview frame: %w", err)
	}
	if err := l.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("camera: sending preview frame: %w", err)
	}
	return nil
}

// Close drops the underlying connection.
func (l *Link) Close() error {
	return l.conn.Close()
}
