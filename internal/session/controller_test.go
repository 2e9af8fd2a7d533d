package session

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/hatchway/raycoord/internal/frame"
	"github.com/hatchway/raycoord/internal/roster"
	"github.com/hatchway/raycoord/internal/wire"
)

// scriptedWorker dials addr, logs in, then answers INFO/SETSCENE/CAM/
// CALCULATE with their fixed acknowledgements, recording every command it
// receives into recv.
func scriptedWorker(t *testing.T, addr string, width int, recv chan<- string) {
	t.Helper()
	var conn net.Conn
	var err error
	for i := 0; i < 200; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if err != nil {
		t.Errorf("scripted worker dial: %v", err)
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	if err := wire.Encode(w, []byte("LOGIN scripted")); err != nil {
		t.Errorf("LOGIN: %v", err)
		return
	}

	for {
		payload, err := wire.Decode(r)
		if err != nil {
			return
		}
		cmd := string(payload)
		recv <- cmd

		switch {
		case strings.HasPrefix(cmd, "INFO "):
			wire.Encode(w, []byte("INFODONE"))
		case strings.HasPrefix(cmd, "SETSCENE "):
			wire.Encode(w, []byte("SETSCENEDONE"))
		case strings.HasPrefix(cmd, "CAM "):
			wire.Encode(w, []byte("CAMDONE"))
		case strings.HasPrefix(cmd, "CALCULATE "):
			var a, y, cw, b int
			fmt.Sscanf(cmd, "CALCULATE %d %d %d %d", &a, &y, &cw, &b)
			row := make([]byte, width*3)
			for i := range row {
				row[i] = byte(y)
			}
			wire.Encode(w, append([]byte("RESULT 1 "), row...))
		default:
			return
		}
	}
}

func newTestController(t *testing.T, n, width, height int) (*Controller, chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	recv := make(chan string, 1024)
	for i := 0; i < n; i++ {
		go scriptedWorker(t, addr, width, recv)
	}

	workers, err := roster.Accept(addr, n, time.Second)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	t.Cleanup(func() {
		for _, w := range workers {
			w.Close()
		}
	})

	buf, err := frame.New(width, height)
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}

	return New(workers, buf, time.Second, nil), recv
}

func TestInitAllSendsInfoThenSetscenePerWorker(t *testing.T) {
	c, recv := newTestController(t, 2, 64, 2)

	if err := c.InitAll(64, 2, "scene.xml"); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if c.State() != Idle {
		t.Errorf("got state %v, want Idle", c.State())
	}

	got := drain(recv, 4)
	wantInfo := 0
	wantSetscene := 0
	for _, cmd := range got {
		if cmd == "INFO 64 2" {
			wantInfo++
		}
		if cmd == "SETSCENE scene.xml" {
			wantSetscene++
		}
	}
	if wantInfo != 2 || wantSetscene != 2 {
		t.Errorf("got %d INFO and %d SETSCENE, want 2 and 2", wantInfo, wantSetscene)
	}
}

func TestRenderAllFillsBuffer(t *testing.T) {
	c, _ := newTestController(t, 1, 64, 2)

	if err := c.RenderAll(); err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if c.State() != Idle {
		t.Errorf("got state %v, want Idle", c.State())
	}
	if c.Buf.Pixels[0] != 0 {
		t.Errorf("row 0 byte = %d, want 0", c.Buf.Pixels[0])
	}
	if c.Buf.Pixels[64*3] != 1 {
		t.Errorf("row 1 byte = %d, want 1", c.Buf.Pixels[64*3])
	}
}

func TestBroadcastCAMSendsToEveryWorker(t *testing.T) {
	c, recv := newTestController(t, 3, 64, 1)

	if err := c.BroadcastCAM("tF"); err != nil {
		t.Fatalf("BroadcastCAM: %v", err)
	}

	got := drain(recv, 3)
	if len(got) != 3 {
		t.Fatalf("got %d commands, want 3", len(got))
	}
	for _, cmd := range got {
		if cmd != "CAM tF" {
			t.Errorf("got %q, want %q", cmd, "CAM tF")
		}
	}
}

func drain(ch chan string, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		select {
		case v := <-ch:
			out = append(out, v)
		case <-time.After(2 * time.Second):
			return out
		}
	}
	return out
}
