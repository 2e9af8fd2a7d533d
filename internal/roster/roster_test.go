package roster

import (
	"bufio"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/hatchway/raycoord/internal/wire"
)

func dialAndLogin(t *testing.T, addr, name string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := wire.Encode(bufio.NewWriter(conn), []byte("LOGIN "+name)); err != nil {
		t.Fatalf("encode LOGIN: %v", err)
	}
	return conn
}

func TestAcceptAssignsDenseOneOriginIDs(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	const n = 3
	var wg sync.WaitGroup
	wg.Add(n)
	conns := make([]net.Conn, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			// Retry until the listener in the main goroutine is up.
			for {
				conn, err := net.Dial("tcp", addr)
				if err == nil {
					wire.Encode(bufio.NewWriter(conn), []byte("LOGIN worker"))
					conns[i] = conn
					return
				}
				time.Sleep(2 * time.Millisecond)
			}
		}(i)
	}

	workers, err := Accept(addr, n, time.Second)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	wg.Wait()
	defer func() {
		for _, w := range workers {
			w.Close()
		}
	}()

	if len(workers) != n {
		t.Fatalf("got %d workers, want %d", len(workers), n)
	}
	seen := map[int]bool{}
	for _, w := range workers {
		if w.ID < 1 || w.ID > n {
			t.Errorf("worker id %d out of range", w.ID)
		}
		if seen[w.ID] {
			t.Errorf("duplicate worker id %d", w.ID)
		}
		seen[w.ID] = true
		if w.Name != "worker" {
			t.Errorf("got name %q, want %q", w.Name, "worker")
		}
	}
}

func TestAcceptHandshakeMissingName(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	done := make(chan struct{})
	go func() {
		conn, err := net.Dial("tcp", addr)
		for err != nil {
			time.Sleep(2 * time.Millisecond)
			conn, err = net.Dial("tcp", addr)
		}
		defer conn.Close()
		wire.Encode(bufio.NewWriter(conn), []byte("LOGIN"))
		<-done
	}()
	defer close(done)

	if _, err := Accept(addr, 1, time.Second); !errors.Is(err, ErrHandshakeFailed) {
		t.Errorf("got %v, want ErrHandshakeFailed", err)
	}
}

func TestAcceptBindFailed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	if _, err := Accept(ln.Addr().String(), 1, time.Second); !errors.Is(err, ErrBindFailed) {
		t.Errorf("got %v, want ErrBindFailed", err)
	}
}
