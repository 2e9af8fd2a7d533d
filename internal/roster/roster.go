// Package roster accepts the fixed-size set of worker connections that make
// up one coordinator session and performs the LOGIN handshake on each
// (spec §4.3).
package roster

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/hatchway/raycoord/internal/wire"
)

// Worker is a connection that has completed LOGIN. It is owned by the
// roster for the entire session; exclusive mutation rights to its reader,
// writer, and assigned pixel slice pass to exactly one render task at a
// time (spec §3).
type Worker struct {
	ID   int    // dense, 1-origin, assigned in accept order
	Addr string // peer network address, informational
	Name string // display name supplied in LOGIN

	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// Driver returns a protocol driver over this worker's connection, with the
// given per-read timeout.
func (w *Worker) Driver(timeout time.Duration) *wire.Driver {
	return wire.NewDriver(w.conn, w.r, w.w, timeout)
}

// Close drops the worker's connection. Called once at session end.
func (w *Worker) Close() error {
	return w.conn.Close()
}

// Accept binds addr and accepts exactly n connections, sequentially
// performing the LOGIN handshake on each. The roster is closed to new
// connections as soon as n handshakes have succeeded. Any failure during a
// handshake is fatal: workers are not retried.
func Accept(addr string, n int, timeout time.Duration) ([]*Worker, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBindFailed, err)
	}
	defer ln.Close()

	workers := make([]*Worker, 0, n)
	for i := 0; i < n; i++ {
		conn, err := ln.Accept()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAcceptFailed, err)
		}

		w, err := handshake(conn, i+1, timeout)
		if err != nil {
			conn.Close()
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, nil
}

func handshake(conn net.Conn, id int, timeout time.Duration) (*Worker, error) {
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	d := wire.NewDriver(conn, r, w, timeout)

	name, ok, err := d.Expect("LOGIN")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: LOGIN missing display name", ErrHandshakeFailed)
	}

	return &Worker{
		ID:   id,
		Addr: conn.RemoteAddr().String(),
		Name: name,
		conn: conn,
		r:    r,
		w:    w,
	}, nil
}
