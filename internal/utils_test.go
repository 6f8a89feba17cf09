package internal_test

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"testing"

	"github.com/frankli0324/go-kwest/internal"
	"github.com/frankli0324/go-kwest/internal/dialer"
	"github.com/frankli0324/go-kwest/internal/model"
)

// TestDialer hands out the client side of an in-memory pipe.
type TestDialer struct {
	conn net.Conn
}

// Dial implements dialer.Dialer.
func (t *TestDialer) Dial(ctx context.Context, r *model.Request) (net.Conn, error) {
	return t.conn, nil
}

// Unwrap implements dialer.Dialer.
func (t *TestDialer) Unwrap() dialer.Dialer {
	return nil
}

// SendSingleRequest dispatches req over a pipe and returns the bytes of the
// request head as they reached the "server".
func SendSingleRequest(t *testing.T, req interface{}) []byte {
	t.Helper()
	client, server := net.Pipe()
	head := make(chan []byte, 1)
	go func() {
		defer server.Close()
		var buf bytes.Buffer
		br := bufio.NewReader(server)
		for {
			line, err := br.ReadBytes('\n')
			buf.Write(line)
			if err != nil || bytes.Equal(line, []byte("\r\n")) {
				break
			}
		}
		head <- buf.Bytes()
		server.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\nConnection: close\r\n\r\n"))
	}()

	c := internal.New(internal.WithDialer(&TestDialer{client}))
	resp, err := c.Do(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Close()
	return <-head
}
