package model

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeCounter struct {
	io.Reader
	n int
}

func (c *closeCounter) Close() error {
	c.n++
	return nil
}

func TestDecorate(t *testing.T) {
	body := &closeCounter{Reader: strings.NewReader("payload")}
	resp := Decorate(&RawResponse{
		Proto:         "HTTP/1.1",
		StatusCode:    201,
		Header:        []Field{{"Content-Type", "text/plain"}, {"set-cookie", "a"}, {"Set-Cookie", "b"}},
		ContentLength: 7,
		Body:          body,
	})
	assert.Equal(t, "201 Created", resp.Status)
	assert.Equal(t, "text/plain", resp.GetHeader("content-type"))
	assert.Equal(t, []string{"a", "b"}, resp.Header.Values("Set-Cookie"))
	assert.Len(t, resp.RawHeader, 3)
	assert.Same(t, resp, resp.Data())

	b, err := io.ReadAll(resp)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))

	require.NoError(t, resp.Close())
	require.NoError(t, resp.Close())
	assert.Equal(t, 1, body.n)

	_, err = resp.Read(make([]byte, 1))
	assert.True(t, errors.Is(err, ErrBodyClosed))
}

func TestResponseOnClose(t *testing.T) {
	resp := NewResponse(200, nil, nil)
	var order []int
	resp.OnClose(func() { order = append(order, 1) })
	resp.OnClose(func() { order = append(order, 2) })
	require.NoError(t, resp.Close())
	assert.Equal(t, []int{2, 1}, order)

	ran := false
	resp.OnClose(func() { ran = true })
	assert.True(t, ran, "hooks added after close run immediately")
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse(404, NewHeader(map[string]string{"X-A": "1"}), strings.NewReader("nf"))
	assert.Equal(t, "404 Not Found", resp.Status)
	assert.Equal(t, []Field{{"X-A", "1"}}, resp.RawHeader)
	resp.SetHeader("x-b", "2")
	assert.Equal(t, "2", resp.GetHeader("X-B"))

	n, err := io.ReadAll(resp)
	require.NoError(t, err)
	assert.Equal(t, "nf", string(n))

	empty := NewResponse(204, nil, nil)
	b, err := io.ReadAll(empty)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("reset")
	var err error = &TransportError{Op: "read", URI: "http://x/", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "read http://x/")

	err = &CancellationError{}
	assert.Equal(t, "kwest: dispatch cancelled", err.Error())
}
