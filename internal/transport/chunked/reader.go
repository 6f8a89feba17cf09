package chunked

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

const maxLineLength = 4096

// NewChunkedReader decodes a chunked transfer-coded body. Trailers after
// the last chunk are left unread.
func NewChunkedReader(r io.Reader) io.Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &chunkedReader{r: br}
}

type chunkedReader struct {
	r         *bufio.Reader
	remaining uint64 // bytes left in the current chunk
	inChunk   bool
	eof       bool
}

func (c *chunkedReader) readChunkHeader() (uint64, error) {
	line, err := c.r.ReadSlice('\n')
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		} else if err == bufio.ErrBufferFull {
			err = errors.New("http chunk header too long")
		}
		return 0, err
	}
	if len(line) > maxLineLength {
		return 0, errors.New("http chunk header too long")
	}
	line = bytes.TrimRight(line, " \t\r\n")
	if i := bytes.IndexByte(line, ';'); i >= 0 { // chunk extensions are ignored
		line = bytes.TrimRight(line[:i], " \t")
	}
	if len(line) == 0 {
		return 0, errors.New("empty http chunk length")
	}
	if len(line) > 16 {
		return 0, errors.New("http chunk length too large")
	}
	var n uint64
	for _, b := range line {
		switch {
		case '0' <= b && b <= '9':
			b = b - '0'
		case 'a' <= b && b <= 'f':
			b = b - 'a' + 10
		case 'A' <= b && b <= 'F':
			b = b - 'A' + 10
		default:
			return 0, errors.New("invalid byte in chunk length")
		}
		n = n<<4 | uint64(b)
	}
	return n, nil
}

func (c *chunkedReader) readCRLF() error {
	var buf [2]byte
	if _, err := io.ReadFull(c.r, buf[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	if buf[0] != '\r' || buf[1] != '\n' {
		return errors.New("malformed chunked encoding")
	}
	return nil
}

func (c *chunkedReader) Read(p []byte) (n int, err error) {
	if c.eof {
		return 0, io.EOF
	}
	if !c.inChunk {
		size, err := c.readChunkHeader()
		if err != nil {
			return 0, err
		}
		if size == 0 {
			c.eof = true
			return 0, io.EOF
		}
		c.remaining, c.inChunk = size, true
	}
	if uint64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err = c.r.Read(p)
	c.remaining -= uint64(n)
	if c.remaining == 0 {
		c.inChunk = false
		if err == nil || err == io.EOF {
			err = c.readCRLF()
		}
	} else if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}
