package httpwire

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// chunkedReader decodes a Transfer-Encoding: chunked body. Chunk extensions
// and trailers are read and discarded.
type chunkedReader struct {
	br       *bufio.Reader
	remain   int64
	finished bool
	maxLine  int
}

// NewChunkedReader returns a reader that yields the de-chunked body read from
// br. maxLine bounds chunk size and trailer lines; zero means unbounded.
func NewChunkedReader(br *bufio.Reader, maxLine int) io.Reader {
	return &chunkedReader{br: br, maxLine: maxLine}
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.finished {
		return 0, io.EOF
	}
	if c.remain == 0 {
		size, err := c.readChunkSize()
		if err != nil {
			return 0, err
		}
		if size == 0 {
			if err := c.readTrailers(); err != nil {
				return 0, err
			}
			c.finished = true
			return 0, io.EOF
		}
		c.remain = size
	}
	if len(p) == 0 {
		return 0, nil
	}

	if int64(len(p)) > c.remain {
		p = p[:c.remain]
	}
	n, err := io.ReadFull(c.br, p)
	c.remain -= int64(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return n, err
	}
	if c.remain == 0 {
		if err := c.expectCRLF(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (c *chunkedReader) readChunkSize() (int64, error) {
	line, err := c.readLine()
	if err != nil {
		return 0, err
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, ErrChunkFormat
	}
	n, err := strconv.ParseInt(line, 16, 64)
	if err != nil || n < 0 {
		return 0, ErrChunkFormat
	}
	return n, nil
}

func (c *chunkedReader) expectCRLF() error {
	line, err := c.readLine()
	if err != nil {
		return err
	}
	if line != "" {
		return ErrChunkFormat
	}
	return nil
}

func (c *chunkedReader) readTrailers() error {
	for {
		line, err := c.readLine()
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
	}
}

func (c *chunkedReader) readLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := c.br.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}
		if b == '\n' {
			break
		}
		sb.WriteByte(b)
		if c.maxLine > 0 && sb.Len() > c.maxLine {
			return "", ErrHeadTooLarge
		}
	}
	return strings.TrimSuffix(sb.String(), "\r"), nil
}
