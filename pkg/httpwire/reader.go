package httpwire

import (
	"bufio"
	"strings"
)

// DefaultMaxHeadBytes bounds a message head (start line plus header lines)
// when the caller passes no limit.
const DefaultMaxHeadBytes = 1 << 20

// headReader reads CRLF- or LF-terminated lines from br and charges every
// byte, terminators included, against a shared budget.
type headReader struct {
	br     *bufio.Reader
	remain int
}

func newHeadReader(br *bufio.Reader, limit int) *headReader {
	if limit <= 0 {
		limit = DefaultMaxHeadBytes
	}
	return &headReader{br: br, remain: limit}
}

func (r *headReader) readLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			return "", err
		}
		r.remain--
		if r.remain < 0 {
			return "", ErrHeadTooLarge
		}
		if b == '\n' {
			break
		}
		sb.WriteByte(b)
	}
	return strings.TrimSuffix(sb.String(), "\r"), nil
}

// readHeaderLines consumes header lines up to and including the blank line
// that ends the head. Lines without a colon are skipped.
func (r *headReader) readHeaderLines(h *Header) error {
	for {
		line, err := r.readLine()
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
		i := strings.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		h.Set(strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]))
	}
}
