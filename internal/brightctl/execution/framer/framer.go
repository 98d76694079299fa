// Package framer turns the raw chunks of a text/event-stream body into data frames.
//
// Chunk boundaries are arbitrary: a chunk may end in the middle of a line or
// in the middle of a multi-byte UTF-8 sequence. The decoder keeps the
// unterminated tail as carry-over and only ever emits complete lines.
package framer

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

// Decoder splits chunked bytes into data payloads. It is not safe for
// concurrent use; one Decoder serves exactly one stream.
type Decoder struct {
	buf  []byte
	utf8 *encoding.Decoder
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{utf8: unicode.UTF8.NewDecoder()}
}

// Feed appends chunk to the carry-over buffer and returns the payload of every
// complete data line, in order. Heartbeats, comments, blank lines, non-data
// fields and the [DONE] sentinel are dropped.
//
// Lines end at '\n', '\r' or "\r\n"; a CRLF pair only yields an extra blank
// line, which is dropped. Lines are cut before any UTF-8 decoding happens and
// neither byte occurs inside a multi-byte sequence, so a rune split across two
// chunks is always reassembled in the carry-over before it is decoded.
func (d *Decoder) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	d.buf = append(d.buf, chunk...)

	var frames []string
	start := 0
	for {
		i := bytes.IndexAny(d.buf[start:], "\r\n")
		if i < 0 {
			break
		}
		line := d.buf[start : start+i]
		start += i + 1
		if payload, ok := d.payload(line); ok {
			frames = append(frames, payload)
		}
	}

	n := copy(d.buf, d.buf[start:])
	d.buf = d.buf[:n]
	return frames
}

// Pending returns the number of carry-over bytes waiting for a line terminator.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// Flush discards the carry-over at end of stream and returns how many bytes
// were dropped. An unterminated final line is never emitted.
func (d *Decoder) Flush() int {
	n := len(d.buf)
	d.buf = d.buf[:0]
	return n
}

func (d *Decoder) payload(line []byte) (string, bool) {
	text := strings.TrimSpace(d.decode(line))
	if text == "" || strings.HasPrefix(text, ":") {
		return "", false
	}
	if !strings.HasPrefix(text, dataPrefix) {
		return "", false
	}
	data := strings.TrimSpace(text[len(dataPrefix):])
	if data == "" || data == doneSentinel {
		return "", false
	}
	return data, true
}

// decode converts line to valid UTF-8, replacing ill-formed bytes with U+FFFD.
func (d *Decoder) decode(line []byte) string {
	out, err := d.utf8.Bytes(line)
	if err != nil {
		return strings.ToValidUTF8(string(line), "�")
	}
	return string(out)
}
