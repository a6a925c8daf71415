package admin

import (
	"errors"

	"golang.org/x/crypto/cryptobyte"
)

// Le limits.
const (
	shortLeMax    = 256
	extendedLeMax = 65536
)

// DefaultResponseSize is the capacity of responses created by a Router.
const DefaultResponseSize = 1024

// ErrMalformed is returned for command APDUs that do not decode.
var ErrMalformed = errors.New("admin: malformed apdu")

// Command is a decoded command APDU.
//
// Le is the expected response length. An absent Le field decodes as 256.
// Encoding omits Le when it is zero.
type Command struct {
	CLA  byte
	INS  byte
	P1   byte
	P2   byte
	Data []byte
	Le   int
}

// Lc returns the length of the command data.
func (c *Command) Lc() int {
	return len(c.Data)
}

// ParseCommand decodes a short or extended command APDU.
func ParseCommand(b []byte) (*Command, error) {
	s := cryptobyte.String(b)
	var c Command
	if !s.ReadUint8(&c.CLA) || !s.ReadUint8(&c.INS) || !s.ReadUint8(&c.P1) || !s.ReadUint8(&c.P2) {
		return nil, ErrMalformed
	}
	if s.Empty() {
		c.Le = shortLeMax
		return &c, nil
	}

	var first uint8
	s.ReadUint8(&first)
	if s.Empty() {
		c.Le = leShort(first)
		return &c, nil
	}
	if first != 0 {
		if !s.ReadBytes(&c.Data, int(first)) {
			return nil, ErrMalformed
		}
		switch len(s) {
		case 0:
			c.Le = shortLeMax
		case 1:
			var le uint8
			s.ReadUint8(&le)
			c.Le = leShort(le)
		default:
			return nil, ErrMalformed
		}
		return &c, nil
	}

	var n uint16
	if !s.ReadUint16(&n) {
		return nil, ErrMalformed
	}
	if s.Empty() {
		c.Le = leExtended(n)
		return &c, nil
	}
	if n == 0 || !s.ReadBytes(&c.Data, int(n)) {
		return nil, ErrMalformed
	}
	switch len(s) {
	case 0:
		c.Le = shortLeMax
	case 2:
		var le uint16
		s.ReadUint16(&le)
		c.Le = leExtended(le)
	default:
		return nil, ErrMalformed
	}
	return &c, nil
}

func leShort(b uint8) int {
	if b == 0 {
		return shortLeMax
	}
	return int(b)
}

func leExtended(v uint16) int {
	if v == 0 {
		return extendedLeMax
	}
	return int(v)
}

// Bytes encodes the command, using the extended form only when the data or
// Le do not fit the short one.
func (c *Command) Bytes() ([]byte, error) {
	if len(c.Data) > 0xffff || c.Le < 0 || c.Le > extendedLeMax {
		return nil, ErrMalformed
	}
	extended := len(c.Data) > 0xff || c.Le > shortLeMax

	var b cryptobyte.Builder
	b.AddUint8(c.CLA)
	b.AddUint8(c.INS)
	b.AddUint8(c.P1)
	b.AddUint8(c.P2)
	if len(c.Data) > 0 {
		if extended {
			b.AddUint8(0)
			b.AddUint16(uint16(len(c.Data)))
		} else {
			b.AddUint8(uint8(len(c.Data)))
		}
		b.AddBytes(c.Data)
	}
	if c.Le > 0 {
		switch {
		case !extended:
			b.AddUint8(uint8(c.Le))
		case len(c.Data) == 0:
			b.AddUint8(0)
			b.AddUint16(uint16(c.Le))
		default:
			b.AddUint16(uint16(c.Le))
		}
	}
	return b.Bytes()
}

// Request is a command together with the security state of the session.
type Request struct {
	Command
	PINValidated bool
}

// Response collects the data of a response APDU in a fixed-size buffer.
type Response struct {
	buf []byte
	n   int
}

// NewResponse returns a response that holds at most size bytes.
func NewResponse(size int) *Response {
	return &Response{buf: make([]byte, size)}
}

// Cap returns the capacity of the response buffer.
func (r *Response) Cap() int {
	return len(r.buf)
}

// Data returns the response data.
func (r *Response) Data() []byte {
	return r.buf[:r.n]
}

// Reset discards the response data.
func (r *Response) Reset() {
	r.n = 0
}

// writeTruncated sets the response to p truncated to le bytes.
func (r *Response) writeTruncated(p []byte, le int) {
	r.n = copy(r.buf, p)
	if r.n > le {
		r.n = le
	}
}

// Encode returns the response APDU for the outcome err. The data is dropped
// unless err is nil.
func (r *Response) Encode(err error) []byte {
	sw := StatusOf(err)
	var b cryptobyte.Builder
	if sw == StatusOK {
		b.AddBytes(r.Data())
	}
	b.AddUint16(uint16(sw))
	return b.BytesOrPanic()
}

// ParseResponse splits a response APDU into data and status.
func ParseResponse(b []byte) ([]byte, Status, error) {
	if len(b) < 2 {
		return nil, 0, ErrMalformed
	}
	s := cryptobyte.String(b[len(b)-2:])
	var sw uint16
	s.ReadUint16(&sw)
	return b[:len(b)-2], Status(sw), nil
}
