package codec

import (
	"encoding/binary"

	"github.com/arkhamnet/arkhamctl/internal/ledger"
)

// maxVecLen bounds length-prefixed vectors so that corrupt prefixes
// cannot drive huge allocations during decode.
const maxVecLen = 1024

type writer struct {
	buf []byte
}

func newWriter() *writer { return &writer{} }

func (w *writer) bytes(b []byte)          { w.buf = append(w.buf, b...) }
func (w *writer) u8(v uint8)              { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16)            { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32)            { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64)            { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *writer) address(a ledger.Address) { w.bytes(a[:]) }

// reader consumes a byte buffer without ever faulting: once the buffer
// runs short, the short flag latches and all further reads yield zero
// values. Callers check short at section boundaries.
type reader struct {
	buf   []byte
	pos   int
	short bool
}

func newReader(data []byte) *reader { return &reader{buf: data} }

func (r *reader) take(n int) []byte {
	if r.short || r.pos+n > len(r.buf) {
		r.short = true
		return make([]byte, n)
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out
}

func (r *reader) u8() uint8   { return r.take(1)[0] }
func (r *reader) u16() uint16 { return binary.LittleEndian.Uint16(r.take(2)) }
func (r *reader) u32() uint32 { return binary.LittleEndian.Uint32(r.take(4)) }
func (r *reader) u64() uint64 { return binary.LittleEndian.Uint64(r.take(8)) }

func (r *reader) address() ledger.Address {
	var a ledger.Address
	copy(a[:], r.take(32))
	return a
}

func (r *reader) remaining() int {
	if r.short {
		return 0
	}
	return len(r.buf) - r.pos
}
