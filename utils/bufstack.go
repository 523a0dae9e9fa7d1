package utils

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

var ErrBufferOverrun = errors.New("read past end of buffer")

// BufStack is a little-endian read cursor over a byte slice.
// Reads past the end never panic: the first overrun is remembered,
// every following read returns zero values and Err reports the overrun.
type BufStack struct {
	parent         *BufStack
	buf            []byte
	relativeOffset int
	absoluteOffset int
	pos            int
	kind           string
	name           string
	err            error
}

func NewBufStack(kind string, b []byte) *BufStack {
	return &BufStack{
		buf:  b,
		kind: kind,
	}
}

// SubBuf returns a cursor over the tail of bs starting at offset.
// Positions of the child are relative to bs start, so Align keeps
// using bs alignment.
func (bs *BufStack) SubBuf(kind string, offset int) *BufStack {
	child := &BufStack{
		parent:         bs,
		relativeOffset: offset,
		absoluteOffset: bs.absoluteOffset + offset,
		kind:           kind,
		buf:            bs.buf,
		pos:            offset,
	}
	if offset < 0 || offset > len(bs.buf) {
		child.fail(0)
	}
	return child
}

func (bs *BufStack) SetName(name string) *BufStack {
	bs.name = name
	return bs
}

func (bs *BufStack) Name() string        { return bs.name }
func (bs *BufStack) Kind() string        { return bs.kind }
func (bs *BufStack) Parent() *BufStack   { return bs.parent }
func (bs *BufStack) Size() int           { return len(bs.buf) }
func (bs *BufStack) RelativeOffset() int { return bs.relativeOffset }
func (bs *BufStack) Pos() int            { return bs.pos }
func (bs *BufStack) Remaining() int      { return len(bs.buf) - bs.pos }
func (bs *BufStack) Err() error          { return bs.err }

func (bs *BufStack) String() string {
	return fmt.Sprintf("buf<%v>(%v)[o:0x%x,pos:0x%x,s:0x%x]",
		bs.kind, bs.name, bs.relativeOffset, bs.pos, len(bs.buf))
}

func (bs *BufStack) StringChain() string {
	s := bs.String()
	if bs.parent != nil {
		s += fmt.Sprintf("::%s", bs.parent.String())
	}
	return s
}

func (bs *BufStack) fail(amount int) {
	if bs.err == nil {
		bs.err = errors.Wrapf(ErrBufferOverrun, "%s: need %d bytes at 0x%x", bs.StringChain(), amount, bs.pos)
	}
}

// Read returns the next amount bytes, or nil after an overrun.
func (bs *BufStack) Read(amount int) []byte {
	if bs.err != nil {
		return nil
	}
	if amount < 0 || bs.pos+amount > len(bs.buf) {
		bs.fail(amount)
		return nil
	}
	oldPos := bs.pos
	bs.pos += amount
	return bs.buf[oldPos:bs.pos]
}

func (bs *BufStack) Skip(amount int) {
	bs.Read(amount)
}

// Align moves the cursor forward to the next multiple of n.
func (bs *BufStack) Align(n int) {
	if rem := bs.pos % n; rem != 0 {
		bs.Skip(n - rem)
	}
}

func (bs *BufStack) ReadLU32() uint32 {
	if b := bs.Read(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (bs *BufStack) ReadLU16() uint16 {
	if b := bs.Read(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (bs *BufStack) ReadByte() byte {
	if b := bs.Read(1); b != nil {
		return b[0]
	}
	return 0
}

func (bs *BufStack) ReadLF() float32 {
	return math.Float32frombits(bs.ReadLU32())
}
