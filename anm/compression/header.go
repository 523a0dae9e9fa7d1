package compression

import (
	"fmt"
)

// Format is the key quantization scheme stored in the top nibble of a track header.
type Format uint8

const (
	FormatNone Format = iota
	FormatFloat96
	FormatFixed48
	FormatIntervalFixed32
	FormatFixed32
	FormatFloat32
	FormatIdentity
	formatCount
)

var formatNames = [...]string{"None", "Float96", "Fixed48", "IntervalFixed32", "Fixed32", "Float32", "Identity"}

func (f Format) String() string {
	if f < formatCount {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

const (
	headerFlagMaskX    = 0x1
	headerFlagMaskY    = 0x2
	headerFlagMaskZ    = 0x4
	headerFlagMaskAll  = headerFlagMaskX | headerFlagMaskY | headerFlagMaskZ
	headerFlagHasTimes = 0x8

	headerKeyCountMask = 0x00ffffff
)

// TrackHeader is the 32-bit word preceding every compressed track:
// format<<28 | flags<<24 | keyCount.
type TrackHeader struct {
	Format   Format
	Mask     uint8 // component presence, bit0 X .. bit2 Z, 0 means all
	HasTimes bool
	NumKeys  int
}

func ParseTrackHeader(raw uint32) TrackHeader {
	flags := uint8(raw>>24) & 0xf
	return TrackHeader{
		Format:   Format(raw >> 28),
		Mask:     flags & headerFlagMaskAll,
		HasTimes: flags&headerFlagHasTimes != 0,
		NumKeys:  int(raw & headerKeyCountMask),
	}
}

func (h TrackHeader) Raw() uint32 {
	flags := uint32(h.Mask & headerFlagMaskAll)
	if h.HasTimes {
		flags |= headerFlagHasTimes
	}
	return uint32(h.Format&0xf)<<28 | flags<<24 | uint32(h.NumKeys)&headerKeyCountMask
}

// hasComponent reports whether component i (0..2) is stored.
func (h TrackHeader) hasComponent(i int) bool {
	if h.Mask == 0 {
		return true
	}
	return h.Mask&(1<<uint(i)) != 0
}

func (h TrackHeader) String() string {
	return fmt.Sprintf("%v keys:%d mask:%03b times:%v", h.Format, h.NumKeys, h.Mask, h.HasTimes)
}

// 11/11/10 bit packing shared by the 32-bit formats.
const (
	packedMaxX = 2047
	packedMaxY = 2047
	packedMaxZ = 1023
)

func unpack111110(u uint32) (x, y, z uint32) {
	return u >> 21, (u >> 10) & packedMaxY, u & packedMaxZ
}

func pack111110(x, y, z uint32) uint32 {
	return (x&packedMaxX)<<21 | (y&packedMaxY)<<10 | z&packedMaxZ
}
