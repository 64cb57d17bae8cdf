// Package jpegquality estimates IJG quality setting a JPEG image was
// encoded with by matching its quantization tables against scaled
// standard tables.
package jpegquality

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var (
	ErrInvalidJPEG  = errors.New("invalid JPEG header")
	ErrWrongTable   = errors.New("wrong size for quantization table")
	ErrShortSegment = errors.New("short segment length")
	ErrShortDQT     = errors.New("section DQT is too short")
	ErrNoDQT        = errors.New("no quantization tables found")
)

const (
	markerSOI = 0xffd8
	markerEOI = 0xffd9
	markerSOS = 0xffda
	markerDQT = 0xffdb
)

// Standard tables from ITU T.81 Annex K in zigzag order, which is how
// they are stored in DQT segments.
var standardTables = [2][64]int{
	{
		16, 11, 12, 14, 12, 10, 16, 14,
		13, 14, 18, 17, 16, 19, 24, 40,
		26, 24, 22, 22, 24, 49, 35, 37,
		29, 40, 58, 51, 61, 60, 57, 51,
		56, 55, 64, 72, 92, 78, 64, 68,
		87, 69, 55, 56, 80, 109, 81, 87,
		95, 98, 103, 104, 103, 62, 77, 113,
		121, 112, 100, 120, 92, 101, 103, 99,
	},
	{
		17, 18, 18, 24, 21, 24, 47, 26,
		26, 47, 99, 66, 56, 66, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
	},
}

// Reader holds quantization tables of a single JPEG image.
type Reader struct {
	tables  map[int][64]int
	quality int
}

// New reads quantization tables from the beginning of rs.
func New(rs io.ReadSeeker) (*Reader, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	jr := &jpegReader{rs: rs}
	if jr.readMarker() != markerSOI {
		return nil, ErrInvalidJPEG
	}

	r := &Reader{tables: make(map[int][64]int)}
	for {
		marker := jr.readMarker()
		switch {
		case jr.err != nil:
			return nil, jr.err
		case marker == markerSOS || marker == markerEOI:
			if len(r.tables) == 0 {
				return nil, ErrNoDQT
			}
			r.quality = r.estimate()
			return r, nil
		case marker>>8 != 0xff:
			return nil, ErrInvalidJPEG
		}

		length := int(jr.readUint16())
		if jr.err != nil {
			return nil, jr.err
		}
		if length < 2 {
			return nil, ErrShortSegment
		}
		segment := make([]byte, length-2)
		if _, err := io.ReadFull(rs, segment); err != nil {
			return nil, ErrShortSegment
		}
		if marker == markerDQT {
			if err := r.parseDQT(segment); err != nil {
				return nil, err
			}
		}
	}
}

// NewWithBytes reads quantization tables from data.
func NewWithBytes(data []byte) (*Reader, error) {
	return New(bytes.NewReader(data))
}

// Quality returns estimated quality in 1..100 range.
func (r *Reader) Quality() int {
	return r.quality
}

func (r *Reader) parseDQT(seg []byte) error {
	if len(seg) == 0 {
		return ErrShortDQT
	}
	for len(seg) > 0 {
		precision, id := seg[0]>>4, int(seg[0]&0x0f)
		seg = seg[1:]

		size := 64
		if precision == 1 {
			size = 128
		} else if precision != 0 {
			return ErrWrongTable
		}
		if len(seg) < size {
			return ErrShortDQT
		}

		var table [64]int
		for i := range table {
			if precision == 1 {
				table[i] = int(binary.BigEndian.Uint16(seg[2*i:]))
			} else {
				table[i] = int(seg[i])
			}
		}
		r.tables[id] = table
		seg = seg[size:]
	}
	return nil
}

// estimate finds quality whose scaled standard tables are closest to the
// ones present in the image.
func (r *Reader) estimate() int {
	best, bestDiff := 0, math.MaxInt
	for q := 1; q <= 100; q++ {
		diff := 0
		for id, table := range r.tables {
			if id > 1 {
				continue
			}
			std := scaled(id, q)
			for i := range table {
				d := table[i] - std[i]
				if d < 0 {
					d = -d
				}
				diff += d
			}
		}
		if diff < bestDiff {
			best, bestDiff = q, diff
		}
	}
	return best
}

// scaled returns standard table scaled as libjpeg does for quality q.
func scaled(id, q int) [64]int {
	scale := 200 - 2*q
	if q < 50 {
		scale = 5000 / q
	}
	var t [64]int
	for i, v := range standardTables[id] {
		t[i] = min(max((v*scale+50)/100, 1), 255)
	}
	return t
}

type jpegReader struct {
	rs  io.ReadSeeker
	err error
}

// readMarker returns next two bytes as marker, 0 on read error.
func (jr *jpegReader) readMarker() uint16 {
	return jr.readUint16()
}

func (jr *jpegReader) readUint16() uint16 {
	if jr.err != nil {
		return 0
	}
	var b [2]byte
	if _, err := io.ReadFull(jr.rs, b[:]); err != nil {
		jr.err = ErrShortSegment
		return 0
	}
	return binary.BigEndian.Uint16(b[:])
}
