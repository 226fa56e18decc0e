package mpk

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/beetlebugorg/topomap/internal/quantize"
)

// maxBlockSize bounds a single declared block length so a corrupt header
// cannot trigger a huge allocation.
const maxBlockSize = 1 << 30

// Decode decompresses data if needed and decodes the layer collection.
// No partial collection is ever returned.
func Decode(data []byte) (Collection, error) {
	payload, err := unwrap(data)
	if err != nil {
		return nil, err
	}

	dec := newDecoder(payload)
	coll, err := decodeCollection(dec)
	if err != nil {
		return nil, err
	}
	if n := dec.remaining(); n > 0 {
		return nil, fmt.Errorf("%d bytes after layer map: %w", n, ErrSchema)
	}
	return coll, nil
}

// decoder tracks the bytes left in the payload so that declared element
// counts can be checked before anything is allocated.
type decoder struct {
	*msgpack.Decoder
	src *bytes.Reader
}

// newDecoder reads from a bytes.Reader, which msgpack consumes unbuffered,
// so remaining is exact.
func newDecoder(data []byte) *decoder {
	src := bytes.NewReader(data)
	return &decoder{Decoder: msgpack.NewDecoder(src), src: src}
}

func (d *decoder) remaining() int { return d.src.Len() }

// checkCount rejects a declared element count that cannot fit in the bytes
// left; every element takes at least one byte.
func (d *decoder) checkCount(n int, what string) error {
	if n > d.remaining() {
		return fmt.Errorf("%s declares %d elements with %d bytes left: %w", what, n, d.remaining(), ErrTruncated)
	}
	return nil
}

// unwrap returns the raw MessagePack payload of data.
func unwrap(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input: %w", ErrTruncated)
	}

	dec := newDecoder(data)
	code, err := dec.PeekCode()
	if err != nil {
		return nil, classify(err, "container")
	}

	switch {
	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		return unwrapBlockArray(dec)
	case msgpcode.IsExt(code):
		return unwrapBlock(dec)
	default:
		return data, nil
	}
}

func unwrapBlockArray(dec *decoder) ([]byte, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, classify(err, "block array")
	}
	if n < 1 {
		return nil, fmt.Errorf("block array without header: %w", ErrSchema)
	}
	if err := dec.checkCount(n, "block array"); err != nil {
		return nil, err
	}

	extID, extLen, err := dec.DecodeExtHeader()
	if err != nil {
		return nil, classify(err, "block array header")
	}
	if extID != extBlockArray {
		return nil, fmt.Errorf("block array header has extension type %d: %w", extID, ErrSchema)
	}

	if err := dec.checkCount(extLen, "block array header"); err != nil {
		return nil, err
	}
	header := make([]byte, extLen)
	if err := dec.ReadFull(header); err != nil {
		return nil, classify(err, "block array header")
	}

	blocks := n - 1
	lengths := make([]int, blocks)
	total := 0
	hdec := newDecoder(header)
	for i := range lengths {
		l, err := hdec.DecodeInt()
		if err != nil {
			return nil, classify(err, fmt.Sprintf("block %d length", i))
		}
		if l < 0 || l > maxBlockSize {
			return nil, fmt.Errorf("block %d declares length %d: %w", i, l, ErrSchema)
		}
		lengths[i] = l
		total += l
	}
	if hdec.remaining() > 0 {
		return nil, fmt.Errorf("block array header has lengths beyond %d blocks: %w", blocks, ErrSchema)
	}
	if total > maxBlockSize {
		return nil, fmt.Errorf("block array declares %d bytes: %w", total, ErrSchema)
	}

	out := make([]byte, total)
	offset := 0
	for i, l := range lengths {
		compressed, err := dec.DecodeBytes()
		if err != nil {
			return nil, classify(err, fmt.Sprintf("block %d", i))
		}
		if err := uncompress(compressed, out[offset:offset+l]); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		offset += l
	}
	if n := dec.remaining(); n > 0 {
		return nil, fmt.Errorf("%d bytes after last block: %w", n, ErrSchema)
	}
	return out, nil
}

func unwrapBlock(dec *decoder) ([]byte, error) {
	extID, extLen, err := dec.DecodeExtHeader()
	if err != nil {
		return nil, classify(err, "block header")
	}
	if extID != extBlock {
		return nil, fmt.Errorf("unexpected extension type %d: %w", extID, ErrSchema)
	}

	if err := dec.checkCount(extLen, "block body"); err != nil {
		return nil, err
	}
	body := make([]byte, extLen)
	if err := dec.ReadFull(body); err != nil {
		return nil, classify(err, "block body")
	}
	if n := dec.remaining(); n > 0 {
		return nil, fmt.Errorf("%d bytes after block: %w", n, ErrSchema)
	}

	r := bytes.NewReader(body)
	l, err := msgpack.NewDecoder(r).DecodeInt()
	if err != nil {
		return nil, classify(err, "block length")
	}
	if l < 0 || l > maxBlockSize {
		return nil, fmt.Errorf("block declares length %d: %w", l, ErrSchema)
	}

	out := make([]byte, l)
	if err := uncompress(body[len(body)-r.Len():], out); err != nil {
		return nil, err
	}
	return out, nil
}

func uncompress(src, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrCorruptBlock)
	}
	if n != len(dst) {
		return fmt.Errorf("expected %d bytes, got %d: %w", len(dst), n, ErrTruncated)
	}
	return nil
}

func decodeCollection(dec *decoder) (Collection, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, classify(err, "layer map")
	}
	if n < 0 {
		return nil, fmt.Errorf("layer map is nil: %w", ErrSchema)
	}
	if err := dec.checkCount(n, "layer map"); err != nil {
		return nil, err
	}

	coll := make(Collection, n)
	for i := 0; i < n; i++ {
		key, err := dec.DecodeInt32()
		if err != nil {
			return nil, classify(err, "layer key")
		}
		m, err := decodeMap(dec)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", key, err)
		}
		coll[key] = m
	}
	return coll, nil
}

func decodeMap(dec *decoder) (*Map, error) {
	if err := expectArray(dec, 5, "topology"); err != nil {
		return nil, err
	}

	m := &Map{}
	var err error
	if m.Scale, err = decodeVector(dec, "scale"); err != nil {
		return nil, err
	}
	if m.Translate, err = decodeVector(dec, "translate"); err != nil {
		return nil, err
	}

	np, err := arrayLen(dec, "polygons")
	if err != nil {
		return nil, err
	}
	m.Polygons = make([]Polygon, np)
	for i := range m.Polygons {
		if m.Polygons[i], err = decodePolygon(dec); err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
	}

	na, err := arrayLen(dec, "arcs")
	if err != nil {
		return nil, err
	}
	m.Arcs = make([]Arc, na)
	for i := range m.Arcs {
		if m.Arcs[i], err = decodeArc(dec); err != nil {
			return nil, fmt.Errorf("arc %d: %w", i, err)
		}
	}

	nc, err := dec.DecodeMapLen()
	if err != nil {
		return nil, classify(err, "center points")
	}
	if err := dec.checkCount(nc, "center points"); err != nil {
		return nil, err
	}
	m.CenterPoints = make(map[int32]quantize.Delta, max(nc, 0))
	for i := 0; i < nc; i++ {
		code, err := dec.DecodeInt32()
		if err != nil {
			return nil, classify(err, "center point code")
		}
		p, err := decodePoint(dec)
		if err != nil {
			return nil, fmt.Errorf("center point %d: %w", code, err)
		}
		m.CenterPoints[code] = p
	}
	return m, nil
}

func decodePolygon(dec *decoder) (Polygon, error) {
	if err := expectArray(dec, 2, "polygon"); err != nil {
		return Polygon{}, err
	}

	nr, err := arrayLen(dec, "rings")
	if err != nil {
		return Polygon{}, err
	}
	rings := make([][]int32, nr)
	for r := range rings {
		ni, err := arrayLen(dec, "ring")
		if err != nil {
			return Polygon{}, err
		}
		ring := make([]int32, ni)
		for i := range ring {
			if ring[i], err = dec.DecodeInt32(); err != nil {
				return Polygon{}, classify(err, "ring index")
			}
		}
		rings[r] = ring
	}

	code, err := dec.PeekCode()
	if err != nil {
		return Polygon{}, classify(err, "polygon code")
	}
	if code == msgpcode.Nil {
		if err := dec.DecodeNil(); err != nil {
			return Polygon{}, classify(err, "polygon code")
		}
		return Polygon{Rings: rings}, nil
	}
	c, err := dec.DecodeInt32()
	if err != nil {
		return Polygon{}, classify(err, "polygon code")
	}
	return Polygon{Rings: rings, Code: &c}, nil
}

func decodeArc(dec *decoder) (Arc, error) {
	if err := expectArray(dec, 2, "arc"); err != nil {
		return Arc{}, err
	}

	n, err := arrayLen(dec, "arc points")
	if err != nil {
		return Arc{}, err
	}
	points := make([]quantize.Delta, n)
	for i := range points {
		if points[i], err = decodePoint(dec); err != nil {
			return Arc{}, err
		}
	}

	t, err := dec.DecodeInt64()
	if err != nil {
		return Arc{}, classify(err, "arc type")
	}
	if !validArcType(t) {
		return Arc{}, fmt.Errorf("type %d: %w", t, ErrUnknownArcType)
	}
	return Arc{Points: points, Type: uint8(t)}, nil
}

func decodeVector(dec *decoder, what string) ([2]float64, error) {
	if err := expectArray(dec, 2, what); err != nil {
		return [2]float64{}, err
	}
	x, err := dec.DecodeFloat64()
	if err != nil {
		return [2]float64{}, classify(err, what)
	}
	y, err := dec.DecodeFloat64()
	if err != nil {
		return [2]float64{}, classify(err, what)
	}
	return [2]float64{x, y}, nil
}

func decodePoint(dec *decoder) (quantize.Delta, error) {
	if err := expectArray(dec, 2, "point"); err != nil {
		return quantize.Delta{}, err
	}
	x, err := dec.DecodeInt32()
	if err != nil {
		return quantize.Delta{}, classify(err, "point")
	}
	y, err := dec.DecodeInt32()
	if err != nil {
		return quantize.Delta{}, classify(err, "point")
	}
	return quantize.Delta{x, y}, nil
}

// arrayLen reads an array header, treating nil as empty. The count is
// checked against the bytes left before callers allocate for it.
func arrayLen(dec *decoder, what string) (int, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return 0, classify(err, what)
	}
	if n < 0 {
		return 0, nil
	}
	if err := dec.checkCount(n, what); err != nil {
		return 0, err
	}
	return n, nil
}

// expectArray reads an array header and checks its field count.
func expectArray(dec *decoder, fields int, what string) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return classify(err, what)
	}
	if n != fields {
		return fmt.Errorf("%s has %d fields, expected %d: %w", what, n, fields, ErrSchema)
	}
	return nil
}

// classify maps a low-level decoder error onto the package sentinels.
func classify(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%s: %w", what, ErrTruncated)
	}
	return fmt.Errorf("%s: %v: %w", what, err, ErrSchema)
}
