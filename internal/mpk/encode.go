package mpk

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// BlockSize is the uncompressed size of each LZ4 block written by Encode.
var BlockSize = 64 * 1024

// Encode serializes coll and wraps it with the requested compression.
// Layers and center points are written in ascending key order so the output
// is deterministic.
func Encode(coll Collection, compression Compression) ([]byte, error) {
	var payload bytes.Buffer
	if err := encodeCollection(msgpack.NewEncoder(&payload), coll); err != nil {
		return nil, err
	}

	switch compression {
	case CompressionNone:
		return payload.Bytes(), nil
	case CompressionBlock:
		return wrapBlock(payload.Bytes())
	case CompressionBlockArray:
		return wrapBlockArray(payload.Bytes())
	default:
		return nil, fmt.Errorf("unknown compression %d", compression)
	}
}

// wrapBlockArray writes the extension 98 form. The encoder writes straight
// into out, so raw header bytes can be appended between encoder calls.
func wrapBlockArray(payload []byte) ([]byte, error) {
	var chunks [][]byte
	for start := 0; start < len(payload); start += BlockSize {
		chunks = append(chunks, payload[start:min(start+BlockSize, len(payload))])
	}

	var header bytes.Buffer
	henc := msgpack.NewEncoder(&header)
	for _, c := range chunks {
		if err := henc.EncodeInt(int64(len(c))); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	enc := msgpack.NewEncoder(&out)
	if err := enc.EncodeArrayLen(len(chunks) + 1); err != nil {
		return nil, err
	}
	if err := enc.EncodeExtHeader(extBlockArray, header.Len()); err != nil {
		return nil, err
	}
	out.Write(header.Bytes())

	for i, c := range chunks {
		compressed, err := compress(c)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		if err := enc.EncodeBytes(compressed); err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}

// wrapBlock writes the extension 99 form: int32 length then one LZ4 block.
func wrapBlock(payload []byte) ([]byte, error) {
	compressed, err := compress(payload)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := msgpack.NewEncoder(&body).EncodeInt32(int32(len(payload))); err != nil {
		return nil, err
	}
	body.Write(compressed)

	var out bytes.Buffer
	if err := msgpack.NewEncoder(&out).EncodeExtHeader(extBlock, body.Len()); err != nil {
		return nil, err
	}
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}
	var c lz4.Compressor
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("block of %d bytes could not be compressed", len(src))
	}
	return dst[:n], nil
}

func encodeCollection(enc *msgpack.Encoder, coll Collection) error {
	keys := make([]int32, 0, len(coll))
	for k := range coll {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if err := enc.EncodeMapLen(len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := enc.EncodeInt(int64(k)); err != nil {
			return err
		}
		if err := encodeMap(enc, coll[k]); err != nil {
			return fmt.Errorf("layer %d: %w", k, err)
		}
	}
	return nil
}

func encodeMap(enc *msgpack.Encoder, m *Map) error {
	if m == nil {
		return fmt.Errorf("nil topology")
	}
	if err := enc.EncodeArrayLen(5); err != nil {
		return err
	}
	if err := encodeVector(enc, m.Scale); err != nil {
		return err
	}
	if err := encodeVector(enc, m.Translate); err != nil {
		return err
	}

	if err := enc.EncodeArrayLen(len(m.Polygons)); err != nil {
		return err
	}
	for _, p := range m.Polygons {
		if err := encodePolygon(enc, p); err != nil {
			return err
		}
	}

	if err := enc.EncodeArrayLen(len(m.Arcs)); err != nil {
		return err
	}
	for _, a := range m.Arcs {
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(len(a.Points)); err != nil {
			return err
		}
		for _, p := range a.Points {
			if err := encodePoint(enc, p); err != nil {
				return err
			}
		}
		if err := enc.EncodeUint(uint64(a.Type)); err != nil {
			return err
		}
	}

	codes := make([]int32, 0, len(m.CenterPoints))
	for c := range m.CenterPoints {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	if err := enc.EncodeMapLen(len(codes)); err != nil {
		return err
	}
	for _, c := range codes {
		if err := enc.EncodeInt(int64(c)); err != nil {
			return err
		}
		if err := encodePoint(enc, m.CenterPoints[c]); err != nil {
			return err
		}
	}
	return nil
}

func encodePolygon(enc *msgpack.Encoder, p Polygon) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(len(p.Rings)); err != nil {
		return err
	}
	for _, ring := range p.Rings {
		if err := enc.EncodeArrayLen(len(ring)); err != nil {
			return err
		}
		for _, i := range ring {
			if err := enc.EncodeInt(int64(i)); err != nil {
				return err
			}
		}
	}
	if p.Code == nil {
		return enc.EncodeNil()
	}
	return enc.EncodeInt(int64(*p.Code))
}

func encodeVector(enc *msgpack.Encoder, v [2]float64) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeFloat64(v[0]); err != nil {
		return err
	}
	return enc.EncodeFloat64(v[1])
}

func encodePoint(enc *msgpack.Encoder, p [2]int32) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(p[0])); err != nil {
		return err
	}
	return enc.EncodeInt(int64(p[1]))
}
