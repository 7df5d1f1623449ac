package clsag

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
)

func hashToPoint(public *ristretto.Point) *ristretto.Point {
	hash := blake2b.New512()
	hash.Write([]byte(HASH_TO_POINT_DOMAIN_TAG))
	hash.Write(public.Bytes())
	var key [64]byte
	copy(key[:], hash.Sum(nil))

	var r1Bytes, r2Bytes [32]byte
	copy(r1Bytes[:], key[:32])
	copy(r2Bytes[:], key[32:])
	var r, r1, r2 ristretto.Point
	return r.Add(r1.SetElligator(&r1Bytes), r2.SetElligator(&r2Bytes))
}

func hashToScalar(tag string, chunks ...[]byte) *ristretto.Scalar {
	hash := blake2b.New512()
	hash.Write([]byte(tag))
	for _, chunk := range chunks {
		hash.Write(chunk)
	}
	var key [64]byte
	copy(key[:], hash.Sum(nil))

	var s ristretto.Scalar
	return s.SetReduced(&key)
}

func uint64ToScalar(i uint64) *ristretto.Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:8], i)

	var s ristretto.Scalar
	return s.SetBytes(&buf)
}

func uint32ToScalar(i uint32) *ristretto.Scalar {
	return uint64ToScalar(uint64(i))
}

// decodePoint decodes a canonical hex encoding, rejecting anything that is
// not a valid element of the prime-order group.
func decodePoint(h string) (*ristretto.Point, error) {
	buf, err := hex.DecodeString(h)
	if err != nil || len(buf) != 32 {
		return nil, ErrMalformedEncoding
	}
	var buf32 [32]byte
	copy(buf32[:], buf)
	var p ristretto.Point
	if !p.SetBytes(&buf32) {
		return nil, ErrMalformedEncoding
	}
	return &p, nil
}

// decodeScalar decodes a canonical hex encoding of a scalar, rejecting
// representations greater than or equal to the group order.
func decodeScalar(h string) (*ristretto.Scalar, error) {
	buf, err := hex.DecodeString(h)
	if err != nil || len(buf) != 32 {
		return nil, ErrMalformedEncoding
	}
	var buf32 [32]byte
	copy(buf32[:], buf)
	var s ristretto.Scalar
	s.SetBytes(&buf32)
	if !bytes.Equal(s.Bytes(), buf) {
		return nil, ErrMalformedEncoding
	}
	return &s, nil
}

func isIdentity(p *ristretto.Point) bool {
	var zero ristretto.Point
	zero.SetZero()
	return bytes.Equal(p.Bytes(), zero.Bytes())
}

func multiscalarMul(scalars []*ristretto.Scalar, points []*ristretto.Point) *ristretto.Point {
	var p ristretto.Point
	p.SetZero()
	for i := range scalars {
		var t ristretto.Point
		t.ScalarMult(points[i], scalars[i])
		p.Add(&p, &t)
	}
	return &p
}

func wipeScalar(s *ristretto.Scalar) {
	if s != nil {
		s.SetZero()
	}
}
