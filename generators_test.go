package clsag

import (
	"encoding/hex"
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
)

func TestPedersenCommit(t *testing.T) {
	assert := assert.New(t)

	pg := NewPedersenGens()
	var b1, b2 ristretto.Scalar
	b1.Rand()
	b2.Rand()
	v := uint64ToScalar(42)

	// homomorphic in the blinding
	var sum ristretto.Scalar
	sum.Add(&b1, &b2)
	var shifted ristretto.Point
	shifted.ScalarMult(pg.BBlinding, &b2)
	shifted.Add(pg.Commit(v, &b1), &shifted)
	assert.Equal(pg.Commit(v, &sum).Bytes(), shifted.Bytes())

	// two commitments to the same value differ only by a base-point multiple
	var delta ristretto.Scalar
	delta.Sub(&b1, &b2)
	var offset, expected ristretto.Point
	offset.Sub(pg.Commit(v, &b1), pg.Commit(v, &b2))
	expected.ScalarMultBase(&delta)
	assert.Equal(expected.Bytes(), offset.Bytes())

	// distinct generator sets
	dg := DefaultPedersenGens()
	assert.NotEqual(pg.B.Bytes(), dg.B.Bytes())
	assert.NotEqual(pg.Commit(v, &b1).Bytes(), dg.Commit(v, &b1).Bytes())
}

func TestCanonicalDecoding(t *testing.T) {
	assert := assert.New(t)

	var p ristretto.Point
	p.Rand()
	var s ristretto.Scalar
	s.Rand()

	decodedPoint, err := decodePoint(hex.EncodeToString(p.Bytes()))
	assert.Nil(err)
	assert.Equal(p.Bytes(), decodedPoint.Bytes())

	decodedScalar, err := decodeScalar(hex.EncodeToString(s.Bytes()))
	assert.Nil(err)
	assert.Equal(s.Bytes(), decodedScalar.Bytes())

	_, err = decodePoint("zz")
	assert.Equal(ErrMalformedEncoding, err)
	_, err = decodeScalar("abcd")
	assert.Equal(ErrMalformedEncoding, err)
}
