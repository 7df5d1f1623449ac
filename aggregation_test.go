package clsag

import (
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
)

func TestAggregationCoefficients(t *testing.T) {
	assert := assert.New(t)

	ring, _, pseudoOut := testRing(5, 2, 12)
	var keyImage, auxImage ristretto.Point
	keyImage.Rand()
	auxImage.Rand()

	muP1, muC1 := aggregationCoefficients(ring, &keyImage, &auxImage, pseudoOut)
	muP2, muC2 := aggregationCoefficients(ring, &keyImage, &auxImage, pseudoOut)

	// deterministic, and the two domains separate
	assert.Equal(muP1.Bytes(), muP2.Bytes())
	assert.Equal(muC1.Bytes(), muC2.Bytes())
	assert.NotEqual(muP1.Bytes(), muC1.Bytes())

	// any input perturbs both coefficients
	var otherOut ristretto.Point
	otherOut.Rand()
	muP3, muC3 := aggregationCoefficients(ring, &keyImage, &auxImage, &otherOut)
	assert.NotEqual(muP1.Bytes(), muP3.Bytes())
	assert.NotEqual(muC1.Bytes(), muC3.Bytes())

	muP4, muC4 := aggregationCoefficients(ring, &auxImage, &keyImage, pseudoOut)
	assert.NotEqual(muP1.Bytes(), muP4.Bytes())
	assert.NotEqual(muC1.Bytes(), muC4.Bytes())
}

func TestAggregateMember(t *testing.T) {
	assert := assert.New(t)

	ring, _, pseudoOut := testRing(3, 0, 2)
	var muP, muC ristretto.Scalar
	muP.Rand()
	muC.Rand()

	// W = muP*P + muC*(C - pseudoOut), assembled by hand
	var offset, expected, term ristretto.Point
	offset.Sub(ring[1].Commitment, pseudoOut)
	expected.ScalarMult(ring[1].PublicKey, &muP)
	term.ScalarMult(&offset, &muC)
	expected.Add(&expected, &term)

	w := aggregateMember(ring[1], pseudoOut, &muP, &muC)
	assert.Equal(expected.Bytes(), w.Bytes())
}
