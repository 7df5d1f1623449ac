package clsag

import (
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
)

func TestDealShares(t *testing.T) {
	assert := assert.New(t)

	var secret ristretto.Scalar
	secret.Rand()

	shares, err := DealShares(&secret, 3, 5)
	assert.Nil(err)
	assert.Len(shares, 5)

	var groupKey ristretto.Point
	groupKey.ScalarMultBase(&secret)
	for i, share := range shares {
		assert.Equal(uint32(i+1), share.ID)
		assert.Equal(groupKey.Bytes(), share.GroupKey.Bytes())

		var public ristretto.Point
		public.ScalarMultBase(share.Secret)
		assert.Equal(public.Bytes(), share.Public.Bytes())
	}

	_, err = DealShares(&secret, 0, 5)
	assert.NotNil(err)
	_, err = DealShares(&secret, 4, 3)
	assert.NotNil(err)
	_, err = DealShares(nil, 2, 3)
	assert.NotNil(err)
}

func TestLagrangeReconstruction(t *testing.T) {
	assert := assert.New(t)

	var secret ristretto.Scalar
	secret.Rand()
	shares, err := DealShares(&secret, 3, 5)
	assert.Nil(err)

	for _, quorum := range [][]uint32{{1, 2, 3}, {1, 3, 5}, {2, 4, 5}, {1, 2, 3, 4, 5}} {
		var sum ristretto.Scalar
		sum.SetZero()
		for _, id := range quorum {
			var term ristretto.Scalar
			term.Mul(lagrangeCoefficient(id, quorum), shares[id-1].Secret)
			sum.Add(&sum, &term)
		}
		assert.Equal(secret.Bytes(), sum.Bytes())
	}

	// below threshold the interpolation misses
	var sum ristretto.Scalar
	sum.SetZero()
	for _, id := range []uint32{1, 2} {
		var term ristretto.Scalar
		term.Mul(lagrangeCoefficient(id, []uint32{1, 2}), shares[id-1].Secret)
		sum.Add(&sum, &term)
	}
	assert.NotEqual(secret.Bytes(), sum.Bytes())
}
