package clsag

import (
	"errors"

	"github.com/bwesterb/go-ristretto"
)

// SigningCommitment is a cosigner's round 1 message: hiding and binding
// nonce commitments over both generators, plus its key-image share.
type SigningCommitment struct {
	ID            uint32
	HidingG       *ristretto.Point
	BindingG      *ristretto.Point
	HidingH       *ristretto.Point
	BindingH      *ristretto.Point
	KeyImageShare *ristretto.Point
}

// PartialResponse is a cosigner's round 2 message.
type PartialResponse struct {
	ID       uint32
	Response *ristretto.Scalar
}

// SigningPackage is everything a cosigner needs to produce its partial
// response once the session has derived the shared challenge.
type SigningPackage struct {
	Challenge      *ristretto.Scalar
	MuP            *ristretto.Scalar
	SignerIDs      []uint32
	BindingFactors map[uint32]*ristretto.Scalar
}

// Cosigner holds one participant's ephemeral state for a single signing
// attempt. Nonces are generated once and destroyed after the partial
// response; reusing them across attempts would leak the key share.
type Cosigner struct {
	share   *KeyShare
	hiding  *ristretto.Scalar
	binding *ristretto.Scalar
	used    bool
}

func NewCosigner(share *KeyShare) (*Cosigner, error) {
	if share == nil || share.Secret == nil {
		return nil, ErrInvalidSecret
	}
	return &Cosigner{share: share}, nil
}

func (co *Cosigner) ID() uint32 {
	return co.share.ID
}

// Commit samples the nonce pair and publishes the round 1 commitments over
// the base point and the key-image generator Hp(P[l]).
func (co *Cosigner) Commit(keyImageGenerator *ristretto.Point) (*SigningCommitment, error) {
	if keyImageGenerator == nil || isIdentity(keyImageGenerator) {
		return nil, ErrMalformedEncoding
	}
	if co.hiding != nil || co.used {
		return nil, errors.New("clsag: nonces already generated for this attempt")
	}
	var d, e ristretto.Scalar
	d.Rand()
	e.Rand()
	co.hiding = &d
	co.binding = &e

	var hidingG, bindingG, hidingH, bindingH, imageShare ristretto.Point
	hidingG.ScalarMultBase(&d)
	bindingG.ScalarMultBase(&e)
	hidingH.ScalarMult(keyImageGenerator, &d)
	bindingH.ScalarMult(keyImageGenerator, &e)
	imageShare.ScalarMult(keyImageGenerator, co.share.Secret)

	return &SigningCommitment{
		ID:            co.share.ID,
		HidingG:       &hidingG,
		BindingG:      &bindingG,
		HidingH:       &hidingH,
		BindingH:      &bindingH,
		KeyImageShare: &imageShare,
	}, nil
}

// PartialSign computes s_i = d + rho*e - c*muP*lambda*x_i and destroys the
// nonces. A second call fails.
func (co *Cosigner) PartialSign(pkg *SigningPackage) (*PartialResponse, error) {
	if co.used || co.hiding == nil {
		return nil, errors.New("clsag: signing nonces consumed or never generated")
	}
	if pkg == nil || pkg.Challenge == nil || pkg.MuP == nil {
		return nil, ErrSessionState
	}
	rho, ok := pkg.BindingFactors[co.share.ID]
	if !ok {
		return nil, ErrSessionState
	}
	lambda := lagrangeCoefficient(co.share.ID, pkg.SignerIDs)

	var response, t ristretto.Scalar
	response.Mul(rho, co.binding)
	response.Add(co.hiding, &response)
	t.Mul(pkg.Challenge, pkg.MuP)
	t.Mul(&t, lambda)
	t.Mul(&t, co.share.Secret)
	response.Sub(&response, &t)

	wipeScalar(co.hiding)
	wipeScalar(co.binding)
	co.hiding, co.binding = nil, nil
	co.used = true

	return &PartialResponse{ID: co.share.ID, Response: &response}, nil
}
