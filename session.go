package clsag

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/bwesterb/go-ristretto"
)

// SessionState enumerates the threshold protocol's state machine.
type SessionState int

const (
	StateIdle SessionState = iota
	StateCommitCollecting
	StateBindingDerived
	StatePartialCollecting
	StateAggregated
	StateAborted
)

// Session coordinates one threshold signing attempt over a ring. It collects
// round 1 nonce commitments, derives binding factors and the shared
// challenge, verifies round 2 partial responses, and aggregates them into a
// signature indistinguishable from a single-signer one. A session is
// single-use: terminal states destroy all secret material and refuse further
// messages.
type Session struct {
	mu    sync.Mutex
	state SessionState

	message   []byte
	ring      Ring
	realIndex int
	pseudoOut *ristretto.Point
	mask      *ristretto.Scalar

	signers  map[uint32]*ristretto.Point
	expected []uint32

	keyImageGen *ristretto.Point
	commitments map[uint32]*SigningCommitment
	binding     map[uint32]*ristretto.Scalar

	muP       *ristretto.Scalar
	muC       *ristretto.Scalar
	challenge *ristretto.Scalar
	cZero     *ristretto.Scalar
	responses []*ristretto.Scalar
	keyImage  *ristretto.Point
	auxImage  *ristretto.Point

	partials map[uint32]*ristretto.Scalar

	cause     error
	done      chan struct{}
	signalled bool
}

// NewSession prepares a signing attempt for the quorum in signers, mapping
// participant identifiers to their public key shares. The quorum must
// interpolate to the key at ring[realIndex]; mask is the shared commitment
// blinding delta known to every quorum member.
func NewSession(message []byte, ring Ring, realIndex int, mask *ristretto.Scalar, pseudoOut *ristretto.Point, signers map[uint32]*ristretto.Point, threshold int) (*Session, error) {
	if err := ring.validate(); err != nil {
		return nil, err
	}
	if realIndex < 0 || realIndex >= len(ring) {
		return nil, ErrRingSizeInvalid
	}
	if mask == nil || pseudoOut == nil {
		return nil, ErrInvalidSecret
	}
	if threshold < 1 || len(signers) < threshold {
		return nil, fmt.Errorf("clsag: quorum of %d below threshold %d", len(signers), threshold)
	}

	expected := make([]uint32, 0, len(signers))
	signerCopy := make(map[uint32]*ristretto.Point, len(signers))
	for id, public := range signers {
		if id == 0 || public == nil {
			return nil, ErrMalformedEncoding
		}
		expected = append(expected, id)
		signerCopy[id] = public
	}
	sort.Slice(expected, func(i, j int) bool { return expected[i] < expected[j] })

	// The quorum's interpolated key must open the claimed ring slot.
	var groupKey ristretto.Point
	groupKey.SetZero()
	for _, id := range expected {
		var t ristretto.Point
		t.ScalarMult(signerCopy[id], lagrangeCoefficient(id, expected))
		groupKey.Add(&groupKey, &t)
	}
	if !bytes.Equal(groupKey.Bytes(), ring[realIndex].PublicKey.Bytes()) {
		return nil, ErrInvalidSecret
	}

	var maskCopy ristretto.Scalar
	maskCopy.SetZero()
	maskCopy.Add(&maskCopy, mask)

	return &Session{
		state:       StateIdle,
		message:     message,
		ring:        ring,
		realIndex:   realIndex,
		pseudoOut:   pseudoOut,
		mask:        &maskCopy,
		signers:     signerCopy,
		expected:    expected,
		keyImageGen: hashToPoint(ring[realIndex].PublicKey),
		commitments: make(map[uint32]*SigningCommitment, len(expected)),
		partials:    make(map[uint32]*ristretto.Scalar, len(expected)),
		done:        make(chan struct{}),
	}, nil
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// KeyImageGenerator returns Hp(P[l]), the point cosigners commit their
// nonces and key-image shares against.
func (s *Session) KeyImageGenerator() *ristretto.Point {
	var gen ristretto.Point
	return gen.Set(s.keyImageGen)
}

// SubmitCommitment accepts one participant's round 1 message. Once the full
// quorum has committed, binding factors and the shared challenge chain are
// derived and the session moves to partial-response collection.
func (s *Session) SubmitCommitment(c *SigningCommitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle, StateCommitCollecting:
	case StateAggregated, StateAborted:
		return ErrSessionClosed
	default:
		return ErrSessionState
	}
	if c == nil || c.HidingG == nil || c.BindingG == nil || c.HidingH == nil || c.BindingH == nil || c.KeyImageShare == nil {
		return ErrMalformedEncoding
	}
	if _, ok := s.signers[c.ID]; !ok {
		return fmt.Errorf("clsag: unknown participant %d: %w", c.ID, ErrSessionState)
	}
	if _, dup := s.commitments[c.ID]; dup {
		return fmt.Errorf("clsag: duplicate commitment from participant %d: %w", c.ID, ErrSessionState)
	}

	s.commitments[c.ID] = c
	s.state = StateCommitCollecting
	if len(s.commitments) == len(s.expected) {
		s.deriveBinding()
		s.state = StateBindingDerived
	}
	return nil
}

// deriveBinding runs once the quorum's commitments are complete: it combines
// the key-image shares, derives binding factors, and walks the decoy half of
// the challenge chain exactly as single-signer signing would.
func (s *Session) deriveBinding() {
	var keyImage ristretto.Point
	keyImage.SetZero()
	for _, id := range s.expected {
		var t ristretto.Point
		t.ScalarMult(s.commitments[id].KeyImageShare, lagrangeCoefficient(id, s.expected))
		keyImage.Add(&keyImage, &t)
	}
	s.keyImage = &keyImage

	s.auxImage = deriveAuxiliaryImage(s.mask, s.ring[s.realIndex].PublicKey)

	s.muP, s.muC = aggregationCoefficients(s.ring, s.keyImage, s.auxImage, s.pseudoOut)

	ordered := make([]*SigningCommitment, 0, len(s.expected))
	for _, id := range s.expected {
		ordered = append(ordered, s.commitments[id])
	}
	digest := s.ring.digest(s.pseudoOut)
	s.binding = make(map[uint32]*ristretto.Scalar, len(s.expected))
	for _, id := range s.expected {
		s.binding[id] = bindingFactor(digest, s.message, ordered, id)
	}

	// Group nonce commitments over both generators: sum of D + rho*E.
	var L, R ristretto.Point
	L.SetZero()
	R.SetZero()
	for _, id := range s.expected {
		c := s.commitments[id]
		rho := s.binding[id]
		var t ristretto.Point
		t.ScalarMult(c.BindingG, rho)
		t.Add(c.HidingG, &t)
		L.Add(&L, &t)
		t.ScalarMult(c.BindingH, rho)
		t.Add(c.HidingH, &t)
		R.Add(&R, &t)
	}

	size := len(s.ring)
	aggImage := multiscalarMul([]*ristretto.Scalar{s.muP, s.muC}, []*ristretto.Point{s.keyImage, s.auxImage})
	prefix := roundPrefix(s.message, s.ring, s.pseudoOut)

	c := make([]*ristretto.Scalar, size)
	s.responses = make([]*ristretto.Scalar, size)
	c[(s.realIndex+1)%size] = roundChallenge(prefix, &L, &R)
	for n := 1; n < size; n++ {
		i := (s.realIndex + n) % size
		var si ristretto.Scalar
		s.responses[i] = si.Rand()
		w := aggregateMember(s.ring[i], s.pseudoOut, s.muP, s.muC)

		var Li, l0, l1 ristretto.Point
		Li.Add(l0.ScalarMultBase(s.responses[i]), l1.ScalarMult(w, c[i]))
		var Ri, r0, r1 ristretto.Point
		Ri.Add(r0.ScalarMult(hashToPoint(s.ring[i].PublicKey), s.responses[i]), r1.ScalarMult(aggImage, c[i]))
		c[(i+1)%size] = roundChallenge(prefix, &Li, &Ri)
	}
	s.challenge = c[s.realIndex]
	s.cZero = c[0]
}

// SigningPackage returns the shared challenge material for round 2. It is
// only available once all commitments are in.
func (s *Session) SigningPackage() (*SigningPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateBindingDerived, StatePartialCollecting:
	case StateAggregated, StateAborted:
		return nil, ErrSessionClosed
	default:
		return nil, ErrSessionState
	}

	factors := make(map[uint32]*ristretto.Scalar, len(s.binding))
	for id, rho := range s.binding {
		factors[id] = rho
	}
	return &SigningPackage{
		Challenge:      s.challenge,
		MuP:            s.muP,
		SignerIDs:      append([]uint32(nil), s.expected...),
		BindingFactors: factors,
	}, nil
}

// SubmitPartialResponse accepts one participant's round 2 message. Partial
// responses are rejected, not buffered, while round 1 is still open. An
// inconsistent response aborts the session naming the offender.
func (s *Session) SubmitPartialResponse(p *PartialResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateBindingDerived, StatePartialCollecting:
	case StateAggregated, StateAborted:
		return ErrSessionClosed
	default:
		return ErrSessionState
	}
	if p == nil || p.Response == nil {
		return ErrMalformedEncoding
	}
	commitment, ok := s.commitments[p.ID]
	if !ok {
		return fmt.Errorf("clsag: unknown participant %d: %w", p.ID, ErrSessionState)
	}
	if _, dup := s.partials[p.ID]; dup {
		return fmt.Errorf("clsag: duplicate partial response from participant %d: %w", p.ID, ErrSessionState)
	}

	if !s.verifyPartial(commitment, p.Response) {
		s.abort(&SessionAbortedError{Participant: p.ID})
		return s.cause
	}

	s.partials[p.ID] = p.Response
	s.state = StatePartialCollecting
	if len(s.partials) == len(s.expected) {
		s.signal()
	}
	return nil
}

// verifyPartial checks a response against the participant's published
// commitments and binding factor, on both generators.
func (s *Session) verifyPartial(c *SigningCommitment, response *ristretto.Scalar) bool {
	rho := s.binding[c.ID]
	var cl ristretto.Scalar
	cl.Mul(s.challenge, s.muP)
	cl.Mul(&cl, lagrangeCoefficient(c.ID, s.expected))

	var lhs, rhs, t ristretto.Point
	lhs.ScalarMultBase(response)
	rhs.ScalarMult(c.BindingG, rho)
	rhs.Add(c.HidingG, &rhs)
	t.ScalarMult(s.signers[c.ID], &cl)
	rhs.Sub(&rhs, &t)
	if !bytes.Equal(lhs.Bytes(), rhs.Bytes()) {
		return false
	}

	lhs.ScalarMult(s.keyImageGen, response)
	rhs.ScalarMult(c.BindingH, rho)
	rhs.Add(c.HidingH, &rhs)
	t.ScalarMult(c.KeyImageShare, &cl)
	rhs.Sub(&rhs, &t)
	return bytes.Equal(lhs.Bytes(), rhs.Bytes())
}

// Finalize blocks until every partial response has arrived or ctx expires,
// then closes the real slot with the summed responses and returns the
// signature. Expiry aborts the session with a timeout cause.
func (s *Session) Finalize(ctx context.Context) (*RingCLSAG, error) {
	s.mu.Lock()
	switch s.state {
	case StateAborted:
		cause := s.cause
		s.mu.Unlock()
		return nil, cause
	case StateAggregated:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		s.mu.Lock()
		// The session may have reached a terminal state between the ctx
		// wakeup and this lock acquisition.
		switch s.state {
		case StateAggregated:
			s.mu.Unlock()
			return nil, ErrSessionClosed
		case StateAborted:
			cause := s.cause
			s.mu.Unlock()
			return nil, cause
		}
		s.abort(ErrSessionTimeout)
		cause := s.cause
		s.mu.Unlock()
		return nil, cause
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAborted {
		return nil, s.cause
	}
	if s.state == StateAggregated {
		return nil, ErrSessionClosed
	}

	// s[l] = sum of partial responses - c[l]*muC*mask
	var sl ristretto.Scalar
	sl.SetZero()
	for _, id := range s.expected {
		sl.Add(&sl, s.partials[id])
	}
	var t ristretto.Scalar
	t.Mul(s.challenge, s.muC)
	t.Mul(&t, s.mask)
	sl.Sub(&sl, &t)
	s.responses[s.realIndex] = &sl

	responses := make([]string, len(s.responses))
	for i, si := range s.responses {
		responses[i] = hex.EncodeToString(si.Bytes())
	}
	sig := &RingCLSAG{
		CZero:          hex.EncodeToString(s.cZero.Bytes()),
		Responses:      responses,
		KeyImage:       hex.EncodeToString(s.keyImage.Bytes()),
		AuxiliaryImage: hex.EncodeToString(s.auxImage.Bytes()),
	}
	s.state = StateAggregated
	s.wipe()
	return sig, nil
}

// Cancel abandons the session and discards its secret material. It has no
// effect once a terminal state was reached.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abort(ErrSessionCancelled)
}

func (s *Session) abort(cause error) {
	if s.state == StateAborted || s.state == StateAggregated {
		return
	}
	s.state = StateAborted
	s.cause = cause
	s.wipe()
	s.signal()
}

func (s *Session) signal() {
	if !s.signalled {
		s.signalled = true
		close(s.done)
	}
}

func (s *Session) wipe() {
	wipeScalar(s.mask)
	for _, p := range s.partials {
		wipeScalar(p)
	}
}
