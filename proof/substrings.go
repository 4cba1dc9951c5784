package proof

import (
	"sort"

	"tlsn-verify/commitment"
)

// Verify checks every disclosed range against the transcript commitment
// in the session header: ranges must lie within the attested lengths, be
// disjoint within each direction, and every opening must map to a leaf
// included under the header's merkle root. There is no partial success;
// the first failing range rejects the whole proof.
//
// The returned openings are the validated set, ready for reconstruction.
func (s *SubstringsProof) Verify(header *SessionHeader, opener commitment.Opener) ([]Opening, error) {
	if opener == nil {
		opener = commitment.MerkleOpener{}
	}

	for i := range s.Openings {
		o := &s.Openings[i]
		if !o.Direction.valid() {
			return nil, newError(KindMalformedProof, "opening with unknown direction")
		}
		if len(o.Data) != int(o.Length) || len(o.Blinder) != commitment.BlinderSize {
			return nil, newError(KindMalformedProof, "opening with inconsistent sizes")
		}
		total := header.lenOf(o.Direction)
		if o.Start > total || o.End() < o.Start || o.End() > total {
			return nil, newError(KindRangeOutOfBounds, "disclosed range exceeds attested transcript length")
		}
	}

	if err := checkDisjoint(s.Openings, DirectionSent); err != nil {
		return nil, err
	}
	if err := checkDisjoint(s.Openings, DirectionReceived); err != nil {
		return nil, err
	}

	// Openings are only checked against the commitment once the cheap
	// structural checks passed. Failures are reported without byte-level
	// detail.
	for i := range s.Openings {
		o := &s.Openings[i]
		leaf := commitment.LeafDigest(o.Direction.wire(), o.Start, o.Length, o.Blinder, o.Data)
		if err := opener.VerifyOpening(header.MerkleRoot, o.LeafIndex, leaf, o.Path); err != nil {
			return nil, newError(KindCommitmentMismatch, "opening inconsistent with attested commitment")
		}
	}

	return s.Openings, nil
}

// checkDisjoint rejects overlapping disclosed ranges in one direction.
// Overlap is rejected even when the overlapping bytes agree, since it
// would allow two inconsistent disclosures of the same position.
// Zero-length ranges span no bytes and cannot overlap.
func checkDisjoint(openings []Opening, dir Direction) error {
	var ranges []Opening
	for _, o := range openings {
		if o.Direction == dir && o.Length > 0 {
			ranges = append(ranges, o)
		}
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	for i := 1; i < len(ranges); i++ {
		if ranges[i-1].End() > ranges[i].Start {
			return newError(KindOverlappingRanges, "disclosed ranges overlap")
		}
	}
	return nil
}
