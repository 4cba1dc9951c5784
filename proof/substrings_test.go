package proof

import (
	"bytes"
	"testing"
)

func TestSubstringsVerify(t *testing.T) {
	_, _, tlsProof := newFixture(t, TestSessionParams{
		SentLen: 100,
		RecvLen: 50,
		Ranges: []TestRange{
			{Direction: DirectionSent, Start: 0, Data: []byte("GET /data ")},
			{Direction: DirectionSent, Start: 40, Data: []byte("HTTP/1.1")},
			{Direction: DirectionReceived, Start: 0, Data: []byte("200 OK")},
		},
	})

	openings, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil)
	if err != nil {
		t.Fatalf("valid substrings rejected: %v", err)
	}
	if len(openings) != 3 {
		t.Fatalf("expected 3 openings, got %d", len(openings))
	}

	// repeated verification of the same proof gives the same verdict
	if _, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil); err != nil {
		t.Fatalf("second verification rejected: %v", err)
	}
}

// Adjacent ranges share a boundary but no byte positions and must be
// accepted.
func TestSubstringsVerifyAdjacentRanges(t *testing.T) {
	_, _, tlsProof := newFixture(t, TestSessionParams{
		SentLen: 100,
		RecvLen: 0,
		Ranges: []TestRange{
			{Direction: DirectionSent, Start: 0, Data: bytes.Repeat([]byte("a"), 10)},
			{Direction: DirectionSent, Start: 10, Data: bytes.Repeat([]byte("b"), 10)},
		},
	})
	if _, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil); err != nil {
		t.Fatalf("adjacent ranges rejected: %v", err)
	}
}

// Overlap is rejected even when the overlapping bytes are identical.
func TestSubstringsVerifyOverlap(t *testing.T) {
	_, _, tlsProof := newFixture(t, TestSessionParams{
		SentLen: 100,
		RecvLen: 0,
		Ranges: []TestRange{
			{Direction: DirectionSent, Start: 0, Data: []byte("aaaaaaaaaa")},
			{Direction: DirectionSent, Start: 5, Data: []byte("aaaaaaaaaa")},
		},
	})
	_, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil)
	expectKind(t, err, KindOverlappingRanges)
}

// Ranges in opposite directions may occupy the same offsets.
func TestSubstringsVerifyCrossDirectionOffsets(t *testing.T) {
	_, _, tlsProof := newFixture(t, TestSessionParams{
		SentLen: 20,
		RecvLen: 20,
		Ranges: []TestRange{
			{Direction: DirectionSent, Start: 5, Data: []byte("hello")},
			{Direction: DirectionReceived, Start: 5, Data: []byte("world")},
		},
	})
	if _, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil); err != nil {
		t.Fatalf("cross-direction offsets rejected: %v", err)
	}
}

func TestSubstringsVerifyOutOfBounds(t *testing.T) {
	_, _, tlsProof := newFixture(t, TestSessionParams{
		SentLen: 8,
		RecvLen: 0,
		Ranges: []TestRange{
			{Direction: DirectionSent, Start: 5, Data: []byte("toolong")},
		},
	})
	_, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil)
	expectKind(t, err, KindRangeOutOfBounds)
}

func TestSubstringsVerifyZeroLengthRange(t *testing.T) {
	_, _, tlsProof := newFixture(t, TestSessionParams{
		SentLen: 10,
		RecvLen: 0,
		Ranges: []TestRange{
			{Direction: DirectionSent, Start: 0, Data: []byte("abcde")},
			{Direction: DirectionSent, Start: 3, Data: []byte{}}, // inside another range; spans no bytes
		},
	})
	openings, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil)
	if err != nil {
		t.Fatalf("zero-length range rejected: %v", err)
	}
	if len(openings) != 2 {
		t.Fatalf("expected 2 openings, got %d", len(openings))
	}
}

func TestSubstringsVerifyMalformedOpening(t *testing.T) {
	t.Run("UnknownDirection", func(t *testing.T) {
		_, _, tlsProof := newFixture(t, TestSessionParams{
			SentLen: 10,
			Ranges:  []TestRange{{Direction: DirectionSent, Start: 0, Data: []byte("abc")}},
		})
		tlsProof.Substrings.Openings[0].Direction = "upstream"
		_, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil)
		expectKind(t, err, KindMalformedProof)
	})

	t.Run("LengthDataMismatch", func(t *testing.T) {
		_, _, tlsProof := newFixture(t, TestSessionParams{
			SentLen: 10,
			Ranges:  []TestRange{{Direction: DirectionSent, Start: 0, Data: []byte("abc")}},
		})
		tlsProof.Substrings.Openings[0].Length = 5
		_, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil)
		expectKind(t, err, KindMalformedProof)
	})

	t.Run("ShortBlinder", func(t *testing.T) {
		_, _, tlsProof := newFixture(t, TestSessionParams{
			SentLen: 10,
			Ranges:  []TestRange{{Direction: DirectionSent, Start: 0, Data: []byte("abc")}},
		})
		tlsProof.Substrings.Openings[0].Blinder = tlsProof.Substrings.Openings[0].Blinder[:16]
		_, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil)
		expectKind(t, err, KindMalformedProof)
	})
}

// Any single-bit change to an opening must reject the proof.
func TestSubstringsVerifyTamper(t *testing.T) {
	params := TestSessionParams{
		SentLen: 64,
		RecvLen: 64,
		Ranges: []TestRange{
			{Direction: DirectionSent, Start: 0, Data: []byte("authorization: bearer token")},
			{Direction: DirectionReceived, Start: 10, Data: []byte(`{"balance":42}`)},
		},
	}

	tamper := map[string]func(o *Opening){
		"DataBit":    func(o *Opening) { o.Data[0] ^= 0x01 },
		"BlinderBit": func(o *Opening) { o.Blinder[0] ^= 0x01 },
		"PathBit":    func(o *Opening) { o.Path[0][0] ^= 0x01 },
		"Start":      func(o *Opening) { o.Start++ },
		"LeafIndex":  func(o *Opening) { o.LeafIndex ^= 1 },
	}
	for name, mutate := range tamper {
		t.Run(name, func(t *testing.T) {
			_, _, tlsProof := newFixture(t, params)
			mutate(&tlsProof.Substrings.Openings[1])
			_, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil)
			expectKind(t, err, KindCommitmentMismatch)
		})
	}

	t.Run("RootBit", func(t *testing.T) {
		_, _, tlsProof := newFixture(t, params)
		tlsProof.Session.Header.MerkleRoot[0] ^= 0x01
		_, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, nil)
		expectKind(t, err, KindCommitmentMismatch)
	})
}
