package proof

import (
	"bytes"
	"testing"
)

func TestReconstruct(t *testing.T) {
	openings := []Opening{
		{Direction: DirectionSent, Start: 40, Length: 8, Data: []byte("HTTP/1.1")},
		{Direction: DirectionSent, Start: 0, Length: 10, Data: []byte("GET /data ")},
		{Direction: DirectionReceived, Start: 0, Length: 6, Data: []byte("200 OK")},
	}

	sent := Reconstruct(100, openings, DirectionSent, DefaultSentinel)
	if len(sent.Data()) != 100 {
		t.Fatalf("expected 100 bytes, got %d", len(sent.Data()))
	}
	if !bytes.Equal(sent.Data()[:10], []byte("GET /data ")) {
		t.Errorf("disclosed prefix not reconstructed: %q", sent.Data()[:10])
	}
	if !bytes.Equal(sent.Data()[40:48], []byte("HTTP/1.1")) {
		t.Errorf("disclosed middle range not reconstructed: %q", sent.Data()[40:48])
	}
	for _, i := range []int{10, 39, 48, 99} {
		if sent.Data()[i] != DefaultSentinel {
			t.Errorf("position %d not redacted: %q", i, sent.Data()[i])
		}
	}

	// spans come back in offset order regardless of opening order
	spans := sent.Disclosed()
	if len(spans) != 2 {
		t.Fatalf("expected 2 disclosed spans, got %d", len(spans))
	}
	if spans[0] != (TranscriptRange{Start: 0, Length: 10}) || spans[1] != (TranscriptRange{Start: 40, Length: 8}) {
		t.Errorf("unexpected spans: %+v", spans)
	}

	// received openings do not bleed into the sent transcript and vice versa
	recv := Reconstruct(20, openings, DirectionReceived, DefaultSentinel)
	if !bytes.Equal(recv.Data()[:6], []byte("200 OK")) {
		t.Errorf("received range not reconstructed: %q", recv.Data()[:6])
	}
	for i := 6; i < 20; i++ {
		if recv.Data()[i] != DefaultSentinel {
			t.Errorf("received position %d not redacted", i)
		}
	}
}

func TestReconstructFullDisclosure(t *testing.T) {
	request := []byte("GET /secret HTTP/1.1")
	openings := []Opening{
		{Direction: DirectionSent, Start: 0, Length: uint32(len(request)), Data: request},
	}
	sent := Reconstruct(uint32(len(request)), openings, DirectionSent, DefaultSentinel)
	if !bytes.Equal(sent.Data(), request) {
		t.Errorf("fully disclosed transcript differs: %q", sent.Data())
	}
}

func TestReconstructFullyRedacted(t *testing.T) {
	recv := Reconstruct(30, nil, DirectionReceived, DefaultSentinel)
	if !bytes.Equal(recv.Data(), bytes.Repeat([]byte{DefaultSentinel}, 30)) {
		t.Errorf("expected all sentinel bytes, got %q", recv.Data())
	}
	if len(recv.Disclosed()) != 0 {
		t.Errorf("expected no disclosed spans, got %+v", recv.Disclosed())
	}
}

func TestReconstructZeroLengthOpening(t *testing.T) {
	openings := []Opening{
		{Direction: DirectionSent, Start: 3, Length: 0, Data: []byte{}},
	}
	sent := Reconstruct(10, openings, DirectionSent, '#')
	if !bytes.Equal(sent.Data(), bytes.Repeat([]byte{'#'}, 10)) {
		t.Errorf("zero-length opening altered transcript: %q", sent.Data())
	}
	if len(sent.Disclosed()) != 0 {
		t.Errorf("zero-length opening produced a span: %+v", sent.Disclosed())
	}
}

func TestReconstructAdjacentRanges(t *testing.T) {
	openings := []Opening{
		{Direction: DirectionSent, Start: 0, Length: 10, Data: bytes.Repeat([]byte("a"), 10)},
		{Direction: DirectionSent, Start: 10, Length: 10, Data: bytes.Repeat([]byte("b"), 10)},
	}
	sent := Reconstruct(100, openings, DirectionSent, DefaultSentinel)
	want := append(bytes.Repeat([]byte("a"), 10), bytes.Repeat([]byte("b"), 10)...)
	if !bytes.Equal(sent.Data()[:20], want) {
		t.Errorf("adjacent ranges not reconstructed: %q", sent.Data()[:20])
	}
	for i := 20; i < 100; i++ {
		if sent.Data()[i] != DefaultSentinel {
			t.Fatalf("position %d not redacted", i)
		}
	}
}
