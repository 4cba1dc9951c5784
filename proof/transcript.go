package proof

// DefaultSentinel is the byte written at every non-disclosed transcript
// position.
const DefaultSentinel = byte('X')

// TranscriptRange is one contiguous disclosed span of a reconstructed
// transcript.
type TranscriptRange struct {
	Start  uint32 `json:"start"`
	Length uint32 `json:"length"`
}

// RedactedTranscript is one direction of the reconstructed transcript:
// exactly the committed length, with disclosed positions carrying original
// bytes and every other position the sentinel.
type RedactedTranscript struct {
	data      []byte
	disclosed []TranscriptRange
}

// Data returns the reconstructed bytes.
func (t *RedactedTranscript) Data() []byte {
	return t.data
}

// Disclosed returns the spans populated from disclosed data, in offset
// order.
func (t *RedactedTranscript) Disclosed() []TranscriptRange {
	return t.disclosed
}

// Reconstruct merges validated openings for one direction into a
// transcript of the committed total length, filling non-disclosed
// positions with the sentinel. It performs no cryptographic checks and
// must only be called with openings returned by SubstringsProof.Verify.
func Reconstruct(total uint32, openings []Opening, dir Direction, sentinel byte) *RedactedTranscript {
	data := make([]byte, total)
	for i := range data {
		data[i] = sentinel
	}

	var disclosed []TranscriptRange
	for _, o := range openings {
		if o.Direction != dir || o.Length == 0 {
			continue
		}
		copy(data[o.Start:o.End()], o.Data)
		disclosed = append(disclosed, TranscriptRange{Start: o.Start, Length: o.Length})
	}

	// keep spans in offset order regardless of opening order
	for i := 1; i < len(disclosed); i++ {
		for j := i; j > 0 && disclosed[j-1].Start > disclosed[j].Start; j-- {
			disclosed[j-1], disclosed[j] = disclosed[j], disclosed[j-1]
		}
	}

	return &RedactedTranscript{data: data, disclosed: disclosed}
}
