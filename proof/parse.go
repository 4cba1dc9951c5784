package proof

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func proofSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(tlsProofSchema))
	})
	return compiledSchema, schemaErr
}

// ParseTlsProof deserializes a proof artifact, validating it against the
// artifact schema first so malformed input is rejected before any
// cryptographic step runs.
func ParseTlsProof(data []byte) (*TlsProof, error) {
	schema, err := proofSchema()
	if err != nil {
		return nil, wrapError(KindMalformedProof, "cannot compile artifact schema", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, wrapError(KindMalformedProof, "proof artifact is not valid JSON", err)
	}
	if !result.Valid() {
		var b strings.Builder
		for i, desc := range result.Errors() {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(desc.String())
		}
		return nil, newError(KindMalformedProof, "proof artifact does not match schema: "+b.String())
	}

	var p TlsProof
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, wrapError(KindMalformedProof, "cannot decode proof artifact", err)
	}
	return &p, nil
}
