package proof

// tlsProofSchema is the structural contract for the serialized proof
// artifact. Unknown fields are allowed for forward compatibility; missing
// or mistyped required fields are rejected before any cryptographic step
// runs.
const tlsProofSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["session", "substrings"],
  "properties": {
    "session": {
      "type": "object",
      "required": ["header", "signature", "session_info"],
      "properties": {
        "header": {
          "type": "object",
          "required": ["version", "merkle_root", "sent_len", "recv_len", "time", "handshake_commitment", "nonce"],
          "properties": {
            "version": {"type": "integer", "minimum": 0},
            "merkle_root": {"type": "string"},
            "sent_len": {"type": "integer", "minimum": 0},
            "recv_len": {"type": "integer", "minimum": 0},
            "time": {"type": "integer", "minimum": 0},
            "handshake_commitment": {"type": "string"},
            "nonce": {"type": "string"}
          }
        },
        "signature": {
          "type": "object",
          "required": ["algorithm", "data"],
          "properties": {
            "algorithm": {"type": "string"},
            "data": {"type": "string"}
          }
        },
        "session_info": {
          "type": "object",
          "required": ["server_name", "handshake"],
          "properties": {
            "server_name": {"type": "string"},
            "handshake": {
              "type": "object",
              "required": ["cert_chain"],
              "properties": {
                "cert_chain": {"type": "array", "items": {"type": "string"}},
                "client_random": {"type": ["string", "null"]},
                "server_random": {"type": ["string", "null"]}
              }
            }
          }
        }
      }
    },
    "substrings": {
      "type": "object",
      "required": ["openings"],
      "properties": {
        "openings": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["direction", "start", "length", "data", "blinder", "leaf_index", "path"],
            "properties": {
              "direction": {"enum": ["sent", "received"]},
              "start": {"type": "integer", "minimum": 0},
              "length": {"type": "integer", "minimum": 0},
              "data": {"type": ["string", "null"]},
              "blinder": {"type": "string"},
              "leaf_index": {"type": "integer", "minimum": 0},
              "path": {"type": "array", "items": {"type": "string"}}
            }
          }
        }
      }
    }
  }
}`
