// Package canonical provides the deterministic JSON serialization used to
// compute integrity hashes for tool arguments throughout the runtime.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Canonicalize produces a deterministic JSON representation of v: object
// keys sorted lexicographically at every nesting level, no insignificant
// whitespace, UTF-8 bytes. It is the sole source of truth for "canonical
// args" used in integrity hashing — RiskGate and Executor must each call it
// independently and compare results rather than trust a caller-supplied
// string.
func Canonicalize(v any) (string, error) {
	normalized, err := normalize(v)
	if err != nil {
		return "", fmt.Errorf("canonical: normalize: %w", err)
	}

	var buf bytes.Buffer
	if err := encode(&buf, normalized); err != nil {
		return "", fmt.Errorf("canonical: encode: %w", err)
	}
	return buf.String(), nil
}

// Hash returns the hex-encoded SHA-256 digest of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CanonicalizeAndHash is a convenience wrapper returning both the canonical
// form and its hash in one call, matching how Executor and RiskGate each
// compute both fields independently.
func CanonicalizeAndHash(v any) (canonicalArgs string, argsHash string, err error) {
	canonicalArgs, err = Canonicalize(v)
	if err != nil {
		return "", "", err
	}
	return canonicalArgs, Hash(canonicalArgs), nil
}

// normalize round-trips v through encoding/json so that arbitrary Go values
// (structs, maps with non-string-keyed-but-JSON-marshalable types, etc.)
// collapse to the same plain map[string]any / []any / scalar shape that
// map[string]any args arrive in from a parsed LLM tool call.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func encode(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(val.String())
	case string:
		encoded, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			if err := encode(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("canonical: unsupported normalized type %T", v)
	}
	return nil
}
