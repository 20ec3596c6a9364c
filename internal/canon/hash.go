package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainCompiled separates compiled-query keys from any other hash over
// the same bytes. The version suffix changes when the key inputs do.
const DomainCompiled = "luxql/compiled/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QueryKey computes the cache key of a compiled query: the entry point
// (search, count, facet, ...), the scope, the query document and any
// parameters that change the output (limit, sort, facet predicate).
func QueryKey(kind, scope string, query map[string]any, params map[string]any) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	canonical, err := MarshalCanonical(map[string]any{
		"kind":   kind,
		"scope":  scope,
		"query":  query,
		"params": params,
	})
	if err != nil {
		return "", fmt.Errorf("QueryKey: %w", err)
	}
	return hashWithDomain(DomainCompiled, canonical), nil
}
