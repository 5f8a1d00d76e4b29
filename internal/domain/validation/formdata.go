package validation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// FormData is the submitted clinical form payload. Shapes vary per form
// type, so rules read individual fields through typed accessors instead
// of scattering raw map access through the evaluator.
type FormData map[string]interface{}

// Has reports whether the field is present and non-nil.
func (f FormData) Has(field string) bool {
	v, ok := f[field]
	return ok && v != nil
}

// GetString returns the field as a string if present.
func (f FormData) GetString(field string) (string, bool) {
	v, ok := f[field]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IsEmpty reports whether the form carries no data at all.
func (f FormData) IsEmpty() bool {
	return len(f) == 0
}

// Clone returns an independent shallow copy so concurrent runs never
// share a mutable payload.
func (f FormData) Clone() FormData {
	if f == nil {
		return nil
	}
	out := make(FormData, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// MissingFields returns the subset of fields absent from the form, in
// the order given.
func (f FormData) MissingFields(fields []string) []string {
	var missing []string
	for _, field := range fields {
		if !f.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Fingerprint produces a stable content hash over the form data and the
// validation context. Used as the result cache key, scoped by catalog
// version so a standards bump invalidates prior entries.
func Fingerprint(form FormData, formType, scope, catalogVersion string) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(formType)
	b.WriteByte('|')
	b.WriteString(scope)
	b.WriteByte('|')
	b.WriteString(catalogVersion)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		// json encoding gives a canonical form for nested values
		enc, err := json.Marshal(form[k])
		if err != nil {
			b.WriteString("!unencodable")
			continue
		}
		b.Write(enc)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
