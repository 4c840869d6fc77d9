package record

import (
	"strings"
	"time"

	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
)

// Record is a catalog entry (immutable value object).
type Record struct {
	identity   string
	source     string
	fields     field.Set
	extras     map[string]string
	ingestedAt time.Time
}

// Assemble merges normalized fields into a record. The identity key is opaque
// and stored as given; re-assembling under the same key is an update.
func Assemble(identity string, fields field.Set, ingestedAt time.Time) Record {
	return Record{
		identity:   identity,
		source:     identity,
		fields:     fields.Clone(),
		ingestedAt: ingestedAt,
	}
}

// Reconstruct creates a Record without copying (storage hydration).
func Reconstruct(
	identity, source string, fields field.Set, extras map[string]string, ingestedAt time.Time,
) Record {
	return Record{identity: identity, source: source, fields: fields, extras: extras, ingestedAt: ingestedAt}
}

// IdentityFromPath derives the identity key from a source path: the file name
// including its extension. Both slash styles are accepted. A path ending in a
// separator names a directory and yields "".
func IdentityFromPath(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return path
}

// Identity returns the deterministic record key.
func (r Record) Identity() string { return r.identity }

// Source returns the source file name.
func (r Record) Source() string { return r.source }

// Fields returns a copy of the canonical field set.
func (r Record) Fields() field.Set { return r.fields.Clone() }

// Extras returns a copy of the attributes of categories outside the canonical set.
func (r Record) Extras() map[string]string { return cloneStringMap(r.extras) }

// IngestedAt returns the ingestion timestamp.
func (r Record) IngestedAt() time.Time { return r.ingestedAt }

// WithExtras returns a copy carrying a private copy of extras.
func (r Record) WithExtras(extras map[string]string) Record {
	r.extras = cloneStringMap(extras)
	return r
}

func cloneStringMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
