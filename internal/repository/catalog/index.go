package catalog

import (
	"github.com/kailas-cloud/specdex/internal/db"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
)

// DefaultKeyPrefix is the Redis key prefix of catalog records.
const DefaultKeyPrefix = "specdex:rec:"

// tagSeparator keeps commas and spaces inside one tag ("15,6", "Intel Core i7").
const tagSeparator = "|"

// buildIndex creates the JSON index over all canonical fields.
// Integer fields are NUMERIC, the rest TAG so equality matches the exact value.
func buildIndex(name, prefix string) *db.IndexDefinition {
	b := db.NewIndex(name).
		OnJSON().
		Prefix(prefix).
		TagWithOpts("$.id", tagSeparator, true).As(attrID).Sortable()

	for _, n := range field.All() {
		path := "$." + string(n)
		switch n.Kind() {
		case field.Integer:
			b.Numeric(path).As(string(n))
		default:
			b.TagWithOpts(path, tagSeparator, true).As(string(n))
		}
	}

	return b.Numeric("$." + attrIngestedAt).As(attrIngestedAt).MustBuild()
}
