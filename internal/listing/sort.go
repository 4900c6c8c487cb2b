package listing

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort returns a stably ordered copy of records. Records without a value for
// the sort field go last in both directions. Unknown fields leave the order as is.
func Sort[T Filterable](records []T, spec SortSpec, schema Schema) []T {
	out := make([]T, len(records))
	copy(out, records)

	field, ok := schema.sortField(spec.Field)
	if !ok {
		return out
	}
	desc := spec.Direction == Desc

	// a Collator keeps internal buffers, so each call gets its own
	col := collate.New(language.English)

	slices.SortStableFunc(out, func(a, b T) int {
		var c int
		var aOK, bOK bool
		switch field.Kind {
		case SortNumber:
			var av, bv float64
			av, aOK = a.Numeric(field.Name)
			bv, bOK = b.Numeric(field.Name)
			c = cmp.Compare(av, bv)
		case SortTime:
			at, okA := a.Timestamp(field.Name)
			bt, okB := b.Timestamp(field.Name)
			aOK, bOK = okA, okB
			c = at.Compare(bt)
		default:
			as, okA := a.Attribute(field.Name)
			bs, okB := b.Attribute(field.Name)
			aOK, bOK = okA, okB
			c = col.CompareString(as, bs)
		}
		switch {
		case !aOK && !bOK:
			return 0
		case !aOK:
			return 1
		case !bOK:
			return -1
		}
		if desc {
			return -c
		}
		return c
	})
	return out
}
