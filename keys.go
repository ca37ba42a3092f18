package contentstore

// Key layout in the backing store.
//
//	<kind>:<id>                primary record (JSON document)
//	<kind>s:all                id set of every record of the kind
//	<kind>s:category:<id>      ids of records referencing the category
//	<kind>s:tag:<id>           ids of records referencing the tag
//	<kind>s:published          ids of published records
//	<kind>s:car:<id>           rental ids for a car
//	<kind>s:rental:<id>        invoice ids for a rental
//	<kind>s:status:<s>         ids of records in a lifecycle state
//
// Index sets are derived state with no lifecycle of their own: only the
// Indexer writes them, and any of them can be rebuilt from the primary
// records.

func primaryKey(kind, id string) string {
	return kind + ":" + id
}

func allKey(kind string) string {
	return kind + "s:all"
}

func categoryKey(kind, categoryID string) string {
	return kind + "s:category:" + categoryID
}

func tagKey(kind, tagID string) string {
	return kind + "s:tag:" + tagID
}

func publishedKey(kind string) string {
	return kind + "s:published"
}

func carKey(kind, carID string) string {
	return kind + "s:car:" + carID
}

func rentalKey(kind, rentalID string) string {
	return kind + "s:rental:" + rentalID
}

func statusKey(kind, status string) string {
	return kind + "s:status:" + status
}

func availableKey(kind string) string {
	return kind + "s:available"
}
