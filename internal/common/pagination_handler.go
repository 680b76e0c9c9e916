//nolint:revive
package common

import "sort"

// PagedResult represents a paginated response containing a cursor for the next page
type PagedResult struct {
	Cursor string `json:"cursor"`
	Result any    `json:"result"`
}

// PageByID pages over an id-sorted slice using the id itself as cursor.
// ids must be sorted ascending. It returns the ids for the page and the cursor
// for the next page, empty when the last page was reached.
func PageByID(ids []string, limit int32, cursor string) ([]string, string) {
	start := 0
	if cursor != "" {
		start = sort.Search(len(ids), func(i int) bool { return ids[i] > cursor })
	}

	if limit <= 0 || start+int(limit) >= len(ids) {
		return ids[start:], ""
	}

	end := start + int(limit)
	return ids[start:end], ids[end-1]
}
