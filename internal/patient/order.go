package patient

import "sort"

// SortNewestFirst puts records in canonical list order: createdAt descending,
// ties (and legacy rows without a timestamp) broken by id descending.
func SortNewestFirst(list []*Patient) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
