package timetable

import "golang.org/x/exp/constraints"

// buildCSR flattens a per-bucket slice-of-slices into the Compressed
// Sparse Row layout every table in this package shares: a contiguous
// entries slice plus an offsets slice where offsets[b+1]-offsets[b]
// gives bucket b's entry count. This generalizes the teacher's
// compressed_sparse_row.go SparseMatrix — there, row/col/val arrays
// addressed by a generic numeric value type — to an entry type that is
// itself a whole record (RoutePoint, Connection, FootPath, TripIdx),
// with the offset width left generic so callers never need to convert.
func buildCSR[Off constraints.Integer, T any](perBucket [][]T) (entries []T, offsets []Off) {
	offsets = make([]Off, len(perBucket)+1)
	total := Off(0)
	n := 0
	for _, items := range perBucket {
		n += len(items)
	}
	entries = make([]T, 0, n)
	for b, items := range perBucket {
		offsets[b] = total
		entries = append(entries, items...)
		total += Off(len(items))
	}
	offsets[len(perBucket)] = total
	return entries, offsets
}
