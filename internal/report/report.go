package report

import (
	"sort"

	"wordfreq/internal/counter"
)

type WordCount = counter.Entry[string]

// Sort orders entries by count descending, then word ascending.
func Sort(entries []WordCount) []WordCount {
	out := append([]WordCount(nil), entries...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Top returns the n most frequent entries.
func Top(entries []WordCount, n int) []WordCount {
	if n <= 0 {
		return nil
	}
	sorted := Sort(entries)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Bottom returns the n least frequent entries, count ascending then word
// ascending. It may overlap Top when there are fewer than 2n entries.
func Bottom(entries []WordCount, n int) []WordCount {
	if n <= 0 {
		return nil
	}
	out := append([]WordCount(nil), entries...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}
