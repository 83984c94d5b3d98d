package stats

import (
	"math"
	"sort"
)

// Tally is a string counter that remembers first-insertion order, so ties
// keep a stable order when sorted.
type Tally struct {
	index map[string]int
	keys  []string
	vals  []int64
}

// Add increments key by n.
func (t *Tally) Add(key string, n int64) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	i, ok := t.index[key]
	if !ok {
		i = len(t.keys)
		t.index[key] = i
		t.keys = append(t.keys, key)
		t.vals = append(t.vals, 0)
	}
	t.vals[i] += n
}

// Get returns the count for key.
func (t *Tally) Get(key string) int64 {
	if i, ok := t.index[key]; ok {
		return t.vals[i]
	}
	return 0
}

// Len returns the number of distinct keys.
func (t *Tally) Len() int { return len(t.keys) }

// Total returns the sum of all counts.
func (t *Tally) Total() int64 {
	var sum int64
	for _, v := range t.vals {
		sum += v
	}
	return sum
}

// Entry is one key with its count.
type Entry struct {
	Key   string
	Count int64
}

// Sorted returns the entries by count descending; equal counts keep
// insertion order.
func (t *Tally) Sorted() []Entry {
	out := make([]Entry, len(t.keys))
	for i, k := range t.keys {
		out[i] = Entry{Key: k, Count: t.vals[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Percent returns part/whole*100 rounded half away from zero.
func Percent(part, whole int64) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
