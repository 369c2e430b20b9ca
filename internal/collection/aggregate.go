package collection

import (
	"fmt"
	"sort"

	"mtgcollections/internal/types"
)

// Bucket counts occurrences per distinct card name for one language.
type Bucket map[string]int

// Aggregate partitions c by language and counts names in one pass.
// Every supported language gets a bucket, even when it is empty.
func Aggregate(c types.Collection) map[types.Language]Bucket {
	buckets := make(map[types.Language]Bucket, len(types.Languages()))
	for _, lang := range types.Languages() {
		buckets[lang] = Bucket{}
	}
	for _, card := range c.Cards {
		b, ok := buckets[card.Language]
		if !ok {
			// Cards only enter a collection through validated parsing, so
			// this is an unknown language from a hand-built collection.
			b = Bucket{}
			buckets[card.Language] = b
		}
		b[card.Name]++
	}
	return buckets
}

// Names returns the distinct names in ascending byte order.
func (b Bucket) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lines renders the bucket as "<count>x <name>" lines sorted by name.
func (b Bucket) Lines() []string {
	names := b.Names()
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%dx %s", b[name], name)
	}
	return lines
}

// Total returns the number of observations in the bucket.
func (b Bucket) Total() int {
	n := 0
	for _, count := range b {
		n += count
	}
	return n
}
