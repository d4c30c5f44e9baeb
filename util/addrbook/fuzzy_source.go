package addrbook

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

type fuzzySource []Entry

func (fs fuzzySource) Len() int {
	return len(fs)
}

func (fs fuzzySource) String(i int) string {
	return fmt.Sprintf("%s_%s", strings.Replace(fs[i].Name, " ", "_", -1), fs[i].Address)
}

// Suggest returns up to n entries whose name or address fuzzily match
// input, best match first.
func (b *Book) Suggest(input string, n int) []Entry {
	input = strings.TrimSpace(input)
	if input == "" || n <= 0 {
		return nil
	}
	b.mu.RLock()
	source := make(fuzzySource, len(b.entries))
	copy(source, b.entries)
	b.mu.RUnlock()
	// stable order so equal scores come back deterministically
	sort.Slice(source, func(i, j int) bool {
		return source[i].Name < source[j].Name
	})
	matches := fuzzy.FindFrom(strings.Replace(input, " ", "_", -1), source)
	result := []Entry{}
	for i := 0; i < n && i < len(matches); i++ {
		result = append(result, source[matches[i].Index])
	}
	return result
}
