package repositories

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"freshfetch/models"
)

// NewMemoryStore backs DB_DRIVER=memory and the service and controller tests.
func NewMemoryStore() *Store {
	return &Store{
		Products: NewMemoryProductRepository(),
		Orders:   NewMemoryOrderRepository(),
		Users:    NewMemoryUserRepository(),
		Close:    func() {},
	}
}

// cloneDoc deep-copies a document through its JSON form, the same shape the other backends store.
func cloneDoc[T any](src *T) *T {
	raw, err := json.Marshal(src)
	if err != nil {
		panic(err)
	}
	var dst T
	if err := json.Unmarshal(raw, &dst); err != nil {
		panic(err)
	}
	return &dst
}

// mergeFields applies a partial update the way a top-level $set or jsonb || does.
func mergeFields[T any](doc *T, fields models.Fields) (*T, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, err
	}
	for k, v := range fields {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = encoded
	}
	raw, err = json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func containsFold(pattern *regexp.Regexp, values ...string) bool {
	for _, v := range values {
		if pattern.MatchString(v) {
			return true
		}
	}
	return false
}

func compileSearch(search string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(strings.TrimSpace(search)))
}

func paginate[T any](items []T, page models.Page) []T {
	page = page.Normalize()
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortNewestFirst[T any](items []T, created func(T) int64, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if ci != cj {
			return ci > cj
		}
		return id(items[i]) > id(items[j])
	})
}
