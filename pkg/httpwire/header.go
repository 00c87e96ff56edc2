package httpwire

import (
	"strings"
)

// Header is an insertion-ordered header map.
//
// Keys are case-sensitive and a repeated Set replaces the earlier value while
// keeping its original position. The zero value is ready to use.
type Header struct {
	keys   []string
	values map[string]string
}

// Set stores value under key, replacing any previous value.
func (h *Header) Set(key, value string) {
	if h.values == nil {
		h.values = make(map[string]string)
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Get returns the value stored under key, or "" if absent.
func (h *Header) Get(key string) string {
	return h.values[key]
}

// Lookup returns the value stored under key and whether it was present.
func (h *Header) Lookup(key string) (string, bool) {
	v, ok := h.values[key]
	return v, ok
}

// LookupFold is Lookup with ASCII case-insensitive key matching. When several
// keys fold to the same name the most recently inserted one wins.
func (h *Header) LookupFold(key string) (string, bool) {
	if v, ok := h.values[key]; ok {
		return v, true
	}
	for i := len(h.keys) - 1; i >= 0; i-- {
		if strings.EqualFold(h.keys[i], key) {
			return h.values[h.keys[i]], true
		}
	}
	return "", false
}

// Del removes key.
func (h *Header) Del(key string) {
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of distinct keys.
func (h *Header) Len() int {
	return len(h.keys)
}

// Each calls fn for every entry in insertion order.
func (h *Header) Each(fn func(key, value string)) {
	for _, k := range h.keys {
		fn(k, h.values[k])
	}
}
