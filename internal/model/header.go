package model

import (
	"sort"
	"strings"
)

// Field is a single header line as it appears on the wire.
type Field struct {
	Name  string
	Value string
}

type headerEntry struct {
	name   string // casing of the first insertion, echoed back on the wire
	values []string
}

// Header is an ordered header mapping with case-insensitive names.
// Entries are unique by lower-cased name and keep the casing they were
// first set with. The zero value is an empty header ready to use.
type Header struct {
	keys    []string // lower-cased names, insertion order
	entries map[string]*headerEntry
}

// NewHeader builds a Header from a plain mapping. Go maps carry no order,
// so names are inserted sorted to keep the wire form deterministic.
func NewHeader(m map[string]string) *Header {
	h := &Header{}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		h.Set(k, m[k])
	}
	return h
}

// HeaderOf builds a Header from wire fields, keeping their order.
// Repeated names are folded into one entry with several values.
func HeaderOf(fields ...Field) *Header {
	h := &Header{}
	for _, f := range fields {
		h.Add(f.Name, f.Value)
	}
	return h
}

func canonical(name string) string {
	return strings.ToLower(name)
}

func (h *Header) lookup(name string) *headerEntry {
	if h == nil || h.entries == nil {
		return nil
	}
	return h.entries[canonical(name)]
}

// Get returns the first value for name, or "" when absent.
func (h *Header) Get(name string) string {
	if e := h.lookup(name); e != nil && len(e.values) > 0 {
		return e.values[0]
	}
	return ""
}

// Values returns every value set for name.
func (h *Header) Values(name string) []string {
	if e := h.lookup(name); e != nil {
		return append([]string(nil), e.values...)
	}
	return nil
}

func (h *Header) Has(name string) bool {
	return h.lookup(name) != nil
}

// Set replaces all values of name. An existing entry keeps its position and
// its original casing.
func (h *Header) Set(name, value string) {
	if e := h.lookup(name); e != nil {
		e.values = []string{value}
		return
	}
	h.insert(name, value)
}

// Add appends value to the entry for name.
func (h *Header) Add(name, value string) {
	if e := h.lookup(name); e != nil {
		e.values = append(e.values, value)
		return
	}
	h.insert(name, value)
}

func (h *Header) insert(name, value string) {
	if h.entries == nil {
		h.entries = map[string]*headerEntry{}
	}
	key := canonical(name)
	h.keys = append(h.keys, key)
	h.entries[key] = &headerEntry{name: name, values: []string{value}}
}

func (h *Header) Del(name string) {
	if h.lookup(name) == nil {
		return
	}
	key := canonical(name)
	delete(h.entries, key)
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i:i], h.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of distinct names.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.keys)
}

// Each calls fn for every name/value pair in wire order.
func (h *Header) Each(fn func(name, value string)) {
	if h == nil {
		return
	}
	for _, k := range h.keys {
		e := h.entries[k]
		for _, v := range e.values {
			fn(e.name, v)
		}
	}
}

// Fields flattens the header to its wire form.
func (h *Header) Fields() []Field {
	fields := make([]Field, 0, h.Len())
	h.Each(func(name, value string) {
		fields = append(fields, Field{name, value})
	})
	return fields
}

// Map flattens the header to a plain mapping keyed by original casing,
// joining repeated values with ", ".
func (h *Header) Map() map[string]string {
	m := make(map[string]string, h.Len())
	if h == nil {
		return m
	}
	for _, k := range h.keys {
		e := h.entries[k]
		m[e.name] = strings.Join(e.values, ", ")
	}
	return m
}

func (h *Header) Clone() *Header {
	c := &Header{}
	h.Each(c.Add)
	return c
}
