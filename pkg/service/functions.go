package service

import (
	"bytes"
	"encoding/json"
)

// Functions is the service's function map, kept in declaration order.
type Functions struct {
	keys    []string
	entries map[string]any
}

func NewFunctions() *Functions {
	return &Functions{entries: make(map[string]any)}
}

// Set adds or replaces the function under key. New keys are appended to the order.
func (f *Functions) Set(key string, fn any) {
	if _, ok := f.entries[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.entries[key] = fn
}

func (f *Functions) Get(key string) (any, bool) {
	fn, ok := f.entries[key]
	return fn, ok
}

func (f *Functions) Keys() []string {
	keys := make([]string, len(f.keys))
	copy(keys, f.keys)
	return keys
}

func (f *Functions) Len() int {
	return len(f.keys)
}

func (f *Functions) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte('{')
	for i, key := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.entries[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
