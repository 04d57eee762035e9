/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package json provides helpers for JSON objects represented as maps.
package json

import (
	"encoding/json"

	"golang.org/x/exp/slices"
)

// MarshalWithCustomFields marshals value v merged with custom fields cf into JSON bytes.
func MarshalWithCustomFields(v interface{}, cf map[string]interface{}) ([]byte, error) {
	vm, err := MergeCustomFields(v, cf)
	if err != nil {
		return nil, err
	}

	return json.Marshal(vm)
}

// UnmarshalWithCustomFields unmarshals JSON into value v and collects all JSON fields
// which do not belong to value into the custom fields map cf.
func UnmarshalWithCustomFields(data []byte, v interface{}, cf map[string]interface{}) error {
	err := json.Unmarshal(data, v)
	if err != nil {
		return err
	}

	vData, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var vf map[string]interface{}

	err = json.Unmarshal(vData, &vf)
	if err != nil {
		return err
	}

	var af map[string]interface{}

	err = json.Unmarshal(data, &af)
	if err != nil {
		return err
	}

	// Keep only the entries that do not belong to the value.
	for k, v := range af {
		if _, ok := vf[k]; !ok {
			cf[k] = v
		}
	}

	return nil
}

// MergeCustomFields converts value v to a JSON-like map and merges it with the custom
// fields map cf. Fields of v win on name collision.
func MergeCustomFields(v interface{}, cf map[string]interface{}) (map[string]interface{}, error) {
	vm, err := ToMap(v)
	if err != nil {
		return nil, err
	}

	for k, v := range cf {
		if _, exists := vm[k]; !exists {
			vm[k] = v
		}
	}

	return vm, nil
}

// AddCustomFields adds entries of cf to obj, skipping names already present in obj.
func AddCustomFields(obj, cf map[string]interface{}) {
	for k, v := range cf {
		if _, exists := obj[k]; !exists {
			obj[k] = v
		}
	}
}

// SplitJSONObj splits obj into the object holding only the given fields and the
// object holding the rest.
func SplitJSONObj(obj map[string]interface{}, fields ...string) (map[string]interface{}, map[string]interface{}) {
	selected := make(map[string]interface{})
	rest := make(map[string]interface{})

	for k, v := range obj {
		if slices.Contains(fields, k) {
			selected[k] = v
		} else {
			rest[k] = v
		}
	}

	return selected, rest
}

// ShallowCopyObj creates a new JSON object with fields copied from obj.
func ShallowCopyObj(obj map[string]interface{}) map[string]interface{} {
	copied := make(map[string]interface{}, len(obj))

	for k, v := range obj {
		copied[k] = v
	}

	return copied
}

// CopyMap performs a deep copy of obj, descending into nested JSON objects.
func CopyMap(obj map[string]interface{}) map[string]interface{} {
	copied := make(map[string]interface{}, len(obj))

	for k, v := range obj {
		if vm, ok := v.(map[string]interface{}); ok {
			copied[k] = CopyMap(vm)
		} else {
			copied[k] = v
		}
	}

	return copied
}

// CopyExcept copies all fields of obj except those with the given names.
func CopyExcept(obj map[string]interface{}, fields ...string) map[string]interface{} {
	copied := ShallowCopyObj(obj)

	for _, field := range fields {
		delete(copied, field)
	}

	return copied
}

// Select copies only the fields of obj with the given names.
func Select(obj map[string]interface{}, fields ...string) map[string]interface{} {
	selected := map[string]interface{}{}

	for _, field := range fields {
		if v, ok := obj[field]; ok {
			selected[field] = v
		}
	}

	return selected
}

// ToMap converts a struct, string or JSON bytes to a JSON object represented by a map.
func ToMap(v interface{}) (map[string]interface{}, error) {
	var (
		b   []byte
		err error
	)

	switch cv := v.(type) {
	case []byte:
		b = cv
	case string:
		b = []byte(cv)
	default:
		b, err = json.Marshal(v)
		if err != nil {
			return nil, err
		}
	}

	var m map[string]interface{}

	err = json.Unmarshal(b, &m)
	if err != nil {
		return nil, err
	}

	return m, nil
}
