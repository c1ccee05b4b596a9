// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package slicer provides slice helpers for strings and key values.
package slicer

import (
	"fmt"
	"strings"
)

// InterfaceExists checks if the given interface exists in a slice.
// If it exists, a the position and a boolean `true` will return
func InterfaceExists(slice []interface{}, search interface{}) (int, bool) {
	for i, s := range slice {
		if s == search {
			return i, true
		}
	}
	return 0, false
}

// StringPrefixExists checks if the given prefix exists in the string slice.
// If it exists, a slice with all matched results will return.
func StringPrefixExists(slice []string, search string) []string {
	var rv []string
	for _, s := range slice {
		if strings.HasPrefix(s, search) {
			rv = append(rv, s)
		}
	}
	return rv
}

// StringExists checks if the given string exists in the string slice.
// If it exists, the position and a boolean `true` will return
func StringExists(slice []string, search string) (int, bool) {
	for i, s := range slice {
		if s == search {
			return i, true
		}
	}
	return 0, false
}

// StringUnique will unique all strings in the given slice.
func StringUnique(slice []string) []string {
	keys := make(map[string]bool)
	list := []string{}
	for _, entry := range slice {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}

// Key normalizes a key value, so that int64(1), 1 and "1" are equal.
// []byte values are converted to string first.
func Key(v interface{}) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

// KeyUnique returns all values with a unique normalized key, in the given order.
// nil values are skipped.
func KeyUnique(slice []interface{}) []interface{} {
	keys := make(map[string]bool, len(slice))
	list := []interface{}{}
	for _, v := range slice {
		if v == nil {
			continue
		}
		if k := Key(v); !keys[k] {
			keys[k] = true
			list = append(list, v)
		}
	}
	return list
}

// KeyDiff returns all values of a whose normalized key does not exist in b.
func KeyDiff(a []interface{}, b []interface{}) []interface{} {
	keys := make(map[string]bool, len(b))
	for _, v := range b {
		keys[Key(v)] = true
	}
	var rv []interface{}
	for _, v := range a {
		if !keys[Key(v)] {
			rv = append(rv, v)
		}
	}
	return rv
}

// KeyIntersect returns all values of a whose normalized key exists in b.
func KeyIntersect(a []interface{}, b []interface{}) []interface{} {
	keys := make(map[string]bool, len(b))
	for _, v := range b {
		keys[Key(v)] = true
	}
	var rv []interface{}
	for _, v := range a {
		if keys[Key(v)] {
			rv = append(rv, v)
		}
	}
	return rv
}
