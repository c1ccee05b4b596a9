// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package structer provides struct merging (wrapper for https://github.com/imdario/mergo) and
// a parser for "key:value;flag" modifier strings.
package structer

import (
	"strings"

	"github.com/imdario/mergo"
)

// internals
const (
	tagSeparator = ";"
	tagKeyValue  = ":"
)

// merge options.
const (
	Override = iota + 1
	OverrideWithZeroValue
)

// Merge fills the zero fields of dst with the values of src.
// Non zero fields of dst are never touched.
func Merge(dst interface{}, src interface{}) error {
	return mergo.Merge(dst, src)
}

// MergeByMap sets the fields of dst by the given map.
// By default only zero fields are set, Override and OverrideWithZeroValue can be passed.
func MergeByMap(dst interface{}, src map[string]interface{}, opts ...int) error {
	var mOpts []func(*mergo.Config)
	for _, o := range opts {
		switch o {
		case Override:
			mOpts = append(mOpts, mergo.WithOverride)
		case OverrideWithZeroValue:
			mOpts = append(mOpts, mergo.WithOverride, mergo.WithOverwriteWithEmptyValue)
		}
	}
	return mergo.Map(dst, src, mOpts...)
}

// ParseTag parses a modifier string like "length:100;nullable;default:0".
// Flags without a value are returned with an empty string.
func ParseTag(tag string) map[string]string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}

	// trailing separator
	tag = strings.TrimSuffix(tag, tagSeparator)

	values := make(map[string]string, strings.Count(tag, tagSeparator)+1)
	for _, t := range strings.Split(tag, tagSeparator) {
		kv := strings.SplitN(t, tagKeyValue, 2)
		if len(kv) != 2 {
			kv = append(kv, "")
		}
		key := strings.TrimSpace(kv[0])
		if key == "" {
			continue
		}
		values[key] = strings.TrimSpace(kv[1])
	}
	return values
}
