// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package structer_test

import (
	"testing"

	"github.com/patrickascher/sqlkit/structer"
	"github.com/stretchr/testify/assert"
)

// TestMerge tests the mergo.Merge wrapper.
func TestMerge(t *testing.T) {
	asserts := assert.New(t)

	type Retry struct {
		Attempts int
		Delay    int
	}

	defaults := Retry{Attempts: 3, Delay: 300}
	dst := Retry{Attempts: 5}

	err := structer.Merge(&dst, defaults)
	asserts.NoError(err)
	asserts.Equal(Retry{Attempts: 5, Delay: 300}, dst)
}

// TestMergeByMap tests the mergo.Map wrapper.
func TestMergeByMap(t *testing.T) {
	asserts := assert.New(t)

	type Foo struct {
		A string
		B int
	}

	dst := Foo{A: "two"}

	// zero fields only
	err := structer.MergeByMap(&dst, map[string]interface{}{"A": "three", "B": 5})
	asserts.NoError(err)
	asserts.Equal(Foo{A: "two", B: 5}, dst)

	// override with none zero value.
	err = structer.MergeByMap(&dst, map[string]interface{}{"A": "three", "B": 6}, structer.Override)
	asserts.NoError(err)
	asserts.Equal(Foo{A: "three", B: 6}, dst)

	// override with zero value.
	err = structer.MergeByMap(&dst, map[string]interface{}{"A": "three", "B": 0}, structer.OverrideWithZeroValue)
	asserts.NoError(err)
	asserts.Equal(Foo{A: "three", B: 0}, dst)
}

func TestParseTag(t *testing.T) {
	asserts := assert.New(t)

	asserts.Equal(map[string]string(nil), structer.ParseTag(" "))
	asserts.Equal(map[string]string{"nullable": ""}, structer.ParseTag(" nullable "))
	asserts.Equal(map[string]string{"nullable": ""}, structer.ParseTag(" nullable; "))
	asserts.Equal(map[string]string{"nullable": "", "length": "100", "default": "a:b"}, structer.ParseTag("nullable; length: 100;default:a:b;;"))
}
