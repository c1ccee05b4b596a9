// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry provides a process wide container for named values.
// Grammars, connection openers, loggers and config providers register themselves here,
// mostly from the init function of their package.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Error messages
var (
	ErrUnknownEntry       = errors.New("registry: unknown registry name")
	ErrMandatoryArguments = errors.New("registry: one or more arguments have a zero-value")
	ErrAlreadyExists      = errors.New("registry: name is already registered")
)

var (
	mu        sync.RWMutex
	registry  = make(map[string]interface{})
	validator []Validate
)

// Validate defines a prefix and custom function which will be called before a value with
// a matching name prefix is added to the registry.
// The custom function will receive the registry name and registry value as arguments.
type Validate struct {
	Prefix string
	Fn     func(string, interface{}) error
}

// Validator adds a custom validation function for the given prefix.
// Only one validator per prefix is allowed.
func Validator(validate Validate) error {
	if validate.Prefix == "" || validate.Fn == nil {
		return ErrMandatoryArguments
	}

	mu.Lock()
	defer mu.Unlock()
	if hasValidator(validate.Prefix) != nil {
		return fmt.Errorf("%w: validator prefix %v", ErrAlreadyExists, validate.Prefix)
	}
	validator = append(validator, validate)
	return nil
}

// hasValidator returns the validator which prefix matches the name.
func hasValidator(name string) *Validate {
	for _, v := range validator {
		if strings.HasPrefix(name, v.Prefix) {
			v := v
			return &v
		}
	}
	return nil
}

// Set a value by name.
// The name and value argument must have a non-zero value, and the registered name must be unique.
// If a validator is registered, and the name matches its prefix, the value gets checked before it is added.
func Set(name string, value interface{}) error {
	if value == nil || name == "" {
		return ErrMandatoryArguments
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("%w: %v", ErrAlreadyExists, name)
	}

	if validator := hasValidator(name); validator != nil {
		if err := validator.Fn(name, value); err != nil {
			return fmt.Errorf("registry: %w", err)
		}
	}

	registry[name] = value
	return nil
}

// Get returns the value by the registered name.
// If the registry name does not exist, an error will return.
func Get(name string) (interface{}, error) {
	mu.RLock()
	defer mu.RUnlock()
	value, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %#v, maybe you forgot to set it", ErrUnknownEntry, name)
	}
	return value, nil
}

// Prefix returns all entries which name starts with the given prefix.
func Prefix(prefix string) map[string]interface{} {
	mu.RLock()
	defer mu.RUnlock()
	rv := make(map[string]interface{})
	for n, v := range registry {
		if strings.HasPrefix(n, prefix) {
			rv[n] = v
		}
	}
	return rv
}

// Names returns the sorted names of all entries with the given prefix, the prefix itself is trimmed.
func Names(prefix string) []string {
	var rv []string
	for n := range Prefix(prefix) {
		rv = append(rv, strings.TrimPrefix(n, prefix))
	}
	sort.Strings(rv)
	return rv
}
