// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"
	"slices"
	"strings"
)

// Argument is a single emulator argument with or without value.
//
// Its name might be marked as unique within an argument list.
type Argument struct {
	name          string
	value         string
	nonUniqueName bool
}

// UniqueArg returns a new [Argument] that may appear only once in an
// argument list. Multiple values are joined with commas.
func UniqueArg(name string, value ...string) Argument {
	return Argument{
		name:  name,
		value: strings.Join(value, ","),
	}
}

// RepeatableArg returns a new [Argument] that may appear multiple times in
// an argument list, as long as the values differ.
func RepeatableArg(name string, value ...string) Argument {
	return Argument{
		name:          name,
		value:         strings.Join(value, ","),
		nonUniqueName: true,
	}
}

// Name returns the name of the [Argument].
func (a Argument) Name() string {
	return a.name
}

// Value returns the value of the [Argument].
func (a Argument) Value() string {
	return a.value
}

// String implements [fmt.Stringer].
func (a Argument) String() string {
	s := "-" + a.name
	if a.value != "" {
		s += " " + a.value
	}

	return s
}

// Equal compares the [Argument]s.
//
// For unique names only the names are compared, otherwise name and value.
func (a Argument) Equal(other Argument) bool {
	if a.name != other.name {
		return false
	}

	if a.nonUniqueName {
		return a.value == other.value
	}

	return true
}

// Arguments is a list of [Argument]s for a single invocation.
type Arguments []Argument

// Add appends the given [Argument]s to the list.
func (a *Arguments) Add(args ...Argument) {
	*a = append(*a, args...)
}

// Build compiles the list into the string slice for [os/exec].
//
// It returns an error if a name uniqueness constraint is violated.
func (a Arguments) Build() ([]string, error) {
	built := make([]string, 0, 2*len(a))

	for idx, arg := range a {
		if i := slices.IndexFunc(a[:idx], arg.Equal); i != -1 {
			return nil, fmt.Errorf(
				"%w: %s, %s",
				ErrArgumentCollision,
				arg.String(),
				a[i].String(),
			)
		}

		built = append(built, "-"+arg.name)

		if arg.value != "" {
			built = append(built, arg.value)
		}
	}

	return built, nil
}
