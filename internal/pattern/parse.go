// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pattern

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClassUnknown is returned for class names outside the known set.
var ErrClassUnknown = errors.New("unknown pattern class")

// regexpPrefix marks an expression as regular expression instead of a
// literal substring.
const regexpPrefix = "re:"

// Parse creates a [Pattern] from the given class and expression.
//
// An expression prefixed with "re:" is compiled as regular expression,
// anything else matches as literal substring.
func Parse(class Class, expr string) (Pattern, error) {
	if rest, ok := strings.CutPrefix(expr, regexpPrefix); ok {
		return Regexp(class, rest)
	}

	return Literal(class, expr), nil
}

// ParseClass validates a class name.
func ParseClass(name string) (Class, error) {
	switch class := Class(name); class {
	case ClassSuccess, ClassFailure, ClassCheckpoint:
		return class, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrClassUnknown, name)
	}
}
