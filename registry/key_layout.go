/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	storeerrors "github.com/suparena/arraywriter/errors"
)

// KeyLayout is the DynamoDB key layout of an entity type. PK and SK are
// templates whose {Attribute} macros are replaced with the entity's
// attribute values when a row is written.
type KeyLayout struct {
	PK string
	SK string
}

var (
	macroPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

	layouts  = make(map[reflect.Type]KeyLayout)
	layoutMu sync.RWMutex
)

// Templates returns the layout as an attribute name -> template map.
func (l KeyLayout) Templates() map[string]string {
	return map[string]string{"PK": l.PK, "SK": l.SK}
}

// Validate requires both templates to reference at least one attribute and
// to hold no unbalanced braces.
func (l KeyLayout) Validate() error {
	for _, t := range []struct{ name, tmpl string }{{"PK", l.PK}, {"SK", l.SK}} {
		if len(Attributes(t.tmpl)) == 0 {
			return storeerrors.NewValidationError(t.name, fmt.Sprintf("template %q references no attribute", t.tmpl))
		}
		if rest := macroPattern.ReplaceAllString(t.tmpl, ""); strings.ContainsAny(rest, "{}") {
			return storeerrors.NewValidationError(t.name, fmt.Sprintf("template %q has unbalanced braces", t.tmpl))
		}
	}
	return nil
}

// Expand fills both templates, taking the text of each referenced attribute
// from value.
func (l KeyLayout) Expand(value func(attr string) string) (pk, sk string) {
	fill := func(tmpl string) string {
		return macroPattern.ReplaceAllStringFunc(tmpl, func(macro string) string {
			return value(macro[1 : len(macro)-1])
		})
	}
	return fill(l.PK), fill(l.SK)
}

// Attributes lists the attribute names referenced by template, in order.
func Attributes(template string) []string {
	var names []string
	for _, m := range macroPattern.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}

// RegisterKeyLayout binds layout to T. It panics when the layout is invalid
// or T already has one.
func RegisterKeyLayout[T any](layout KeyLayout) {
	if err := layout.Validate(); err != nil {
		panic(fmt.Sprintf("key layout registry: %T: %v", *new(T), err))
	}
	t := reflect.TypeOf((*T)(nil)).Elem()

	layoutMu.Lock()
	defer layoutMu.Unlock()

	if _, exists := layouts[t]; exists {
		panic(fmt.Sprintf("key layout registry: %s already registered", t))
	}
	layouts[t] = layout
}

// KeyLayoutFor returns the layout registered for T, or a NotFoundError.
func KeyLayoutFor[T any]() (KeyLayout, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	layoutMu.RLock()
	defer layoutMu.RUnlock()

	l, ok := layouts[t]
	if !ok {
		return KeyLayout{}, storeerrors.NewNotFoundError("key layout", t.String())
	}
	return l, nil
}
