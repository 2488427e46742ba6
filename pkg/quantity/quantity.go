/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package quantity parses and compares cluster resource quantities: decimal
// (k, M, G, T, P, E), binary (Ki, Mi, Gi, Ti, Pi, Ei), plain-integer and
// fixed-point-milli ("m") suffixed values. Arithmetic is exact for the full
// range of values the cluster API emits.
package quantity

import (
	"fmt"
	"regexp"

	"k8s.io/apimachinery/pkg/api/resource"
)

// shape matches "<number><suffix>" where number is a decimal with an optional
// fraction and suffix is one of the families spec.md §4.A enumerates. This is
// validated ahead of resource.ParseQuantity so malformed input is rejected
// with our own error rather than whatever message apimachinery happens to
// produce.
var shape = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?(m|[kKMGTPE]i?)?$`)

// InvalidQuantityError is the InvalidQuantity error kind of spec.md §7.
type InvalidQuantityError struct {
	Raw   string
	Cause error
}

func (e *InvalidQuantityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid quantity %q: %s", e.Raw, e.Cause)
	}
	return fmt.Sprintf("invalid quantity %q", e.Raw)
}

func (e *InvalidQuantityError) Unwrap() error { return e.Cause }

// Quantity is a non-negative rational value, represented internally as an
// apimachinery resource.Quantity (mantissa + decimal exponent, exact
// arithmetic, no floating point drift).
type Quantity struct {
	inner resource.Quantity
}

// Zero is the additive identity.
func Zero() Quantity { return Quantity{} }

// Parse accepts strings of the shape "<number><suffix?>". Suffix must be one
// of "", "m", k, K, M, G, T, P, E, Ki, Mi, Gi, Ti, Pi, Ei. Negative numbers
// and malformed input fail with InvalidQuantityError.
func Parse(raw string) (Quantity, error) {
	if !shape.MatchString(raw) {
		return Quantity{}, &InvalidQuantityError{Raw: raw}
	}
	// apimachinery only recognizes lowercase "k" for the decimal-kilo suffix;
	// spec.md §4.A additionally permits an uppercase "K" meaning the same
	// thing, so normalize it before delegating.
	normalized := raw
	if len(raw) > 0 && raw[len(raw)-1] == 'K' {
		normalized = raw[:len(raw)-1] + "k"
	}
	q, err := resource.ParseQuantity(normalized)
	if err != nil {
		return Quantity{}, &InvalidQuantityError{Raw: raw, Cause: err}
	}
	if q.Sign() < 0 {
		return Quantity{}, &InvalidQuantityError{Raw: raw, Cause: fmt.Errorf("negative quantities are not permitted")}
	}
	return Quantity{inner: q}, nil
}

// MustParse is Parse, panicking on error. Intended for constants and tests.
func MustParse(raw string) Quantity {
	q, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return q
}

// FromK8s wraps an already-parsed apimachinery quantity, e.g. one read off a
// v1.Node/v1.Pod resource list by the JSON decoder.
func FromK8s(q resource.Quantity) Quantity {
	return Quantity{inner: q}
}

// ToK8s unwraps back to the apimachinery representation.
func (q Quantity) ToK8s() resource.Quantity {
	return q.inner
}

// CanonicalRender renders the quantity in canonical apimachinery form. Parse
// followed by CanonicalRender is idempotent for canonical inputs.
func (q Quantity) CanonicalRender() string {
	return q.inner.String()
}

func (q Quantity) String() string { return q.CanonicalRender() }

// Cmp returns -1, 0 or 1 comparing q to other by value, independent of
// suffix.
func (q Quantity) Cmp(other Quantity) int {
	return q.inner.Cmp(other.inner)
}

func (q Quantity) Equal(other Quantity) bool     { return q.Cmp(other) == 0 }
func (q Quantity) LessThan(other Quantity) bool  { return q.Cmp(other) < 0 }
func (q Quantity) GreaterThan(o Quantity) bool   { return q.Cmp(o) > 0 }
func (q Quantity) IsZero() bool                  { return q.inner.IsZero() }
func (q Quantity) AsApproximateFloat64() float64 { return q.inner.AsApproximateFloat64() }

// Add returns q + other. Exact, no floating point drift.
func (q Quantity) Add(other Quantity) Quantity {
	r := q.inner.DeepCopy()
	r.Add(other.inner)
	return Quantity{inner: r}
}

// SubSaturating returns q - other, saturating at zero rather than going
// negative (spec.md §4.A: "saturating at zero for the use here").
func (q Quantity) SubSaturating(other Quantity) Quantity {
	r := q.inner.DeepCopy()
	r.Sub(other.inner)
	if r.Sign() < 0 {
		return Zero()
	}
	return Quantity{inner: r}
}
