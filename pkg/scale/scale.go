package scale

import (
	"fmt"
	"math"

	"github.com/matzehuels/panzoom/pkg/errors"
)

// Domain is an interval of data values. A valid domain has Lo < Hi.
type Domain struct {
	Lo float64 `json:"lo" toml:"lo" yaml:"lo"`
	Hi float64 `json:"hi" toml:"hi" yaml:"hi"`
}

// Validate reports whether d can back a scale.
// Reversed or non-finite bounds yield INVALID_DOMAIN; equal bounds yield
// DEGENERATE_DOMAIN.
func (d Domain) Validate() error {
	if math.IsNaN(d.Lo) || math.IsNaN(d.Hi) || math.IsInf(d.Lo, 0) || math.IsInf(d.Hi, 0) {
		return errors.New(errors.ErrCodeInvalidDomain, "domain %s has non-finite bounds", d)
	}
	if d.Hi < d.Lo {
		return errors.New(errors.ErrCodeInvalidDomain, "domain %s is reversed", d)
	}
	if d.Hi == d.Lo {
		return errors.New(errors.ErrCodeDegenerateDomain, "domain %s has zero span", d)
	}
	return nil
}

// Span returns Hi - Lo.
func (d Domain) Span() float64 { return d.Hi - d.Lo }

// Contains reports whether v lies within the closed interval.
func (d Domain) Contains(v float64) bool { return v >= d.Lo && v <= d.Hi }

// Clamp restricts d to the given bounds. The result may be degenerate if d
// lies entirely outside bounds.
func (d Domain) Clamp(bounds Domain) Domain {
	return Domain{Lo: math.Max(d.Lo, bounds.Lo), Hi: math.Min(d.Hi, bounds.Hi)}
}

// Equal compares two domains by value.
func (d Domain) Equal(o Domain) bool { return d.Lo == o.Lo && d.Hi == o.Hi }

// ApproxEqual compares two domains within a tolerance relative to their span.
func (d Domain) ApproxEqual(o Domain, tol float64) bool {
	span := math.Max(math.Abs(d.Span()), math.Abs(o.Span()))
	if span == 0 {
		span = 1
	}
	return math.Abs(d.Lo-o.Lo) <= tol*span && math.Abs(d.Hi-o.Hi) <= tol*span
}

func (d Domain) String() string { return fmt.Sprintf("[%g, %g]", d.Lo, d.Hi) }

// Range is an interval of pixel positions. Lo may be greater than Hi.
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Min returns the smaller end of the range.
func (r Range) Min() float64 { return math.Min(r.Lo, r.Hi) }

// Max returns the larger end of the range.
func (r Range) Max() float64 { return math.Max(r.Lo, r.Hi) }

// Len returns the absolute pixel length of the range.
func (r Range) Len() float64 { return math.Abs(r.Hi - r.Lo) }

func (r Range) String() string { return fmt.Sprintf("[%g, %g]", r.Lo, r.Hi) }

// Linear is an immutable linear mapping from a Domain to a Range.
// The zero value is not usable; construct with New.
type Linear struct {
	domain Domain
	rng    Range
}

// New builds a linear scale. The domain must satisfy Domain.Validate and
// the range bounds must be finite.
func New(d Domain, r Range) (Linear, error) {
	if err := d.Validate(); err != nil {
		return Linear{}, err
	}
	if err := errors.ValidateFinite("range start", r.Lo); err != nil {
		return Linear{}, err
	}
	if err := errors.ValidateFinite("range end", r.Hi); err != nil {
		return Linear{}, err
	}
	return Linear{domain: d, rng: r}, nil
}

// Domain returns the scale's data interval.
func (s Linear) Domain() Domain { return s.domain }

// Range returns the scale's pixel interval.
func (s Linear) Range() Range { return s.rng }

// IsZero reports whether s is the unusable zero value.
func (s Linear) IsZero() bool { return s.domain == Domain{} && s.rng == Range{} }

// Map converts a data value to a pixel position.
func (s Linear) Map(v float64) float64 {
	return s.rng.Lo + (v-s.domain.Lo)/(s.domain.Hi-s.domain.Lo)*(s.rng.Hi-s.rng.Lo)
}

// Invert converts a pixel position back to a data value.
// A scale with a zero-length range maps every pixel to the domain start.
// The range endpoints invert to the domain bounds exactly.
func (s Linear) Invert(px float64) float64 {
	switch {
	case s.rng.Hi == s.rng.Lo, px == s.rng.Lo:
		return s.domain.Lo
	case px == s.rng.Hi:
		return s.domain.Hi
	}
	return s.domain.Lo + (px-s.rng.Lo)/(s.rng.Hi-s.rng.Lo)*(s.domain.Hi-s.domain.Lo)
}

// WithDomain returns a copy of s over a different domain and the same range.
func (s Linear) WithDomain(d Domain) (Linear, error) {
	return New(d, s.rng)
}

// WithRange returns a copy of s over a different range and the same domain.
func (s Linear) WithRange(r Range) (Linear, error) {
	return New(s.domain, r)
}

func (s Linear) String() string {
	return fmt.Sprintf("linear(%s -> %s)", s.domain, s.rng)
}
