// Copyright the xsan-runtime authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package bitvec

import (
	"fmt"
	"strings"
)

// Prop represents a proposition over symbolic terms, checked against a
// concrete assignment.  All comparisons are unsigned.
type Prop interface {
	// Holds checks this proposition under the given assignment.
	Holds(asn Assignment) bool
	// Vars adds the names of all variables occurring in this proposition to
	// the given set.
	Vars(set map[string]bool)
	// String returns a readable rendering, for diagnostics only.
	String() string
}

// Eq asserts two terms are equal.
type Eq struct{ Lhs, Rhs Term }

// Equals constructs an equality between two terms.
func Equals(lhs Term, rhs Term) Prop {
	return &Eq{Lhs: lhs, Rhs: rhs}
}

// Holds implementation for the Prop interface.
func (p *Eq) Holds(asn Assignment) bool {
	return p.Lhs.Eval(asn) == p.Rhs.Eval(asn)
}

// Vars implementation for the Prop interface.
func (p *Eq) Vars(set map[string]bool) {
	varsOfTerms(set, p.Lhs, p.Rhs)
}

func (p *Eq) String() string {
	return fmt.Sprintf("(%s == %s)", p.Lhs.String(), p.Rhs.String())
}

// Ult asserts a strict unsigned less-than between two terms.
type Ult struct{ Lhs, Rhs Term }

// LessThan constructs a strict unsigned comparison between two terms.
func LessThan(lhs Term, rhs Term) Prop {
	return &Ult{Lhs: lhs, Rhs: rhs}
}

// Holds implementation for the Prop interface.
func (p *Ult) Holds(asn Assignment) bool {
	return p.Lhs.Eval(asn) < p.Rhs.Eval(asn)
}

// Vars implementation for the Prop interface.
func (p *Ult) Vars(set map[string]bool) {
	varsOfTerms(set, p.Lhs, p.Rhs)
}

func (p *Ult) String() string {
	return fmt.Sprintf("(%s < %s)", p.Lhs.String(), p.Rhs.String())
}

// Ule asserts a non-strict unsigned less-than between two terms.
type Ule struct{ Lhs, Rhs Term }

// AtMost constructs a non-strict unsigned comparison between two terms.
func AtMost(lhs Term, rhs Term) Prop {
	return &Ule{Lhs: lhs, Rhs: rhs}
}

// Holds implementation for the Prop interface.
func (p *Ule) Holds(asn Assignment) bool {
	return p.Lhs.Eval(asn) <= p.Rhs.Eval(asn)
}

// Vars implementation for the Prop interface.
func (p *Ule) Vars(set map[string]bool) {
	varsOfTerms(set, p.Lhs, p.Rhs)
}

func (p *Ule) String() string {
	return fmt.Sprintf("(%s <= %s)", p.Lhs.String(), p.Rhs.String())
}

// Congruence asserts a term is divisible by a fixed modulus.
type Congruence struct {
	Arg     Term
	Modulus uint64
}

// DivisibleBy asserts the given term is congruent to zero modulo the given
// (nonzero) modulus.
func DivisibleBy(arg Term, modulus uint64) Prop {
	if modulus == 0 {
		panic("zero modulus in divisibility constraint")
	}
	//
	return &Congruence{Arg: arg, Modulus: modulus}
}

// Holds implementation for the Prop interface.
func (p *Congruence) Holds(asn Assignment) bool {
	return p.Arg.Eval(asn)%p.Modulus == 0
}

// Vars implementation for the Prop interface.
func (p *Congruence) Vars(set map[string]bool) {
	p.Arg.Vars(set)
}

func (p *Congruence) String() string {
	return fmt.Sprintf("(%s %% %#x == 0)", p.Arg.String(), p.Modulus)
}

// AnyOf asserts that at least one of the given propositions holds.
type AnyOf struct{ Props []Prop }

// Either constructs the disjunction of one or more propositions.
func Either(props ...Prop) Prop {
	if len(props) == 1 {
		return props[0]
	}
	//
	return &AnyOf{Props: props}
}

// Holds implementation for the Prop interface.
func (p *AnyOf) Holds(asn Assignment) bool {
	for _, prop := range p.Props {
		if prop.Holds(asn) {
			return true
		}
	}
	//
	return false
}

// Vars implementation for the Prop interface.
func (p *AnyOf) Vars(set map[string]bool) {
	for _, prop := range p.Props {
		prop.Vars(set)
	}
}

func (p *AnyOf) String() string {
	var parts []string
	for _, prop := range p.Props {
		parts = append(parts, prop.String())
	}
	//
	return "(or " + strings.Join(parts, " ") + ")"
}
