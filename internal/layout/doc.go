// Package layout resolves a book format and font choice into a concrete
// page geometry and typographic rule set.
//
// A Profile is a plain value: the compositor reads it to generate CSS and the
// render engine reads it to size the printed page, so both stages agree on
// the physical dimensions without repeating literals.
//
// The font catalog is fixed at compile time. Unknown font keys resolve to
// DefaultFontKey instead of failing.
package layout
