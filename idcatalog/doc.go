// Package idcatalog holds the fixed set of government ID types accepted by
// the registration form, each with the regular expression an ID number must
// match and an example value shown as a hint.
//
// Patterns are compiled once when a catalog is built; an invalid pattern
// fails at load time rather than on a submission. Lookups of an empty or
// unknown key return the NotSelected sentinel, whose placeholder is
// "Select an ID first" and which matches no input.
package idcatalog
