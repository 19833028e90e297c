// Package template defines the text renderer contract used by reports and
// console screens. The gotemplate subpackage provides the pongo2 engine.
package template
