// Package validation holds the pure field rules shared by every MiComedor
// form. Rules never touch the network and can be evaluated on each keystroke.
package validation
