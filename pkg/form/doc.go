// Package form implements the edit session shared by every MiComedor dialog:
// typed field values, input filters, the dirty-check gate that refuses no-op
// writes, and the submission state machine that allows one in-flight write.
//
// A Definition describes an entity form once. Sessions are created from it in
// create mode (empty template) or edit mode (existing record) and discarded
// after a successful submit or a cancel.
package form
