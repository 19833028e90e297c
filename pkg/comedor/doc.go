// Package comedor defines the records of the MiComedor backend and the form
// definitions used to create and edit them: field schemas, input filters,
// comparable shapes and payload builders.
package comedor
