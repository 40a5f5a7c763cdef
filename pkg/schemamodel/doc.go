// Package schemamodel edits a JSON Schema document held as a flat, pointer
// indexed list of uischema nodes.
//
// A SchemaModel is built with FromNodes and read back with Nodes; the two are
// inverses. Definitions hang off the root next to its properties and are
// addressed as #/$defs/<name>. Every mutating method either applies its
// structural change completely or returns an *OpError and leaves the model as
// it was. Errors wrap the package sentinels, so callers test them with
// errors.Is:
//
//	if _, err := model.DeleteNode(ptr); errors.Is(err, schemamodel.ErrReferencedDefinitionDeletion) {
//		// tell the user the definition is still in use
//	}
//
// SavableSchemaModel decorates a model that shares the same NodeMap and calls
// a SaveFunc once after each successful edit.
package schemamodel
