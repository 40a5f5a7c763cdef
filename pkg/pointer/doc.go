// Package pointer parses and builds the JSON-Schema-like pointers that address
// nodes in a schema model, e.g. "#/properties/address/properties/street" or
// "#/$defs/Person". Tokens are escaped with the JSON pointer rules (~0, ~1) so
// property names may contain "/" and "~".
package pointer
