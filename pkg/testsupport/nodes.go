package testsupport

import "github.com/goliatone/go-schemamodel/pkg/uischema"

// Pointers of the mock document returned by MockNodes.
const (
	ParentPointer           = "#/properties/parent"
	ChildPointer            = "#/properties/parent/properties/child"
	ParentRefPointer        = "#/properties/parent/properties/ref"
	CombinationPointer      = "#/properties/combination"
	CombinationItem0        = "#/properties/combination/anyOf/0"
	CombinationItem1        = "#/properties/combination/anyOf/1"
	ListPointer             = "#/properties/list"
	ListItemPointer         = "#/properties/list/items/properties/id"
	Def1Pointer             = "#/$defs/Def1"
	Def1NamePointer         = "#/$defs/Def1/properties/name"
	Def2Pointer             = "#/$defs/Def2"
	UnusedDefinitionPointer = "#/$defs/Unused"
)

// MockNodes returns a fresh, well formed document exercising every node
// variant: nested objects, a combination, an array parent, references and
// definitions both used and unused. Nodes are listed depth first, properties
// before definitions.
func MockNodes() []uischema.Node {
	root := uischema.NewRoot()
	root.Children = []string{ParentPointer, CombinationPointer, ListPointer, Def1Pointer, Def2Pointer, UnusedDefinitionPointer}

	parent := field(ParentPointer, uischema.FieldTypeObject, ChildPointer, ParentRefPointer)
	parent.Title = "Parent"

	child := field(ChildPointer, uischema.FieldTypeString)
	child.IsRequired = true
	child.Restrictions = uischema.Restrictions{"minLength": 1, "maxLength": 20}

	parentRef := reference(ParentRefPointer, Def1Pointer)

	combination := uischema.NewCombinationNode(uischema.CombinationAnyOf)
	combination.Pointer = CombinationPointer
	combination.Children = []string{CombinationItem0, CombinationItem1}

	item0 := field(CombinationItem0, uischema.FieldTypeString)
	item1 := reference(CombinationItem1, Def2Pointer)

	list := field(ListPointer, uischema.FieldTypeObject, ListItemPointer)
	list.IsArray = true
	list.Restrictions = uischema.Restrictions{"minItems": 1}

	listItem := field(ListItemPointer, uischema.FieldTypeInteger)
	listItem.IsRequired = true

	def1 := field(Def1Pointer, uischema.FieldTypeObject, Def1NamePointer)
	def1Name := field(Def1NamePointer, uischema.FieldTypeString)
	def1Name.Custom = map[string]any{"x-label": "Name"}

	def2 := field(Def2Pointer, uischema.FieldTypeString)
	def2.IsNillable = true

	unused := field(UnusedDefinitionPointer, uischema.FieldTypeObject)

	return []uischema.Node{
		root,
		parent, child, parentRef,
		combination, item0, item1,
		list, listItem,
		def1, def1Name,
		def2,
		unused,
	}
}

func field(ptr string, fieldType uischema.FieldType, children ...string) *uischema.FieldNode {
	node := uischema.NewFieldNode(fieldType)
	node.Pointer = ptr
	if len(children) > 0 {
		node.Children = children
	}
	return node
}

func reference(ptr, target string) *uischema.ReferenceNode {
	node := uischema.NewReferenceNode(target)
	node.Pointer = ptr
	return node
}
