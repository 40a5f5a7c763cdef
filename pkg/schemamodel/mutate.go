package schemamodel

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-schemamodel/pkg/pointer"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

// temporary name used while a node waits for its combination index
const pendingName = "pending"

// transact runs fn against a deep clone and adopts the clone's nodes only when
// fn succeeds.
func (m *SchemaModel) transact(op, ptr string, fn func(work *SchemaModel) error) error {
	work := m.DeepClone()
	if err := fn(work); err != nil {
		return opError(op, ptr, err)
	}
	m.nodes.replace(work.nodes)
	return nil
}

// AddNode inserts a copy of node under the parent at target, resolving the
// parent through references. Object parents need a unique name; combination
// members are named by their index and name is ignored.
func (m *SchemaModel) AddNode(name string, node uischema.Node, target NodePosition) (uischema.Node, error) {
	added, err := m.addNode(name, node, target)
	if err != nil {
		return nil, opError("add", target.ParentPointer, err)
	}
	return added, nil
}

func (m *SchemaModel) addNode(name string, node uischema.Node, target NodePosition) (uischema.Node, error) {
	if err := m.checkInsertable(node); err != nil {
		return nil, err
	}
	finalParent, err := m.finalNode(target.ParentPointer)
	if err != nil {
		return nil, err
	}
	if !uischema.IsValidParent(finalParent) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidParent, finalParent.Base().Pointer)
	}

	fresh := node.Clone()
	base := fresh.Base()
	base.ImplicitType = false

	switch parent := finalParent.(type) {
	case *uischema.CombinationNode:
		base.Pointer = uischema.ChildPointer(parent, pendingName)
		m.nodes.Set(fresh)
		parent.Children = insertAt(parent.Children, childSlot(parent, parent.Children, target.Index), base.Pointer)
		if err := m.syncCombination(parent); err != nil {
			return nil, err
		}
		return fresh, nil
	case *uischema.FieldNode:
		if name == "" {
			return nil, ErrNameRequired
		}
		if hasChildNamed(parent, name) {
			return nil, fmt.Errorf("%w: %q", ErrNameCollision, name)
		}
		ptr := uischema.ChildPointer(parent, name)
		if m.nodes.Has(ptr) {
			return nil, fmt.Errorf("%w: %q", ErrNameCollision, name)
		}
		base.Pointer = ptr
		m.nodes.Set(fresh)
		parent.Children = insertAt(parent.Children, target.Index, ptr)
		return fresh, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidParent, finalParent.Base().Pointer)
	}
}

func (m *SchemaModel) checkInsertable(node uischema.Node) error {
	if uischema.IsNil(node) {
		return fmt.Errorf("%w: nil node", ErrInvalidOperation)
	}
	switch typed := node.(type) {
	case *uischema.FieldNode:
		if !typed.FieldType.Valid() {
			return fmt.Errorf("%w: unknown field type %q", ErrInvalidOperation, typed.FieldType)
		}
		if len(typed.Children) > 0 {
			return fmt.Errorf("%w: new nodes cannot carry children", ErrInvalidOperation)
		}
	case *uischema.CombinationNode:
		if !typed.CombinationType.Valid() {
			return fmt.Errorf("%w: unknown combination type %q", ErrInvalidOperation, typed.CombinationType)
		}
		if len(typed.Children) > 0 {
			return fmt.Errorf("%w: new nodes cannot carry children", ErrInvalidOperation)
		}
	case *uischema.ReferenceNode:
		if !pointer.IsDirectDefinition(typed.Reference) || !m.nodes.Has(typed.Reference) {
			return fmt.Errorf("%w: %q", ErrInvalidReferenceTarget, typed.Reference)
		}
	}
	return nil
}

// AddField adds a field of the given type (string when empty).
func (m *SchemaModel) AddField(name string, fieldType uischema.FieldType, target NodePosition) (*uischema.FieldNode, error) {
	if fieldType == "" {
		fieldType = uischema.FieldTypeString
	}
	added, err := m.AddNode(name, uischema.NewFieldNode(fieldType), target)
	if err != nil {
		return nil, err
	}
	return added.(*uischema.FieldNode), nil
}

// AddCombination adds a combination of the given kind (anyOf when empty).
func (m *SchemaModel) AddCombination(name string, target NodePosition, kind uischema.CombinationKind) (*uischema.CombinationNode, error) {
	if kind == "" {
		kind = uischema.CombinationAnyOf
	}
	added, err := m.AddNode(name, uischema.NewCombinationNode(kind), target)
	if err != nil {
		return nil, err
	}
	return added.(*uischema.CombinationNode), nil
}

// AddReference adds a reference to the definition named referredName. An
// unknown definition fails with ErrInvalidReferenceTarget and leaves the model
// unchanged.
func (m *SchemaModel) AddReference(name, referredName string, target NodePosition) (*uischema.ReferenceNode, error) {
	ref := pointer.Definition(referredName)
	if referredName == "" || !m.nodes.Has(ref) {
		return nil, opError("add", target.ParentPointer, fmt.Errorf("%w: %q", ErrInvalidReferenceTarget, referredName))
	}
	added, err := m.AddNode(name, uischema.NewReferenceNode(ref), target)
	if err != nil {
		return nil, err
	}
	return added.(*uischema.ReferenceNode), nil
}

// AddType stores a copy of node as the definition name and appends it to the
// root's children.
func (m *SchemaModel) AddType(name string, node uischema.Node) (uischema.Node, error) {
	ptr := pointer.Definition(name)
	added, err := m.addType(name, node)
	if err != nil {
		return nil, opError("add type", ptr, err)
	}
	return added, nil
}

func (m *SchemaModel) addType(name string, node uischema.Node) (uischema.Node, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if !uischema.IsFieldOrCombination(node) {
		return nil, fmt.Errorf("%w: definitions must be fields or combinations", ErrInvalidOperation)
	}
	if err := m.checkInsertable(node); err != nil {
		return nil, err
	}
	rootNode, err := m.lookup(pointer.Root)
	if err != nil {
		return nil, err
	}
	root, ok := rootNode.(uischema.Parent)
	if !ok {
		return nil, fmt.Errorf("%w: root cannot own definitions", ErrCorrupted)
	}
	ptr := pointer.Definition(name)
	if m.nodes.Has(ptr) || hasChildNamed(root, name) {
		return nil, fmt.Errorf("%w: %q", ErrNameCollision, name)
	}
	fresh := node.Clone()
	fresh.Base().Pointer = ptr
	m.nodes.Set(fresh)
	root.SetChildPointers(append(root.ChildPointers(), ptr))
	return fresh, nil
}

// AddFieldType adds an empty object definition.
func (m *SchemaModel) AddFieldType(name string) (*uischema.FieldNode, error) {
	added, err := m.AddType(name, uischema.NewFieldNode(uischema.FieldTypeObject))
	if err != nil {
		return nil, err
	}
	return added.(*uischema.FieldNode), nil
}

// DeleteNode removes the node and its descendants. The root cannot be deleted,
// nor can a subtree that is referenced from elsewhere.
func (m *SchemaModel) DeleteNode(ptr string) (*SchemaModel, error) {
	if err := m.deleteNode(ptr); err != nil {
		return nil, opError("delete", ptr, err)
	}
	return m, nil
}

func (m *SchemaModel) deleteNode(ptr string) error {
	if ptr == pointer.Root {
		return ErrRootDeletion
	}
	if _, err := m.lookup(ptr); err != nil {
		return err
	}
	if refs := m.referrersOutside(ptr); len(refs) > 0 {
		return fmt.Errorf("%w: referenced by %q", ErrReferencedDefinitionDeletion, refs[0].Pointer)
	}
	parent, err := m.parentNode(ptr)
	if err != nil {
		return err
	}
	for _, descendant := range m.subtree(ptr) {
		m.nodes.Delete(descendant)
	}
	parent.SetChildPointers(removeValue(parent.ChildPointers(), ptr))
	if combination, ok := parent.(*uischema.CombinationNode); ok {
		return m.syncCombination(combination)
	}
	return nil
}

// MoveNode reorders a node within its parent or relocates it, rewriting the
// pointers of the node, its descendants and the references into it. A name
// already used in the target parent is replaced by a unique variant. The
// returned node is the moved one at its new pointer.
func (m *SchemaModel) MoveNode(ptr string, target NodePosition) (uischema.Node, error) {
	var moved uischema.Node
	err := m.transact("move", ptr, func(work *SchemaModel) error {
		node, err := work.moveNode(ptr, target)
		moved = node
		return err
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (m *SchemaModel) moveNode(ptr string, target NodePosition) (uischema.Node, error) {
	if ptr == pointer.Root {
		return nil, fmt.Errorf("%w: the root cannot be moved", ErrIllegalMove)
	}
	node, err := m.lookup(ptr)
	if err != nil {
		return nil, err
	}
	if inSubtree(ptr, target.ParentPointer) {
		return nil, fmt.Errorf("%w: cannot move into itself", ErrIllegalMove)
	}
	oldParent, err := m.parentNode(ptr)
	if err != nil {
		return nil, err
	}
	resolved, err := m.finalNode(target.ParentPointer)
	if err != nil {
		return nil, err
	}
	newParent, ok := resolved.(uischema.Parent)
	if !ok || !uischema.IsValidParent(resolved) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidParent, resolved.Base().Pointer)
	}
	if inSubtree(ptr, newParent.Base().Pointer) {
		return nil, fmt.Errorf("%w: cannot move into itself", ErrIllegalMove)
	}

	if newParent == oldParent {
		children := oldParent.ChildPointers()
		from := indexOf(children, ptr)
		if from < 0 {
			return nil, fmt.Errorf("%w: %q is not listed by its parent", ErrCorrupted, ptr)
		}
		combination, ok := oldParent.(*uischema.CombinationNode)
		if !ok {
			oldParent.SetChildPointers(moveItem(children, from, target.Index))
			return node, nil
		}
		rest := removeValue(children, ptr)
		combination.Children = insertAt(rest, childSlot(combination, rest, target.Index), ptr)
		if err := m.syncCombination(combination); err != nil {
			return nil, err
		}
		return node, nil
	}

	if m.hasReferrersInto(ptr) {
		return nil, fmt.Errorf("%w: a referenced definition cannot leave $defs", ErrIllegalMove)
	}

	oldParent.SetChildPointers(removeValue(oldParent.ChildPointers(), ptr))
	if combination, ok := oldParent.(*uischema.CombinationNode); ok {
		if err := m.syncCombination(combination); err != nil {
			return nil, err
		}
	}

	var newPtr string
	switch parent := newParent.(type) {
	case *uischema.CombinationNode:
		newPtr = uischema.ChildPointer(parent, pendingName)
	default:
		name := pointer.ExtractName(ptr)
		if hasChildNamed(parent, name) {
			name = uniqueString(childNames(parent), name)
		}
		newPtr = uischema.ChildPointer(parent, name)
	}
	if m.nodes.Has(newPtr) {
		return nil, fmt.Errorf("%w: %q", ErrNameCollision, newPtr)
	}
	if err := m.changePointer(ptr, newPtr); err != nil {
		return nil, err
	}
	siblings := newParent.ChildPointers()
	newParent.SetChildPointers(insertAt(siblings, childSlot(newParent, siblings, target.Index), newPtr))
	if combination, ok := newParent.(*uischema.CombinationNode); ok {
		if err := m.syncCombination(combination); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// UpdateNode replaces the attributes of the node at ptr with those of
// replacement. The variant must stay the same and children are kept. When
// replacement carries a different pointer the node is renamed within its
// parent, and descendants and references follow.
func (m *SchemaModel) UpdateNode(ptr string, replacement uischema.Node) (*SchemaModel, error) {
	if err := m.updateNode(ptr, replacement); err != nil {
		return nil, opError("update", ptr, err)
	}
	return m, nil
}

func (m *SchemaModel) updateNode(ptr string, replacement uischema.Node) error {
	if uischema.IsNil(replacement) {
		return fmt.Errorf("%w: nil node", ErrInvalidOperation)
	}
	existing, err := m.lookup(ptr)
	if err != nil {
		return err
	}
	if existing.Kind() != replacement.Kind() {
		return fmt.Errorf("%w: %s to %s", ErrVariantChange, existing.Kind(), replacement.Kind())
	}

	next := replacement.Clone()
	newPtr := next.Base().Pointer
	if newPtr == "" {
		newPtr = ptr
	}
	next.Base().Pointer = ptr

	switch typed := next.(type) {
	case *uischema.FieldNode:
		typed.Children = existing.(*uischema.FieldNode).Children
		if !typed.FieldType.Valid() {
			return fmt.Errorf("%w: unknown field type %q", ErrInvalidOperation, typed.FieldType)
		}
		if len(typed.Children) > 0 && typed.FieldType != uischema.FieldTypeObject {
			return fmt.Errorf("%w: %q has children", ErrInvalidParent, ptr)
		}
	case *uischema.CombinationNode:
		typed.Children = existing.(*uischema.CombinationNode).Children
		if !typed.CombinationType.Valid() {
			return fmt.Errorf("%w: unknown combination type %q", ErrInvalidOperation, typed.CombinationType)
		}
	case *uischema.ReferenceNode:
		if !pointer.IsDirectDefinition(typed.Reference) || !m.nodes.Has(typed.Reference) {
			return fmt.Errorf("%w: %q", ErrInvalidReferenceTarget, typed.Reference)
		}
		if inSubtree(ptr, typed.Reference) {
			return fmt.Errorf("%w: a reference cannot point at itself", ErrInvalidReferenceTarget)
		}
	}

	if newPtr != ptr {
		if err := m.checkRename(ptr, newPtr); err != nil {
			return err
		}
	}

	m.nodes.Set(next)
	if err := m.realignChildren(next); err != nil {
		return err
	}
	if newPtr != ptr {
		return m.changePointer(ptr, newPtr)
	}
	return nil
}

func (m *SchemaModel) checkRename(ptr, newPtr string) error {
	if ptr == pointer.Root {
		return fmt.Errorf("%w: the root cannot be renamed", ErrInvalidOperation)
	}
	parent, err := m.parentNode(ptr)
	if err != nil {
		return err
	}
	if uischema.IsCombination(parent) {
		return fmt.Errorf("%w: combination members are named by position", ErrInvalidOperation)
	}
	name := pointer.ExtractName(newPtr)
	if uischema.ExpectedChildPointer(parent, newPtr) != newPtr || name == "" {
		return fmt.Errorf("%w: %q is not a sibling pointer of %q", ErrInvalidOperation, newPtr, ptr)
	}
	if hasChildNamed(parent, name) || m.nodes.Has(newPtr) {
		return fmt.Errorf("%w: %q", ErrNameCollision, name)
	}
	if pointer.IsDirectDefinition(ptr) != pointer.IsDirectDefinition(newPtr) {
		return fmt.Errorf("%w: renaming cannot move a node in or out of $defs", ErrInvalidOperation)
	}
	return nil
}

// ChangeCombinationType switches allOf, anyOf and oneOf, rewriting member
// pointers.
func (m *SchemaModel) ChangeCombinationType(ptr string, kind uischema.CombinationKind) (*SchemaModel, error) {
	node, err := m.lookup(ptr)
	if err != nil {
		return nil, opError("change combination", ptr, err)
	}
	combination, ok := node.(*uischema.CombinationNode)
	if !ok {
		return nil, opError("change combination", ptr, fmt.Errorf("%w: not a combination", ErrInvalidOperation))
	}
	if !kind.Valid() {
		return nil, opError("change combination", ptr, fmt.Errorf("%w: unknown combination type %q", ErrInvalidOperation, kind))
	}
	combination.CombinationType = kind
	if err := m.realignChildren(combination); err != nil {
		return nil, opError("change combination", ptr, err)
	}
	return m, nil
}

// ToggleIsArray flips the array flag, moving children under or out of
// "items".
func (m *SchemaModel) ToggleIsArray(ptr string) (*SchemaModel, error) {
	if ptr == pointer.Root {
		return nil, opError("toggle array", ptr, fmt.Errorf("%w: the root cannot be an array", ErrInvalidOperation))
	}
	node, err := m.lookup(ptr)
	if err != nil {
		return nil, opError("toggle array", ptr, err)
	}
	base := node.Base()
	base.IsArray = !base.IsArray
	if err := m.realignChildren(node); err != nil {
		return nil, opError("toggle array", ptr, err)
	}
	return m, nil
}

// ConvertToDefinition promotes the node at ptr to a definition named after it
// (or a unique variant of that name) and leaves a reference in its slot. The
// reference keeps the slot's required and array attributes. Combination
// members are named after their combination since their own names are
// indexes.
func (m *SchemaModel) ConvertToDefinition(ptr string) (*SchemaModel, error) {
	err := m.transact("convert", ptr, func(work *SchemaModel) error {
		return work.convertToDefinition(ptr)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// convertedMemberName seeds the definition name of a converted member of a
// combination root.
const convertedMemberName = "definition"

func (m *SchemaModel) convertToDefinition(ptr string) error {
	if ptr == pointer.Root {
		return fmt.Errorf("%w: the root cannot become a definition", ErrInvalidOperation)
	}
	node, err := m.lookup(ptr)
	if err != nil {
		return err
	}
	if pointer.IsDefinition(ptr) {
		return fmt.Errorf("%w: already a definition", ErrInvalidOperation)
	}
	if uischema.IsReference(node) {
		return fmt.Errorf("%w: references cannot become definitions", ErrInvalidOperation)
	}
	parent, err := m.parentNode(ptr)
	if err != nil {
		return err
	}
	rootNode, err := m.lookup(pointer.Root)
	if err != nil {
		return err
	}
	root, ok := rootNode.(uischema.Parent)
	if !ok {
		return fmt.Errorf("%w: root cannot own definitions", ErrCorrupted)
	}

	slot := indexOf(parent.ChildPointers(), ptr)
	parent.SetChildPointers(removeValue(parent.ChildPointers(), ptr))

	name := pointer.ExtractName(ptr)
	if combination, ok := parent.(*uischema.CombinationNode); ok {
		name = pointer.ExtractName(combination.Pointer)
		if name == "" {
			name = convertedMemberName
		}
	}
	if m.HasDefinition(name) || hasChildNamed(root, name) {
		name = uniqueString(childNames(root), name)
	}
	defPtr := pointer.Definition(name)

	base := node.Base()
	ref := uischema.NewReferenceNode(defPtr)
	ref.Pointer = ptr
	ref.IsRequired = base.IsRequired
	ref.IsArray = base.IsArray
	ref.Restrictions = splitArrayRestrictions(base)

	if err := m.changePointer(ptr, defPtr); err != nil {
		return err
	}
	base.IsArray = false
	base.IsRequired = false
	if err := m.realignChildren(node); err != nil {
		return err
	}
	root.SetChildPointers(append(root.ChildPointers(), defPtr))

	m.nodes.Set(ref)
	parent.SetChildPointers(insertAt(parent.ChildPointers(), slot, ptr))
	return nil
}

var arrayRestrictionKeys = []string{"minItems", "maxItems", "uniqueItems"}

// splitArrayRestrictions removes the array keywords from base and returns
// them.
func splitArrayRestrictions(base *uischema.Common) uischema.Restrictions {
	if !base.IsArray || len(base.Restrictions) == 0 {
		return nil
	}
	var out uischema.Restrictions
	for _, key := range arrayRestrictionKeys {
		value, ok := base.Restrictions[key]
		if !ok {
			continue
		}
		if out == nil {
			out = uischema.Restrictions{}
		}
		out[key] = value
		delete(base.Restrictions, key)
	}
	return out
}

// changePointer renames oldPtr and everything below it to newPtr, updating
// children lists and references.
func (m *SchemaModel) changePointer(oldPtr, newPtr string) error {
	if oldPtr == newPtr {
		return nil
	}
	rewrite := func(p string) string { return pointer.ReplaceStart(p, oldPtr, newPtr) }
	if err := m.nodes.rekey(rewrite); err != nil {
		return err
	}
	for _, node := range m.nodes.Values() {
		switch typed := node.(type) {
		case *uischema.FieldNode:
			typed.Children = rewriteAll(typed.Children, rewrite)
		case *uischema.CombinationNode:
			typed.Children = rewriteAll(typed.Children, rewrite)
		case *uischema.ReferenceNode:
			typed.Reference = rewrite(typed.Reference)
		}
	}
	return nil
}

func rewriteAll(list []string, fn func(string) string) []string {
	for idx, item := range list {
		list[idx] = fn(item)
	}
	return list
}

// realignChildren moves each child to the pointer its parent implies, which
// changes after a combination type switch or an array toggle.
func (m *SchemaModel) realignChildren(node uischema.Node) error {
	if combination, ok := node.(*uischema.CombinationNode); ok {
		return m.syncCombination(combination)
	}
	parent, ok := node.(uischema.Parent)
	if !ok {
		return nil
	}
	for _, child := range append([]string(nil), parent.ChildPointers()...) {
		want := uischema.ExpectedChildPointer(node, child)
		if err := m.changePointer(child, want); err != nil {
			return err
		}
	}
	return nil
}

// syncCombination renames members so that each is named by its index. The
// renames go through temporary names so that no two members ever share a
// pointer. Definitions listed by a combination root are not members and keep
// their $defs pointers.
func (m *SchemaModel) syncCombination(parent *uischema.CombinationNode) error {
	members := combinationMembers(parent)
	aligned := true
	for idx, child := range members {
		if child != uischema.ChildPointer(parent, strconv.Itoa(idx)) {
			aligned = false
			break
		}
	}
	if aligned {
		return nil
	}
	temporary := make([]string, len(members))
	for idx, child := range members {
		temporary[idx] = uischema.ChildPointer(parent, "tmp"+strconv.Itoa(idx))
		if err := m.changePointer(child, temporary[idx]); err != nil {
			return err
		}
	}
	for idx, child := range temporary {
		if err := m.changePointer(child, uischema.ChildPointer(parent, strconv.Itoa(idx))); err != nil {
			return err
		}
	}
	return nil
}

func combinationMembers(parent *uischema.CombinationNode) []string {
	members := make([]string, 0, len(parent.Children))
	for _, child := range parent.Children {
		if !isRootDefinition(parent, child) {
			members = append(members, child)
		}
	}
	return members
}

func isRootDefinition(parent uischema.Node, child string) bool {
	return parent.Base().Pointer == pointer.Root && pointer.IsDirectDefinition(child)
}

// childSlot maps a member index onto a position in children. Combination
// indexes skip the definitions a combination root lists; other parents index
// children directly. -1 means append.
func childSlot(parent uischema.Node, children []string, index int) int {
	if _, ok := parent.(*uischema.CombinationNode); !ok || index < 0 {
		return index
	}
	member := 0
	for slot, child := range children {
		if isRootDefinition(parent, child) {
			continue
		}
		if member == index {
			return slot
		}
		member++
	}
	return -1
}
