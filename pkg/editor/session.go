package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-schemamodel/pkg/pointer"
	"github.com/goliatone/go-schemamodel/pkg/schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

// DefaultNamePrefix seeds generated property and definition names.
const DefaultNamePrefix = "name"

// Session owns a SavableSchemaModel together with the current selection. The
// selection is a unique pointer so a definition shown below a reference keeps
// its place in the tree.
type Session struct {
	model    *schemamodel.SavableSchemaModel
	driver   PromptDriver
	logger   logrus.FieldLogger
	selected string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) SessionOption {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithLogger routes session logs to logger.
func WithLogger(logger logrus.FieldLogger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSelection preselects the node at the unique pointer.
func WithSelection(unique string) SessionOption {
	return func(s *Session) {
		s.selected = unique
	}
}

// NewSession wraps model. The default driver prompts on the terminal through
// survey and the default logger is logrus' standard logger.
func NewSession(model *schemamodel.SavableSchemaModel, options ...SessionOption) (*Session, error) {
	if model == nil {
		return nil, errors.New("editor: model is required")
	}
	s := &Session{
		model:  model,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	if s.selected != "" {
		if _, err := model.SchemaPointerByUniquePointer(s.selected); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) Model() *schemamodel.SavableSchemaModel { return s.model }

// Selected returns the unique pointer of the selection, or "".
func (s *Session) Selected() string { return s.selected }

// SelectedPointer resolves the selection to its schema pointer.
func (s *Session) SelectedPointer() (string, error) {
	if s.selected == "" {
		return "", ErrNoSelection
	}
	return s.model.SchemaPointerByUniquePointer(s.selected)
}

// Select marks the node at schema pointer ptr as selected.
func (s *Session) Select(ptr string) error {
	if !s.model.HasNode(ptr) {
		return fmt.Errorf("%w: %q", schemamodel.ErrNotFound, ptr)
	}
	s.selected = schemamodel.UniquePointer(ptr, "")
	return nil
}

// SelectUnique marks the node at a unique pointer as selected.
func (s *Session) SelectUnique(unique string) error {
	if _, err := s.model.SchemaPointerByUniquePointer(unique); err != nil {
		return err
	}
	s.selected = unique
	return nil
}

func (s *Session) ClearSelection() { s.selected = "" }

// AddProperty appends a field or combination below parentPtr under a fresh
// name and selects it. References need a target and go through
// PromptReference.
func (s *Session) AddProperty(parentPtr string, kind uischema.ObjectKind) (uischema.Node, error) {
	name, err := s.model.GenerateUniqueChildName(parentPtr, DefaultNamePrefix)
	if err != nil {
		return nil, err
	}
	target := schemamodel.At(parentPtr, -1)

	var node uischema.Node
	switch kind {
	case uischema.ObjectKindField:
		node, err = s.model.AddField(name, uischema.FieldTypeString, target)
	case uischema.ObjectKindCombination:
		node, err = s.model.AddCombination(name, target, uischema.CombinationAnyOf)
	default:
		return nil, fmt.Errorf("%w: add %s with PromptReference", schemamodel.ErrInvalidOperation, kind)
	}
	if err != nil {
		return nil, err
	}
	s.selected = schemamodel.UniquePointer(node.Base().Pointer, "")
	s.logger.WithFields(logrus.Fields{"pointer": node.Base().Pointer, "kind": kind}).Info("added property")
	return node, nil
}

// AddDefinition creates an object definition under a fresh name and selects
// it.
func (s *Session) AddDefinition() (*uischema.FieldNode, error) {
	name := s.model.GenerateUniqueDefinitionName(DefaultNamePrefix)
	node, err := s.model.AddFieldType(name)
	if err != nil {
		return nil, err
	}
	s.selected = schemamodel.UniquePointer(node.Pointer, "")
	s.logger.WithField("pointer", node.Pointer).Info("added definition")
	return node, nil
}

// PromptReference asks for a definition name and appends a reference to it
// below parentPtr. Unknown names and cycles are reported to the user and
// returned as errors with the model untouched.
func (s *Session) PromptReference(ctx context.Context, parentPtr string) (*uischema.ReferenceNode, error) {
	answer, err := s.driver.Input(ctx, InputConfig{
		Message: "Name of the definition to reference",
		Help:    "Definitions live under $defs",
	})
	if err != nil {
		return nil, err
	}
	target := strings.TrimSpace(answer)

	if s.model.HasDefinition(target) && s.model.WillResultInCircularReferences(pointer.Definition(target), parentPtr) {
		s.inform(ctx, fmt.Sprintf("Referencing %q here would create a circular reference.", target))
		return nil, fmt.Errorf("%w: %s below %s", ErrCircularReference, target, parentPtr)
	}

	name, err := s.model.GenerateUniqueChildName(parentPtr, DefaultNamePrefix)
	if err != nil {
		return nil, err
	}
	node, err := s.model.AddReference(name, target, schemamodel.At(parentPtr, -1))
	if errors.Is(err, schemamodel.ErrInvalidReferenceTarget) {
		s.inform(ctx, fmt.Sprintf("There is no definition named %q.", target))
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s.selected = schemamodel.UniquePointer(node.Pointer, "")
	s.logger.WithFields(logrus.Fields{"pointer": node.Pointer, "reference": node.Reference}).Info("added reference")
	return node, nil
}

// DeleteSelected removes the selected node after confirmation. Nodes that are
// still referenced are refused with an explanation.
func (s *Session) DeleteSelected(ctx context.Context) error {
	ptr, err := s.SelectedPointer()
	if err != nil {
		return err
	}
	if referrers := s.model.ReferringNodes(ptr); len(referrers) > 0 {
		s.inform(ctx, fmt.Sprintf("%s is used by %d reference(s) and cannot be deleted.", pointer.ExtractName(ptr), len(referrers)))
		return fmt.Errorf("%w: %q", schemamodel.ErrReferencedDefinitionDeletion, ptr)
	}
	ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Delete %s?", pointer.ExtractName(ptr))})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if _, err := s.model.DeleteNode(ptr); err != nil {
		return err
	}
	s.selected = ""
	s.logger.WithField("pointer", ptr).Info("deleted node")
	return nil
}

// Move relocates the node at ptr. The selection follows the node.
func (s *Session) Move(ctx context.Context, ptr string, target schemamodel.NodePosition) (uischema.Node, error) {
	if s.model.WillResultInCircularReferences(ptr, target.ParentPointer) {
		s.inform(ctx, fmt.Sprintf("Moving %s there would create a circular reference.", pointer.ExtractName(ptr)))
		return nil, fmt.Errorf("%w: %s below %s", ErrCircularReference, ptr, target.ParentPointer)
	}
	node, err := s.model.MoveNode(ptr, target)
	if err != nil {
		return nil, err
	}
	s.follow(ptr, node.Base().Pointer)
	s.logger.WithFields(logrus.Fields{"from": ptr, "to": node.Base().Pointer}).Info("moved node")
	return node, nil
}

// ConvertSelected turns the selected node into a definition and leaves a
// reference in its place.
func (s *Session) ConvertSelected() error {
	ptr, err := s.SelectedPointer()
	if err != nil {
		return err
	}
	if _, err := s.model.ConvertToDefinition(ptr); err != nil {
		return err
	}
	if ref, err := s.model.Node(ptr); err == nil {
		if typed, ok := ref.(*uischema.ReferenceNode); ok {
			s.logger.WithFields(logrus.Fields{"pointer": ptr, "definition": typed.Reference}).Info("converted to definition")
		}
	}
	return nil
}

// Rename gives the node at ptr a new name. Definitions keep their references
// because the engine rewrites them.
func (s *Session) Rename(ptr, newName string) (uischema.Node, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, schemamodel.ErrNameRequired
	}
	newPtr, err := s.siblingPointer(ptr, newName)
	if err != nil {
		return nil, err
	}
	node, err := s.update(ptr, func(base *uischema.Common) { base.Pointer = newPtr })
	if err != nil {
		return nil, err
	}
	s.follow(ptr, newPtr)
	s.logger.WithFields(logrus.Fields{"from": ptr, "to": newPtr}).Info("renamed node")
	return node, nil
}

// SetTitle stores a sanitized title on the node at ptr.
func (s *Session) SetTitle(ptr, title string) (uischema.Node, error) {
	return s.update(ptr, func(base *uischema.Common) { base.Title = SanitizeText(title) })
}

// SetDescription stores a sanitized description on the node at ptr.
func (s *Session) SetDescription(ptr, description string) (uischema.Node, error) {
	return s.update(ptr, func(base *uischema.Common) { base.Description = SanitizeText(description) })
}

// SetRestriction sets a validation keyword on the node at ptr. A nil value
// removes the keyword.
func (s *Session) SetRestriction(ptr, keyword string, value any) (uischema.Node, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: restriction keyword is required", schemamodel.ErrInvalidOperation)
	}
	return s.update(ptr, func(base *uischema.Common) {
		if value == nil {
			delete(base.Restrictions, keyword)
			if len(base.Restrictions) == 0 {
				base.Restrictions = nil
			}
			return
		}
		if base.Restrictions == nil {
			base.Restrictions = uischema.Restrictions{}
		}
		base.Restrictions[keyword] = value
	})
}

// SetRequired toggles whether the node at ptr is required by its parent.
func (s *Session) SetRequired(ptr string, required bool) (uischema.Node, error) {
	return s.update(ptr, func(base *uischema.Common) { base.IsRequired = required })
}

// SetFieldType changes the type of the field at ptr.
func (s *Session) SetFieldType(ptr string, fieldType uischema.FieldType) (uischema.Node, error) {
	current, err := s.model.Node(ptr)
	if err != nil {
		return nil, err
	}
	field, ok := current.(*uischema.FieldNode)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a field", schemamodel.ErrInvalidOperation, ptr)
	}
	replacement := field.Clone().(*uischema.FieldNode)
	replacement.FieldType = fieldType
	replacement.ImplicitType = false
	if _, err := s.model.UpdateNode(ptr, replacement); err != nil {
		return nil, err
	}
	return s.model.Node(ptr)
}

// ToggleArray flips the array flag of the node at ptr.
func (s *Session) ToggleArray(ptr string) (uischema.Node, error) {
	if _, err := s.model.ToggleIsArray(ptr); err != nil {
		return nil, err
	}
	return s.model.Node(ptr)
}

// ChangeCombination switches the combination keyword of the node at ptr.
func (s *Session) ChangeCombination(ptr string, kind uischema.CombinationKind) (uischema.Node, error) {
	if _, err := s.model.ChangeCombinationType(ptr, kind); err != nil {
		return nil, err
	}
	node, err := s.model.Node(ptr)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"pointer": ptr, "combination": kind}).Debug("changed combination")
	return node, nil
}

func (s *Session) update(ptr string, edit func(base *uischema.Common)) (uischema.Node, error) {
	current, err := s.model.Node(ptr)
	if err != nil {
		return nil, err
	}
	replacement := current.Clone()
	edit(replacement.Base())
	if _, err := s.model.UpdateNode(ptr, replacement); err != nil {
		return nil, err
	}
	return s.model.Node(replacement.Base().Pointer)
}

func (s *Session) siblingPointer(ptr, name string) (string, error) {
	if pointer.IsDirectDefinition(ptr) {
		return pointer.Definition(name), nil
	}
	parent, err := s.model.ParentNode(ptr)
	if err != nil {
		return "", err
	}
	return uischema.ChildPointer(parent, name), nil
}

// follow keeps the selection on a node whose pointer changed from oldPtr to
// newPtr.
func (s *Session) follow(oldPtr, newPtr string) {
	if s.selected == "" {
		return
	}
	current := strings.TrimPrefix(s.selected, schemamodel.UniquePointerPrefix)
	if current == oldPtr || pointer.IsAncestor(oldPtr, current) {
		s.selected = schemamodel.UniquePointerPrefix + pointer.ReplaceStart(current, oldPtr, newPtr)
	}
}

func (s *Session) inform(ctx context.Context, msg string) {
	s.logger.Warn(msg)
	if err := s.driver.Info(ctx, msg); err != nil {
		s.logger.WithError(err).Debug("prompt driver failed to show message")
	}
}
