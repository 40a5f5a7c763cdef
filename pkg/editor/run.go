package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-schemamodel/pkg/pointer"
	"github.com/goliatone/go-schemamodel/pkg/schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

// Action names offered by Run.
const (
	ActionOutline        = "Show outline"
	ActionSelect         = "Select node"
	ActionAddField       = "Add field"
	ActionAddCombination = "Add combination"
	ActionAddReference   = "Add reference"
	ActionAddDefinition  = "Add definition"
	ActionRename         = "Rename selected"
	ActionTitle          = "Set title of selected"
	ActionToggleArray    = "Toggle array on selected"
	ActionConvert        = "Convert selected to definition"
	ActionDelete         = "Delete selected"
	ActionQuit           = "Quit"
)

var actions = []string{
	ActionOutline, ActionSelect, ActionAddField, ActionAddCombination,
	ActionAddReference, ActionAddDefinition, ActionRename, ActionTitle,
	ActionToggleArray, ActionConvert, ActionDelete, ActionQuit,
}

// Run loops over the action menu until the user quits or aborts. Failed
// actions are reported and the loop continues; the model is unchanged by a
// failed action.
func (s *Session) Run(ctx context.Context) error {
	for {
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:  s.prompt(),
			Options:  actions,
			PageSize: len(actions),
		})
		if errors.Is(err, ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(actions) || actions[idx] == ActionQuit {
			return nil
		}
		if err := s.perform(ctx, actions[idx]); err != nil {
			if errors.Is(err, ErrAborted) {
				return nil
			}
			s.inform(ctx, "Error: "+err.Error())
		}
	}
}

func (s *Session) prompt() string {
	ptr, err := s.SelectedPointer()
	if err != nil {
		return "What do you want to do?"
	}
	return fmt.Sprintf("Selected %s. What do you want to do?", ptr)
}

// target is the pointer new nodes are added below: the selection when it can
// hold children, otherwise the root.
func (s *Session) target() string {
	ptr, err := s.SelectedPointer()
	if err != nil {
		return pointer.Root
	}
	node, err := s.model.FinalNode(ptr)
	if err != nil || !uischema.IsValidParent(node) {
		return pointer.Root
	}
	return ptr
}

func (s *Session) perform(ctx context.Context, action string) error {
	switch action {
	case ActionOutline:
		rendered, err := RenderOutline(s.model.SchemaModel)
		if err != nil {
			return err
		}
		return s.driver.Info(ctx, rendered)
	case ActionSelect:
		return s.promptSelection(ctx)
	case ActionAddField:
		_, err := s.AddProperty(s.target(), uischema.ObjectKindField)
		return err
	case ActionAddCombination:
		_, err := s.AddProperty(s.target(), uischema.ObjectKindCombination)
		return err
	case ActionAddReference:
		_, err := s.PromptReference(ctx, s.target())
		return err
	case ActionAddDefinition:
		_, err := s.AddDefinition()
		return err
	case ActionRename:
		ptr, err := s.SelectedPointer()
		if err != nil {
			return err
		}
		name, err := s.driver.Input(ctx, InputConfig{Message: "New name", Default: pointer.ExtractName(ptr)})
		if err != nil {
			return err
		}
		_, err = s.Rename(ptr, name)
		return err
	case ActionTitle:
		ptr, err := s.SelectedPointer()
		if err != nil {
			return err
		}
		node, err := s.model.Node(ptr)
		if err != nil {
			return err
		}
		title, err := s.driver.Input(ctx, InputConfig{Message: "Title", Default: node.Base().Title})
		if err != nil {
			return err
		}
		_, err = s.SetTitle(ptr, title)
		return err
	case ActionToggleArray:
		ptr, err := s.SelectedPointer()
		if err != nil {
			return err
		}
		_, err = s.ToggleArray(ptr)
		return err
	case ActionConvert:
		return s.ConvertSelected()
	case ActionDelete:
		return s.DeleteSelected(ctx)
	default:
		return fmt.Errorf("%w: unknown action %q", schemamodel.ErrInvalidOperation, action)
	}
}

func (s *Session) promptSelection(ctx context.Context) error {
	keys := s.model.NodeMap().Keys()
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:  "Select a node",
		Options:  keys,
		PageSize: 15,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(keys) {
		return fmt.Errorf("%w: selection %d", schemamodel.ErrNotFound, idx)
	}
	return s.Select(keys[idx])
}
