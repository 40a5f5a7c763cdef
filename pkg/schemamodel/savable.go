package schemamodel

import "github.com/goliatone/go-schemamodel/pkg/uischema"

// SaveFunc persists a model after an edit.
type SaveFunc func(*SavableSchemaModel)

// SavableSchemaModel calls its SaveFunc exactly once after every successful
// mutating operation. Failed operations do not save. It shares the node map it
// is built from; clone first when independence is needed.
type SavableSchemaModel struct {
	*SchemaModel
	save SaveFunc
}

// NewSavable wraps nodes without copying them.
func NewSavable(nodes *NodeMap, save SaveFunc) *SavableSchemaModel {
	if save == nil {
		save = func(*SavableSchemaModel) {}
	}
	return &SavableSchemaModel{SchemaModel: New(nodes), save: save}
}

// Save invokes the callback and returns the receiver.
func (s *SavableSchemaModel) Save() *SavableSchemaModel {
	s.save(s)
	return s
}

func (s *SavableSchemaModel) AddNode(name string, node uischema.Node, target NodePosition) (uischema.Node, error) {
	added, err := s.SchemaModel.AddNode(name, node, target)
	if err != nil {
		return nil, err
	}
	s.Save()
	return added, nil
}

func (s *SavableSchemaModel) AddField(name string, fieldType uischema.FieldType, target NodePosition) (*uischema.FieldNode, error) {
	added, err := s.SchemaModel.AddField(name, fieldType, target)
	if err != nil {
		return nil, err
	}
	s.Save()
	return added, nil
}

func (s *SavableSchemaModel) AddCombination(name string, target NodePosition, kind uischema.CombinationKind) (*uischema.CombinationNode, error) {
	added, err := s.SchemaModel.AddCombination(name, target, kind)
	if err != nil {
		return nil, err
	}
	s.Save()
	return added, nil
}

func (s *SavableSchemaModel) AddReference(name, referredName string, target NodePosition) (*uischema.ReferenceNode, error) {
	added, err := s.SchemaModel.AddReference(name, referredName, target)
	if err != nil {
		return nil, err
	}
	s.Save()
	return added, nil
}

func (s *SavableSchemaModel) AddType(name string, node uischema.Node) (uischema.Node, error) {
	added, err := s.SchemaModel.AddType(name, node)
	if err != nil {
		return nil, err
	}
	s.Save()
	return added, nil
}

func (s *SavableSchemaModel) AddFieldType(name string) (*uischema.FieldNode, error) {
	added, err := s.SchemaModel.AddFieldType(name)
	if err != nil {
		return nil, err
	}
	s.Save()
	return added, nil
}

func (s *SavableSchemaModel) DeleteNode(ptr string) (*SavableSchemaModel, error) {
	if _, err := s.SchemaModel.DeleteNode(ptr); err != nil {
		return nil, err
	}
	return s.Save(), nil
}

// MoveNode returns the moved node, not the decorator.
func (s *SavableSchemaModel) MoveNode(ptr string, target NodePosition) (uischema.Node, error) {
	moved, err := s.SchemaModel.MoveNode(ptr, target)
	if err != nil {
		return nil, err
	}
	s.Save()
	return moved, nil
}

func (s *SavableSchemaModel) UpdateNode(ptr string, replacement uischema.Node) (*SavableSchemaModel, error) {
	if _, err := s.SchemaModel.UpdateNode(ptr, replacement); err != nil {
		return nil, err
	}
	return s.Save(), nil
}

func (s *SavableSchemaModel) ConvertToDefinition(ptr string) (*SavableSchemaModel, error) {
	if _, err := s.SchemaModel.ConvertToDefinition(ptr); err != nil {
		return nil, err
	}
	return s.Save(), nil
}

func (s *SavableSchemaModel) ChangeCombinationType(ptr string, kind uischema.CombinationKind) (*SavableSchemaModel, error) {
	if _, err := s.SchemaModel.ChangeCombinationType(ptr, kind); err != nil {
		return nil, err
	}
	return s.Save(), nil
}

func (s *SavableSchemaModel) ToggleIsArray(ptr string) (*SavableSchemaModel, error) {
	if _, err := s.SchemaModel.ToggleIsArray(ptr); err != nil {
		return nil, err
	}
	return s.Save(), nil
}
