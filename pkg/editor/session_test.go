package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/goliatone/go-schemamodel/pkg/pointer"
	"github.com/goliatone/go-schemamodel/pkg/schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/testsupport"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

type stubDriver struct {
	inputs   []string
	confirms []bool
	selects  []int
	infos    []string
}

func (d *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", ErrAborted
	}
	out := d.inputs[0]
	d.inputs = d.inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(out); err != nil {
			return "", err
		}
	}
	return out, nil
}

func (d *stubDriver) Confirm(context.Context, ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, ErrAborted
	}
	out := d.confirms[0]
	d.confirms = d.confirms[1:]
	return out, nil
}

func (d *stubDriver) Select(context.Context, SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, ErrAborted
	}
	out := d.selects[0]
	d.selects = d.selects[1:]
	return out, nil
}

func (d *stubDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

type fixture struct {
	session *Session
	driver  *stubDriver
	hook    *test.Hook
	saves   *int
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	saves := 0
	model := schemamodel.NewSavable(schemamodel.NewNodeMap(testsupport.MockNodes()...), func(*schemamodel.SavableSchemaModel) {
		saves++
	})
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	driver := &stubDriver{}
	session, err := NewSession(model, WithPromptDriver(driver), WithLogger(logger))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return fixture{session: session, driver: driver, hook: hook, saves: &saves}
}

func (f fixture) model() *schemamodel.SavableSchemaModel { return f.session.Model() }

func TestAddPropertyGeneratesNames(t *testing.T) {
	f := newFixture(t)

	first, err := f.session.AddProperty(testsupport.ParentPointer, uischema.ObjectKindField)
	if err != nil {
		t.Fatalf("add property: %v", err)
	}
	second, err := f.session.AddProperty(testsupport.ParentPointer, uischema.ObjectKindCombination)
	if err != nil {
		t.Fatalf("add property: %v", err)
	}

	if got := first.Base().Pointer; got != "#/properties/parent/properties/name0" {
		t.Fatalf("unexpected first pointer %q", got)
	}
	if got := second.Base().Pointer; got != "#/properties/parent/properties/name1" {
		t.Fatalf("unexpected second pointer %q", got)
	}
	if f.session.Selected() != schemamodel.UniquePointer(second.Base().Pointer, "") {
		t.Fatalf("expected selection to follow the new node, got %q", f.session.Selected())
	}
	if *f.saves != 2 {
		t.Fatalf("expected two saves, got %d", *f.saves)
	}
	if _, err := f.session.AddProperty(pointer.Root, uischema.ObjectKindReference); !errors.Is(err, schemamodel.ErrInvalidOperation) {
		t.Fatalf("expected references to be refused, got %v", err)
	}
}

func TestAddDefinition(t *testing.T) {
	f := newFixture(t)
	def, err := f.session.AddDefinition()
	if err != nil {
		t.Fatalf("add definition: %v", err)
	}
	if def.Pointer != pointer.Definition("name0") || def.FieldType != uischema.FieldTypeObject {
		t.Fatalf("unexpected definition %+v", def)
	}
}

func TestPromptReferenceUnknownDefinition(t *testing.T) {
	f := newFixture(t)
	before := uischema.CloneNodes(f.model().Nodes())
	f.driver.inputs = []string{"Missing"}

	_, err := f.session.PromptReference(context.Background(), pointer.Root)
	if !errors.Is(err, schemamodel.ErrInvalidReferenceTarget) {
		t.Fatalf("expected invalid reference target, got %v", err)
	}
	if len(f.driver.infos) != 1 {
		t.Fatalf("expected the user to be informed, got %v", f.driver.infos)
	}
	if diff := cmp.Diff(before, f.model().Nodes()); diff != "" {
		t.Fatalf("model changed (-before +after):\n%s", diff)
	}
	if *f.saves != 0 {
		t.Fatalf("expected no save, got %d", *f.saves)
	}
}

func TestPromptReferenceRefusesCycles(t *testing.T) {
	f := newFixture(t)
	f.driver.inputs = []string{"Def1"}

	_, err := f.session.PromptReference(context.Background(), testsupport.Def1Pointer)
	if !errors.Is(err, ErrCircularReference) {
		t.Fatalf("expected circular reference, got %v", err)
	}
	if f.hook.LastEntry() == nil || f.hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("expected a warning to be logged")
	}
}

func TestPromptReferenceAddsReference(t *testing.T) {
	f := newFixture(t)
	f.driver.inputs = []string{" Def2 "}

	ref, err := f.session.PromptReference(context.Background(), pointer.Root)
	if err != nil {
		t.Fatalf("prompt reference: %v", err)
	}
	if ref.Pointer != "#/properties/name0" || ref.Reference != testsupport.Def2Pointer {
		t.Fatalf("unexpected reference %+v", ref)
	}
}

func TestDeleteSelectedRefusesReferencedNodes(t *testing.T) {
	f := newFixture(t)
	if err := f.session.Select(testsupport.Def1Pointer); err != nil {
		t.Fatalf("select: %v", err)
	}

	err := f.session.DeleteSelected(context.Background())
	if !errors.Is(err, schemamodel.ErrReferencedDefinitionDeletion) {
		t.Fatalf("expected referenced deletion error, got %v", err)
	}
	if !f.model().HasNode(testsupport.Def1Pointer) {
		t.Fatalf("definition was deleted")
	}
	if len(f.driver.infos) != 1 {
		t.Fatalf("expected the user to be informed, got %v", f.driver.infos)
	}
}

func TestDeleteSelectedAsksForConfirmation(t *testing.T) {
	f := newFixture(t)
	if err := f.session.DeleteSelected(context.Background()); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected no selection error, got %v", err)
	}
	if err := f.session.Select(testsupport.UnusedDefinitionPointer); err != nil {
		t.Fatalf("select: %v", err)
	}

	f.driver.confirms = []bool{false, true}
	if err := f.session.DeleteSelected(context.Background()); err != nil {
		t.Fatalf("delete declined: %v", err)
	}
	if !f.model().HasNode(testsupport.UnusedDefinitionPointer) {
		t.Fatalf("declined delete removed the node")
	}
	if err := f.session.DeleteSelected(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if f.model().HasNode(testsupport.UnusedDefinitionPointer) {
		t.Fatalf("expected node to be deleted")
	}
	if f.session.Selected() != "" {
		t.Fatalf("expected selection to be cleared")
	}
	if *f.saves != 1 {
		t.Fatalf("expected one save, got %d", *f.saves)
	}
}

func TestRenameDefinitionKeepsReferences(t *testing.T) {
	f := newFixture(t)
	if err := f.session.Select(testsupport.Def1NamePointer); err != nil {
		t.Fatalf("select: %v", err)
	}

	if _, err := f.session.Rename(testsupport.Def1Pointer, "Person"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !f.model().HasNode("#/$defs/Person") || f.model().HasNode(testsupport.Def1Pointer) {
		t.Fatalf("expected definition to be renamed")
	}
	ref, err := f.model().Node(testsupport.ParentRefPointer)
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	if got := ref.(*uischema.ReferenceNode).Reference; got != "#/$defs/Person" {
		t.Fatalf("expected reference to follow, got %q", got)
	}
	if want := schemamodel.UniquePointerPrefix + "#/$defs/Person/properties/name"; f.session.Selected() != want {
		t.Fatalf("expected selection %q, got %q", want, f.session.Selected())
	}
	if _, err := f.session.Rename(testsupport.ChildPointer, " "); !errors.Is(err, schemamodel.ErrNameRequired) {
		t.Fatalf("expected name required, got %v", err)
	}
}

func TestMoveFollowsSelectionAndRefusesCycles(t *testing.T) {
	f := newFixture(t)
	if err := f.session.Select(testsupport.ChildPointer); err != nil {
		t.Fatalf("select: %v", err)
	}

	moved, err := f.session.Move(context.Background(), testsupport.ChildPointer, schemamodel.At(testsupport.Def1Pointer, -1))
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if want := "#/$defs/Def1/properties/child"; moved.Base().Pointer != want {
		t.Fatalf("expected %q, got %q", want, moved.Base().Pointer)
	}
	if f.session.Selected() != schemamodel.UniquePointerPrefix+moved.Base().Pointer {
		t.Fatalf("selection did not follow: %q", f.session.Selected())
	}

	_, err = f.session.Move(context.Background(), testsupport.ParentPointer, schemamodel.At(testsupport.Def1Pointer, -1))
	if !errors.Is(err, ErrCircularReference) {
		t.Fatalf("expected circular reference, got %v", err)
	}
}

func TestAttributeEdits(t *testing.T) {
	f := newFixture(t)

	node, err := f.session.SetTitle(testsupport.ParentPointer, "<b>Owner</b> & co")
	if err != nil {
		t.Fatalf("set title: %v", err)
	}
	if node.Base().Title != "Owner & co" {
		t.Fatalf("expected sanitized title, got %q", node.Base().Title)
	}

	if _, err := f.session.SetDescription(testsupport.ParentPointer, "<script>alert(1)</script>Plain"); err != nil {
		t.Fatalf("set description: %v", err)
	}
	if _, err := f.session.SetRestriction(testsupport.ChildPointer, "pattern", "^[a-z]+$"); err != nil {
		t.Fatalf("set restriction: %v", err)
	}
	node, err = f.session.SetRestriction(testsupport.ChildPointer, "minLength", nil)
	if err != nil {
		t.Fatalf("remove restriction: %v", err)
	}
	want := uischema.Restrictions{"maxLength": 20, "pattern": "^[a-z]+$"}
	if diff := cmp.Diff(want, node.Base().Restrictions); diff != "" {
		t.Fatalf("restrictions (-want +got):\n%s", diff)
	}

	node, err = f.session.SetRequired(testsupport.ChildPointer, false)
	if err != nil || node.Base().IsRequired {
		t.Fatalf("expected child to be optional, err %v", err)
	}
	node, err = f.session.SetFieldType(testsupport.ChildPointer, uischema.FieldTypeInteger)
	if err != nil || node.(*uischema.FieldNode).FieldType != uischema.FieldTypeInteger {
		t.Fatalf("expected integer child, err %v", err)
	}

	node, err = f.session.ToggleArray(testsupport.ChildPointer)
	if err != nil || !node.Base().IsArray {
		t.Fatalf("expected array child, err %v", err)
	}
	node, err = f.session.ChangeCombination(testsupport.CombinationPointer, uischema.CombinationOneOf)
	if err != nil || node.(*uischema.CombinationNode).CombinationType != uischema.CombinationOneOf {
		t.Fatalf("expected oneOf combination, err %v", err)
	}
	if *f.saves != 8 {
		t.Fatalf("expected eight saves, got %d", *f.saves)
	}
}

func TestConvertSelected(t *testing.T) {
	f := newFixture(t)
	if err := f.session.Select(testsupport.ChildPointer); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := f.session.ConvertSelected(); err != nil {
		t.Fatalf("convert: %v", err)
	}
	node, err := f.model().Node(testsupport.ChildPointer)
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	ref, ok := node.(*uischema.ReferenceNode)
	if !ok || ref.Reference != pointer.Definition("child") {
		t.Fatalf("expected reference to the new definition, got %+v", node)
	}
}

func TestRunLoop(t *testing.T) {
	f := newFixture(t)
	f.driver.selects = []int{
		indexOf(actions, ActionAddDefinition),
		indexOf(actions, ActionAddField),
		indexOf(actions, ActionOutline),
		indexOf(actions, ActionQuit),
	}

	if err := f.session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !f.model().HasNode("#/$defs/name0/properties/name0") {
		t.Fatalf("expected a field inside the new definition")
	}
	if len(f.driver.infos) != 1 {
		t.Fatalf("expected the outline to be shown, got %v", f.driver.infos)
	}
}

func TestRunReportsFailuresAndContinues(t *testing.T) {
	f := newFixture(t)
	f.driver.selects = []int{indexOf(actions, ActionDelete), indexOf(actions, ActionQuit)}

	if err := f.session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(f.driver.infos) != 1 {
		t.Fatalf("expected failure to be reported, got %v", f.driver.infos)
	}
}

func TestNewSessionValidatesSelection(t *testing.T) {
	model := schemamodel.NewSavable(schemamodel.NewNodeMap(testsupport.MockNodes()...), nil)
	if _, err := NewSession(nil); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, err := NewSession(model, WithPromptDriver(&stubDriver{}), WithSelection(schemamodel.UniquePointerPrefix+"#/properties/nope")); err == nil {
		t.Fatalf("expected error for unknown selection")
	}
}
