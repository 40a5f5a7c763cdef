package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/editor"
	pkgopenapi "github.com/goliatone/go-schemamodel/pkg/openapi"
	"github.com/goliatone/go-schemamodel/pkg/pointer"
	"github.com/goliatone/go-schemamodel/pkg/schema"
	engine "github.com/goliatone/go-schemamodel/pkg/schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

func newRootCommand(logger *logrus.Logger) *cobra.Command {
	a := &app{logger: logger}
	root := &cobra.Command{
		Use:               "schemamodel",
		Short:             "Inspect and edit JSON Schema documents as a node graph",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&a.file, "file", "f", "schema.json", "schema document: path, URL or - for stdin")
	flags.StringVarP(&a.output, "output", "o", "", "write edits here instead of --file")
	flags.StringVar(&a.format, "format", "", "output format: json or yaml (default from the output extension)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&a.strictDialect, "strict-dialect", false, "require a draft 2020-12 $schema")

	root.AddCommand(
		newInspectCommand(a),
		newValidateCommand(a),
		newAddFieldCommand(a),
		newAddCombinationCommand(a),
		newAddReferenceCommand(a),
		newAddDefinitionCommand(a),
		newDeleteCommand(a),
		newMoveCommand(a),
		newConvertCommand(a),
		newRenameCommand(a),
		newImportOpenAPICommand(a),
		newEditCommand(a),
	)
	return root
}

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the document as an outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.open(cmd)
			if err != nil {
				return err
			}
			_, err = editor.RenderOutline(ws.model.SchemaModel, cmd.OutOrStdout())
			return err
		},
	}
}

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the document forms a well formed node graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.open(cmd)
			if err != nil {
				return err
			}
			if err := ws.model.Validate(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d nodes, %d definitions\n",
				ws.doc.Location(), ws.model.NodeMap().Len(), len(ws.model.Definitions()))
			return err
		},
	}
}

type placement struct {
	parent string
	index  int
}

func (p *placement) bind(flags *pflag.FlagSet, parentFlag string) {
	flags.StringVar(&p.parent, parentFlag, pointer.Root, "pointer of the parent node")
	flags.IntVar(&p.index, "index", -1, "position among the parent's children, -1 appends")
}

func (p placement) position() engine.NodePosition {
	return engine.At(p.parent, p.index)
}

func newAddFieldCommand(a *app) *cobra.Command {
	var (
		at        placement
		fieldType string
		required  bool
		array     bool
	)
	cmd := &cobra.Command{
		Use:   "add-field NAME",
		Short: "Add a field below a parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, func(_ context.Context, ws *workspace) error {
				node := uischema.NewFieldNode(uischema.FieldType(fieldType))
				node.IsRequired = required
				node.IsArray = array
				added, err := ws.model.AddNode(args[0], node, at.position())
				if err != nil {
					return err
				}
				return printPointer(cmd, added)
			})
		},
	}
	at.bind(cmd.Flags(), "parent")
	cmd.Flags().StringVarP(&fieldType, "type", "t", string(uischema.FieldTypeString), "field type")
	cmd.Flags().BoolVar(&required, "required", false, "mark the field as required")
	cmd.Flags().BoolVar(&array, "array", false, "make the field an array")
	return cmd
}

func newAddCombinationCommand(a *app) *cobra.Command {
	var (
		at   placement
		kind string
	)
	cmd := &cobra.Command{
		Use:   "add-combination NAME",
		Short: "Add an allOf, anyOf or oneOf combination below a parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, func(_ context.Context, ws *workspace) error {
				added, err := ws.model.AddCombination(args[0], at.position(), uischema.CombinationKind(kind))
				if err != nil {
					return err
				}
				return printPointer(cmd, added)
			})
		},
	}
	at.bind(cmd.Flags(), "parent")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(uischema.CombinationAnyOf), "combination keyword")
	return cmd
}

func newAddReferenceCommand(a *app) *cobra.Command {
	var at placement
	cmd := &cobra.Command{
		Use:   "add-reference NAME DEFINITION",
		Short: "Add a reference to a definition below a parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, func(_ context.Context, ws *workspace) error {
				if ws.model.HasDefinition(args[1]) && ws.model.WillResultInCircularReferences(pointer.Definition(args[1]), at.parent) {
					return fmt.Errorf("%w: %s below %s", editor.ErrCircularReference, args[1], at.parent)
				}
				added, err := ws.model.AddReference(args[0], args[1], at.position())
				if err != nil {
					return err
				}
				return printPointer(cmd, added)
			})
		},
	}
	at.bind(cmd.Flags(), "parent")
	return cmd
}

func newAddDefinitionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-definition [NAME]",
		Short: "Add an object definition under $defs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, func(_ context.Context, ws *workspace) error {
				name := ws.model.GenerateUniqueDefinitionName(editor.DefaultNamePrefix)
				if len(args) == 1 {
					name = args[0]
				}
				added, err := ws.model.AddFieldType(name)
				if err != nil {
					return err
				}
				return printPointer(cmd, added)
			})
		},
	}
}

func newDeleteCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete POINTER",
		Short: "Delete a node and its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, func(ctx context.Context, ws *workspace) error {
				if yes {
					_, err := ws.model.DeleteNode(args[0])
					return err
				}
				session, err := a.session(cmd, ws)
				if err != nil {
					return err
				}
				if err := session.Select(args[0]); err != nil {
					return err
				}
				return session.DeleteSelected(ctx)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newMoveCommand(a *app) *cobra.Command {
	var at placement
	cmd := &cobra.Command{
		Use:   "move POINTER",
		Short: "Move a node below another parent or to another index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, func(ctx context.Context, ws *workspace) error {
				session, err := a.session(cmd, ws)
				if err != nil {
					return err
				}
				moved, err := session.Move(ctx, args[0], at.position())
				if err != nil {
					return err
				}
				return printPointer(cmd, moved)
			})
		},
	}
	at.bind(cmd.Flags(), "to")
	return cmd
}

func newConvertCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert POINTER",
		Short: "Turn a node into a definition and reference it in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, func(_ context.Context, ws *workspace) error {
				if _, err := ws.model.ConvertToDefinition(args[0]); err != nil {
					return err
				}
				node, err := ws.model.Node(args[0])
				if err != nil {
					return err
				}
				if ref, ok := node.(*uischema.ReferenceNode); ok {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), ref.Reference)
				}
				return err
			})
		},
	}
}

func newRenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename POINTER NAME",
		Short: "Rename a property or definition; references follow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, func(_ context.Context, ws *workspace) error {
				session, err := a.session(cmd, ws)
				if err != nil {
					return err
				}
				renamed, err := session.Rename(args[0], args[1])
				if err != nil {
					return err
				}
				return printPointer(cmd, renamed)
			})
		},
	}
}

func newImportOpenAPICommand(a *app) *cobra.Command {
	var (
		validate bool
		external bool
		title    string
	)
	cmd := &cobra.Command{
		Use:   "import-openapi LOCATION",
		Short: "Convert OpenAPI component schemas into a schema document written to --output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.output == "" {
				return fmt.Errorf("--output is required")
			}
			src, err := schema.ParseSource(args[0])
			if err != nil {
				return err
			}
			doc, err := a.loader(cmd.InOrStdin()).Load(cmd.Context(), src)
			if err != nil {
				return err
			}
			importer := schemamodel.NewImporter(
				pkgopenapi.WithValidation(validate),
				pkgopenapi.WithExternalReferences(external),
				pkgopenapi.WithTitle(title),
			)
			nodes, err := pkgopenapi.ImportNodes(cmd.Context(), importer, doc)
			if err != nil {
				return err
			}
			saver := editor.NewFileSaver(a.output, a.outputFormat(doc, a.output), editor.WithSaverLogger(a.logger))
			if err := saver.Write(nodes); err != nil {
				return err
			}
			a.logger.WithFields(logrus.Fields{"source": doc.Location(), "output": a.output, "nodes": len(nodes)}).Info("imported components")
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", true, "validate the OpenAPI document first")
	cmd.Flags().BoolVar(&external, "external-refs", false, "allow references to other documents")
	cmd.Flags().StringVar(&title, "title", "", "title of the generated document")
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the document interactively; every change is saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.edit(cmd, func(ctx context.Context, ws *workspace) error {
				session, err := a.session(cmd, ws)
				if err != nil {
					return err
				}
				return session.Run(ctx)
			})
		},
	}
}

func printPointer(cmd *cobra.Command, node uischema.Node) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), node.Base().Pointer)
	return err
}
