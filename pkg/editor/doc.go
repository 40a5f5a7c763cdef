// Package editor drives a SavableSchemaModel the way an interactive schema
// editor does: it keeps a selection, asks the user through a PromptDriver,
// refuses edits that would break references and saves through a FileSaver.
package editor
