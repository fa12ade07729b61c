package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/vuec/cmd/vuec/internal/ui"
)

func newExploreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore <file>",
		Short: "Browse the AST of a template interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer p.Close()

			result, err := p.processor.ProcessFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			tree, err := result.Tree()
			if err != nil {
				return err
			}

			model := ui.NewExplorer(result.Path, tree, result.Warnings())
			program := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("explorer failed: %w", err)
			}
			return nil
		},
	}
	return cmd
}
