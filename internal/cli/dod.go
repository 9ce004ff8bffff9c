package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/dod/internal/api"
	"github.com/Makepad-fr/dod/internal/form"
	"github.com/Makepad-fr/dod/internal/model"
	"github.com/Makepad-fr/dod/internal/tui"
	"github.com/Makepad-fr/dod/internal/ui"
)

func newCmdDoD(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dod",
		Short: "Create Definitions of Done and add checklist items",
	}
	cmd.AddCommand(newCmdDoDCreate(s), newCmdDoDAddItem(s))
	return cmd
}

func newCmdDoDCreate(s *state) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "create <project-id>",
		Short: "Attach a new Definition of Done to a project",
		Args:  exactArgs(1, "dod dod create <project-id> --title <title> [--description <text>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := model.ParseID(args[0])
			if err != nil {
				return usagef("invalid project id %q", args[0])
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			f := form.DoDForm{Title: strings.TrimSpace(title), Description: strings.TrimSpace(description)}
			if err := form.Validate(f); err != nil {
				return err
			}
			d, err := s.app.Client.DoDs.Create(cmd.Context(), f.Title, f.Description, projectID)
			if err != nil {
				return fmt.Errorf("create definition of done: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("created DoD #%d %s", d.ID, d.Title))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "checklist title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional description")
	return cmd
}

func newCmdDoDAddItem(s *state) *cobra.Command {
	var (
		title, description string
		optional           bool
		order              int
	)
	cmd := &cobra.Command{
		Use:   "add-item <dod-id>",
		Short: "Add an item to a Definition of Done",
		Long: `Add an item to a Definition of Done. Items are required unless --optional
is given and are displayed by --order (default 0).

Examples:
  dod dod add-item 4 --title "Unit tests pass"
  dod dod add-item 4 --title "Changelog updated" --optional --order 10`,
		Args: exactArgs(1, "dod dod add-item <dod-id> --title <title> [--description <text>] [--optional] [--order <n>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			dodID, err := model.ParseID(args[0])
			if err != nil {
				return usagef("invalid DoD id %q", args[0])
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			f := form.ItemForm{
				Title:       strings.TrimSpace(title),
				Description: strings.TrimSpace(description),
				Order:       order,
				IsRequired:  !optional,
			}
			if err := form.Validate(f); err != nil {
				return err
			}
			item := api.NewItem{Title: f.Title, Description: f.Description}
			if cmd.Flags().Changed("optional") {
				item.IsRequired = &f.IsRequired
			}
			if cmd.Flags().Changed("order") {
				item.Order = &f.Order
			}
			it, err := s.app.Client.DoDs.AddItem(cmd.Context(), dodID, item)
			if err != nil {
				return fmt.Errorf("add item: %w", err)
			}
			kind := "required"
			if !it.IsRequired {
				kind = "optional"
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("added %s item #%d %s", kind, it.ID, it.Title))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "item title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional description")
	cmd.Flags().BoolVar(&optional, "optional", false, "mark the item optional")
	cmd.Flags().IntVar(&order, "order", 0, "display order")
	return cmd
}

func newCmdTUI(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive interface",
		Args:  exactArgs(0, "dod tui"),
		RunE: func(_ *cobra.Command, _ []string) error {
			return tui.Run(s.app)
		},
	}
}
