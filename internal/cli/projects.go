package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/dod/internal/form"
	"github.com/Makepad-fr/dod/internal/model"
	"github.com/Makepad-fr/dod/internal/ui"
)

func newCmdProjects(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "List, create and inspect projects",
	}
	cmd.AddCommand(
		newCmdProjectsList(s),
		newCmdProjectsCreate(s),
		newCmdProjectsAddParticipant(s),
		newCmdProjectsShow(s),
	)
	return cmd
}

func newCmdProjectsList(s *state) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the projects you own or participate in",
		Long: `List the projects you own or participate in.

Examples:
  dod projects ls
  dod projects ls --search website   # name or description contains "website"`,
		Args: exactArgs(0, "dod projects ls [--search <term>]"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.requireLogin(); err != nil {
				return err
			}
			all, err := s.app.Client.Projects.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(all) == 0 {
				fmt.Fprintln(out, "No projects yet. Create one with: dod projects create --name <name>")
				return nil
			}
			projects := model.FilterProjects(all, search)
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects found")
				return nil
			}
			printProjects(out, projects, s.app.Session.User())
			fmt.Fprintf(out, "\n%d project(s) found\n", len(projects))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name or description")
	return cmd
}

func printProjects(out io.Writer, projects []model.Project, me *model.User) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tOWNER\tDESCRIPTION")
	fmt.Fprintln(w, "--\t----\t----\t-----\t-----------")
	for _, p := range projects {
		role := "Member"
		if p.OwnedBy(me) {
			role = "Owner"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, ui.Truncate(p.Name, 40), role, p.Owner.DisplayName(), ui.Truncate(p.Description, 50))
	}
	w.Flush()
}

func newCmdProjectsCreate(s *state) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  exactArgs(0, "dod projects create --name <name> [--description <text>]"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.requireLogin(); err != nil {
				return err
			}
			f := form.ProjectForm{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
			if err := form.Validate(f); err != nil {
				return err
			}
			p, err := s.app.Client.Projects.Create(cmd.Context(), f.Name, f.Description)
			if err != nil {
				return fmt.Errorf("create project: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("created project #%d %s", p.ID, p.Name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "project name, 3 to 100 characters")
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional description")
	return cmd
}

func newCmdProjectsAddParticipant(s *state) *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:   "add-participant <project-id>",
		Short: "Give another user access to a project",
		Args:  exactArgs(1, "dod projects add-participant <project-id> --email <email> --role editor|viewer"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				return usagef("invalid project id %q", args[0])
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			f := form.ParticipantForm{Email: strings.TrimSpace(email), Role: strings.ToLower(strings.TrimSpace(role))}
			if err := form.Validate(f); err != nil {
				return err
			}
			r, err := model.ParseRole(f.Role)
			if err != nil {
				return err
			}
			p, err := s.app.Client.Projects.AddParticipant(cmd.Context(), id, f.Email, r)
			if err != nil {
				return fmt.Errorf("add participant: %w", err)
			}
			who := f.Email
			if p != nil && p.User != nil {
				who = p.User.DisplayName() + " <" + p.User.Email + ">"
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("added %s to project #%d as %s", who, id, r))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email of the user to add")
	cmd.Flags().StringVarP(&role, "role", "r", "", "editor or viewer")
	return cmd
}

func newCmdProjectsShow(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project's Definitions of Done with their items",
		Args:  exactArgs(1, "dod projects show <project-id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				return usagef("invalid project id %q", args[0])
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			dods, err := s.app.Client.Projects.ListDoDs(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("list definitions of done: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(dods) == 0 {
				fmt.Fprintf(out, "No Definition of Done yet. Create one with: dod dod create %d --title <title>\n", id)
				return nil
			}
			for i, d := range dods {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, ui.Panel(dodLines(d)))
			}
			return nil
		},
	}
}

func dodLines(d model.DoD) []string {
	t := ui.Current()
	lines := []string{
		fmt.Sprintf("%s  %s  %s", t.Title.Render(d.Title), t.Muted.Render(fmt.Sprintf("#%d", d.ID)), d.Status()),
	}
	if d.Description != "" {
		lines = append(lines, t.Muted.Render(d.Description))
	}
	lines = append(lines, "")
	items := model.SortItems(d.Items)
	if len(items) == 0 {
		lines = append(lines, t.Muted.Render("No items yet"))
	}
	for _, it := range items {
		sym := t.SymOptional
		if it.IsRequired {
			sym = t.SymRequired
		}
		line := fmt.Sprintf("%s %s", sym, it.Title)
		if it.Description != "" {
			line += t.Muted.Render(" - " + it.Description)
		}
		lines = append(lines, line)
	}
	if len(items) > 0 {
		lines = append(lines, "", t.Muted.Render(fmt.Sprintf("%d of %d required", model.RequiredCount(items), len(items))))
	}
	lines = append(lines, t.Muted.Render("Created by: "+d.Creator.DisplayName()))
	return lines
}
