package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/diary/internal/model"
)

func newNotesCmd(a *app) *cobra.Command {
	notesCmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"n"},
		Short:   "Manage notes",
	}

	notesCmd.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
	)
	return notesCmd
}

func newListCmd(a *app) *cobra.Command {
	var search, tag string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes",
		Long: `List your notes, newest first.

Examples:
  diary notes list
  diary notes list --tag work
  diary notes list --search groceries`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, ok := model.ParseFilterTag(tag)
			if !ok {
				return fmt.Errorf("unknown tag %q (want all, %s)", tag, tagNames())
			}

			if err := a.notes.Refresh(cmd.Context()); err != nil {
				return err
			}

			notes := a.notes.Project(search, filter)
			if len(notes) == 0 {
				if a.notes.Len() == 0 {
					a.println("No notes yet. Add one with: diary notes add \"Title\" \"Text\"")
				} else {
					a.println("No notes match.")
				}
				return nil
			}

			a.printf("\n📓 Notes (%d of %d)\n", len(notes), a.notes.Len())
			a.println(strings.Repeat("─", 70))
			for _, n := range notes {
				printNote(a, n)
			}
			a.println()
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive text in title or content")
	cmd.Flags().StringVarP(&tag, "tag", "t", "all", "Filter by tag")
	return cmd
}

func printNote(a *app, n model.Note) {
	title := []rune(n.Title)
	if len(title) > 40 {
		title = append(title[:37], []rune("...")...)
	}
	a.printf("  %-6d %-11s %-40s  %s\n", n.ID, "["+n.Tag.Display()+"]", string(title), n.CreatedAt.Local().Format("Jan 2 15:04"))
}

func tagNames() string {
	names := make([]string, len(model.Tags))
	for i, t := range model.Tags {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func newAddCmd(a *app) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "add [title] [content...]",
		Short: "Add a new note",
		Long: `Add a new note.

Examples:
  diary notes add "Groceries" "milk, bread"
  diary notes add "Standup" "talk about the release" --tag work`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := model.DefaultTag
			if tag != "" {
				parsed, ok := model.ParseTag(tag)
				if !ok {
					return fmt.Errorf("unknown tag %q (want %s)", tag, tagNames())
				}
				t = parsed
			}

			n, err := a.notes.Add(cmd.Context(), args[0], strings.Join(args[1:], " "), t)
			if err != nil {
				return err
			}

			a.printf("✓ Added [%s] #%d: \"%s\"\n", n.Tag.Display(), n.ID, n.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Tag (work, personal, ideas, reminders)")
	return cmd
}

// loadNote refreshes the list and finds note id in it
func loadNote(ctx context.Context, a *app, arg string) (model.Note, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return model.Note{}, fmt.Errorf("invalid note id: %s", arg)
	}
	if err := a.notes.Refresh(ctx); err != nil {
		return model.Note{}, err
	}
	n, ok := a.notes.Get(id)
	if !ok {
		return model.Note{}, fmt.Errorf("note not found: %d", id)
	}
	return n, nil
}

func newEditCmd(a *app) *cobra.Command {
	var title, content, tag string

	cmd := &cobra.Command{
		Use:   "edit [note-id]",
		Short: "Change a note",
		Long: `Change the title, text or tag of a note. Unset flags keep their value.

Examples:
  diary notes edit 12 --tag reminders
  diary notes edit 12 --title "Groceries" --content "milk"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := loadNote(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("title") {
				n.Title = title
			}
			if cmd.Flags().Changed("content") {
				n.Content = content
			}
			if cmd.Flags().Changed("tag") {
				parsed, ok := model.ParseTag(tag)
				if !ok {
					return fmt.Errorf("unknown tag %q (want %s)", tag, tagNames())
				}
				n.Tag = parsed
			}

			updated, err := a.notes.Update(cmd.Context(), n.ID, n.Title, n.Content, n.Tag)
			if err != nil {
				return err
			}
			a.printf("✓ Updated [%s] #%d: \"%s\"\n", updated.Tag.Display(), updated.ID, updated.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New text")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "New tag")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete [note-id]",
		Aliases: []string{"rm"},
		Short:   "Delete a note",
		Long: `Delete a note by its ID.

Examples:
  diary notes delete 12
  diary notes rm 12 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := loadNote(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			if a.cfg.ConfirmDelete && !yes {
				a.printf("About to delete: \"%s\" (ID: %d)\n", n.Title, n.ID)
				if !a.confirm("Are you sure?") {
					a.println("Cancelled.")
					return nil
				}
			}

			if err := a.notes.Remove(cmd.Context(), n.ID); err != nil {
				return err
			}
			a.printf("🗑️  Deleted: \"%s\"\n", n.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
