package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsync/internal/capture"
	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/launcher"
	"github.com/teemow/meetsync/internal/notion"
)

// newCaptureService builds the capture service. Without a Notion token the
// store stays nil and actions report the missing configuration.
func newCaptureService(cfg *config.Config) *capture.Service {
	var store capture.Store
	if client, err := notion.NewClientFromConfig(cfg, nil); err == nil {
		store = client
	}
	return capture.NewService(store, cfg, capture.WithLogger(newLogger()))
}

func newTaskCmd() *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "task [text]",
		Short: "Add a task to the task database",
		Example: `  meetsync task buy milk
  meetsync task --create "buy milk"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := launcherConfig(cmd.OutOrStdout(), create)
			if !ok {
				return nil
			}
			svc := newCaptureService(cfg)
			out := cmd.OutOrStdout()
			text := queryText(args)

			if !create {
				writeItems(out, svc.TaskItem(text))
				return nil
			}
			if _, err := svc.CreateTask(cmd.Context(), text); err != nil {
				launcher.Fail(out, err)
				return nil
			}
			launcher.Succeed(out, "Task '%s' created successfully", text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Create the task")

	return cmd
}

func newJournalCmd() *cobra.Command {
	var add bool

	cmd := &cobra.Command{
		Use:   "journal [text]",
		Short: "Add a timestamped entry to today's journal page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := launcherConfig(cmd.OutOrStdout(), add)
			if !ok {
				return nil
			}
			svc := newCaptureService(cfg)
			out := cmd.OutOrStdout()
			text := queryText(args)

			if !add {
				writeItems(out, svc.JournalItem(text))
				return nil
			}
			result, err := svc.AddJournalEntry(cmd.Context(), text)
			if err != nil {
				launcher.Fail(out, err)
				return nil
			}
			if result.Created {
				launcher.Succeed(out, "Created new journal for %s", result.Date)
			} else {
				launcher.Succeed(out, "Added to today's journal (%s)", result.Date)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&add, "add", false, "Add the entry")

	return cmd
}

func newDumpCmd() *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "dump [text]",
		Short: "Append text or the clipboard to the info dump page",
		Long: `Append typed text, or the clipboard content when no text is given, to the
info dump page under a timestamp line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := launcherConfig(cmd.OutOrStdout(), dump)
			if !ok {
				return nil
			}
			svc := newCaptureService(cfg)
			out := cmd.OutOrStdout()
			text := queryText(args)

			if !dump {
				writeItems(out, svc.DumpItem(cmd.Context(), text))
				return nil
			}
			if err := svc.Dump(cmd.Context(), text); err != nil {
				if errors.Is(err, capture.ErrNoContent) {
					launcher.Failf(out, "No content to dump")
					return nil
				}
				launcher.Fail(out, err)
				return nil
			}
			launcher.Succeed(out, "Content dumped to Notion successfully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Append the content")

	return cmd
}

func newMeetingCmd() *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "meeting [topic]",
		Short: "Create an ad-hoc meeting note",
		Long: `Create a meeting note with an attendees, agenda, notes and action items
outline under the meeting notes parent page.

In query mode the item's argument is the full note title, which --create
uses as is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := launcherConfig(cmd.OutOrStdout(), create)
			if !ok {
				return nil
			}
			svc := newCaptureService(cfg)
			out := cmd.OutOrStdout()
			text := queryText(args)

			if !create {
				writeItems(out, svc.MeetingItem(text))
				return nil
			}
			title := text
			if title == "" {
				title = svc.MeetingTitle("")
			}
			if _, err := svc.CreateMeetingNote(cmd.Context(), title); err != nil {
				launcher.Fail(out, err)
				return nil
			}
			launcher.Succeed(out, "Meeting note created: %s", title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Create the meeting note")

	return cmd
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Print a launcher item opening the Notion command center page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := launcherConfig(cmd.OutOrStdout(), false)
			if !ok {
				return nil
			}
			writeItems(cmd.OutOrStdout(), newCaptureService(cfg).OpenItem())
			return nil
		},
	}
}
