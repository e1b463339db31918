package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmaster/tracker/internal/client"
	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/ports"
)

// dateLayouts are accepted by --date, most specific first
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use RFC 3339 or YYYY-MM-DD[THH:MM]", s)
}

// NewEventsCommand creates the events command group, a client of a running server
func NewEventsCommand(opts *Options) *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Manage events on a running server",
	}

	var listStatus string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := client.New(opts.APIURL).ListEvents(cmd.Context(), entities.EventStatus(listStatus))
			if err != nil {
				return err
			}
			printEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}
	listCmd.Flags().StringVar(&listStatus, "status", "", "only list events with this status")

	var (
		title       string
		date        string
		description string
		status      string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseDate(date)
			if err != nil {
				return err
			}
			req := ports.CreateEventRequest{
				Title:  title,
				Date:   &when,
				Status: entities.EventStatus(status),
			}
			if description != "" {
				req.Description = &description
			}

			event, err := client.New(opts.APIURL).CreateEvent(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created event %s\n", event.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&title, "title", "", "event title (required)")
	addCmd.Flags().StringVar(&date, "date", "", "event date (required)")
	addCmd.Flags().StringVar(&description, "description", "", "event description")
	addCmd.Flags().StringVar(&status, "status", "", "initial status (default upcoming)")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("date")

	var target string
	advanceCmd := &cobra.Command{
		Use:   "advance <id>",
		Short: "Move an event to its next status, or to --status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(opts.APIURL)
			next := entities.EventStatus(target)
			if next == "" {
				event, err := c.GetEvent(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				var ok bool
				if next, ok = event.Status.Next(); !ok {
					return fmt.Errorf("event %s is already %s", event.ID, event.Status)
				}
			}

			event, err := c.AdvanceStatus(cmd.Context(), args[0], next)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Event %s is now %s\n", event.ID, event.Status)
			return nil
		},
	}
	advanceCmd.Flags().StringVar(&target, "status", "", "status to set instead of the next one")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(opts.APIURL).DeleteEvent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Event deleted successfully")
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(opts.APIURL).DeleteAllEvents(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All events deleted successfully")
			return nil
		},
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Count events per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := client.New(opts.APIURL).EventSummary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "upcoming: %d\nin_progress: %d\ncompleted: %d\ntotal: %d\n",
				s.Upcoming, s.InProgress, s.Completed, s.Total)
			return nil
		},
	}

	eventsCmd.AddCommand(listCmd, addCmd, advanceCmd, deleteCmd, clearCmd, summaryCmd)
	return eventsCmd
}

// NewTasksCommand creates the tasks command group, a client of a running server
func NewTasksCommand(opts *Options) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks on a running server",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := client.New(opts.APIURL).ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}

	var title, description string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ports.CreateTaskRequest{Title: title}
			if description != "" {
				req.Description = &description
			}
			task, err := client.New(opts.APIURL).CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", task.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&title, "title", "", "task title (required)")
	addCmd.Flags().StringVar(&description, "description", "", "task description")
	_ = addCmd.MarkFlagRequired("title")

	toggleCmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between open and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := client.New(opts.APIURL).ToggleTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s completed: %t\n", task.ID, task.Completed)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(opts.APIURL).DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task deleted successfully")
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(opts.APIURL).DeleteAllTasks(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All tasks deleted successfully")
			return nil
		},
	}

	tasksCmd.AddCommand(listCmd, addCmd, toggleCmd, deleteCmd, clearCmd)
	return tasksCmd
}

func printEvents(w io.Writer, events []*entities.Event) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tDATE\tTITLE")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Status, e.Date.Format(time.RFC3339), e.Title)
	}
	tw.Flush()
}

func printTasks(w io.Writer, tasks []*entities.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tTITLE")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\n", t.ID, done, strings.TrimSpace(t.Title))
	}
	tw.Flush()
}
