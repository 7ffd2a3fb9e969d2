package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/sweet/internal/model"
	"github.com/dori/sweet/internal/tasks"
)

func newAddCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "add <task>",
		Short:   "Quick add a task",
		Example: `  sweet add "Buy groceries @Personal !high due:tomorrow"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer application.Close()

			sess := application.Session
			now := time.Now()
			quick := tasks.ParseQuickAdd(strings.Join(args, " "), now)

			store := sess.Tasks()
			task, ok := store.Add(quick.Text, quick.Priority, quick.DueDate, quick.Tag())
			if !ok {
				return fmt.Errorf("task text must not be empty")
			}
			for _, tag := range quick.Tags[min(1, len(quick.Tags)):] {
				task, _ = store.ToggleTag(task.ID, tag)
			}

			printCreated(cmd.OutOrStdout(), task, now)
			return nil
		},
	}
}

func printCreated(w io.Writer, task model.Task, now time.Time) {
	fmt.Fprintf(w, "Created: %s\n", task.Text)
	if task.DueDate != nil {
		fmt.Fprintf(w, "Due: %s\n", tasks.FormatDue(*task.DueDate, now))
	}
	if task.Priority != model.PriorityMedium {
		fmt.Fprintf(w, "Priority: %s\n", task.Priority)
	}
	if len(task.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(task.Tags, ", "))
	}
}

type listOptions struct {
	filter string
	sort   string
	tag    string
}

func newListCmd(flags *globalFlags) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print tasks",
		Long:  "Print tasks using the saved view preferences. Flags override them for this run only.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer application.Close()

			prefs, err := opts.apply(application.Session.Preferences())
			if err != nil {
				return err
			}

			shown := tasks.Project(application.Session.Tasks().Tasks(), prefs)
			printTasks(cmd.OutOrStdout(), shown, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.filter, "filter", "", "active, completed or all")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "creation, dueDate or priority")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "only tasks with this tag")
	return cmd
}

// apply overrides prefs with the flags that were set
func (o listOptions) apply(prefs model.Preferences) (model.Preferences, error) {
	if o.filter != "" {
		f := model.Filter(o.filter)
		if !f.Valid() {
			return prefs, fmt.Errorf("unknown filter %q", o.filter)
		}
		prefs.Filter = f
	}
	if o.sort != "" {
		s := model.Sort(o.sort)
		if !s.Valid() {
			return prefs, fmt.Errorf("unknown sort %q", o.sort)
		}
		prefs.Sort = s
	}
	if tag := strings.TrimPrefix(strings.TrimSpace(o.tag), "@"); tag != "" {
		prefs.ActiveTag = &tag
	}
	return prefs, nil
}

func printTasks(w io.Writer, list []model.Task, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	for _, task := range list {
		fmt.Fprintln(w, formatTaskLine(task, now))
	}
}

// formatTaskLine renders one task as "[x] text  !high  due:today  @Work  ✨2"
func formatTaskLine(task model.Task, now time.Time) string {
	check := "[ ]"
	if task.Completed {
		check = "[x]"
	}

	parts := []string{check + " " + task.Text}
	if task.Priority != model.PriorityMedium {
		parts = append(parts, "!"+string(task.Priority))
	}
	if task.DueDate != nil {
		due := "due:" + tasks.FormatDue(*task.DueDate, now)
		if task.IsOverdue(now) {
			due += " (overdue)"
		}
		parts = append(parts, due)
	}
	for _, tag := range task.Tags {
		parts = append(parts, "@"+tag)
	}
	if task.Pomodoros > 0 {
		parts = append(parts, fmt.Sprintf("✨%d", task.Pomodoros))
	}
	return strings.Join(parts, "  ")
}
