package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/planner"
	"github.com/rnwolfe/rack/internal/task"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	Short:   "Capture, rate and finish tasks",
	Long: `Capture tasks, rate them, and check them off.

Ratings come in two groups:
  A  impact        1-5     L  leverage          0-2
  C  consequences  1-5     M  energy match      0-2
  E  friction      1-5     T  time criticality  0-2

Score = (2A + 2C - E) + (L + M + T). A task is rated once A, C, E and an
estimate are set. Tasks are addressed by id; any unique prefix of four or
more characters works.`,
	RunE: hook.Wrap("task.list", runTaskList),
}

// fieldFlags holds the optional task field flags shared by add and edit.
// Every value is a string so "" means untouched and "none" clears.
type fieldFlags struct {
	status       string
	impact       string
	consequences string
	friction     string
	leverage     string
	energy       string
	timeCrit     string
	estimate     string
	confidence   string
	scheduled    string
	due          string
	recur        string
	recurDay     string
	parent       string
	tag          string
}

// clearValue resets a field in edit.
const clearValue = "none"

func (f *fieldFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.status, "status", "s", "", "Status: inbox, today, tomorrow, next, waiting, someday, done")
	fs.StringVarP(&f.impact, "impact", "a", "", "Impact (A) 1-5")
	fs.StringVarP(&f.consequences, "consequences", "c", "", "Consequences (C) 1-5")
	fs.StringVarP(&f.friction, "friction", "f", "", "Friction (E) 1-5")
	fs.StringVar(&f.leverage, "leverage", "", "Leverage (L) 0-2")
	fs.StringVar(&f.energy, "energy", "", "Energy match (M) 0-2")
	fs.StringVar(&f.timeCrit, "time-crit", "", "Time criticality (T) 0-2")
	fs.StringVarP(&f.estimate, "estimate", "e", "", "Estimate: 15, 30, 60, 90, 120 or 180 minutes (or 1h, 1h30m)")
	fs.StringVar(&f.confidence, "confidence", "", "Estimate confidence: high, medium, low")
	fs.StringVar(&f.scheduled, "scheduled", "", "Scheduled date (YYYY-MM-DD, today, tomorrow)")
	fs.StringVarP(&f.due, "due", "d", "", "Due date (YYYY-MM-DD, today, tomorrow)")
	fs.StringVar(&f.recur, "recur", "", "Repeat: daily, weekly, monthly")
	fs.StringVar(&f.recurDay, "recur-day", "", "Weekday 0-6 (weekly) or day of month 1-31 (monthly)")
	fs.StringVar(&f.parent, "parent", "", "Parent task id (makes this a subtask)")
	fs.StringVarP(&f.tag, "tag", "t", "", "Category: "+strings.Join(task.Tags, ", "))
}

var (
	addFields  fieldFlags
	editFields fieldFlags

	taskListStatus string
	taskListDone   bool

	doneActual   string
	doneNoRepeat bool
)

func init() {
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskRateCmd)
	taskCmd.AddCommand(taskRmCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskStartCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)

	addFields.bind(taskAddCmd.Flags())
	editFields.bind(taskEditCmd.Flags())

	for _, c := range []*cobra.Command{taskCmd, taskListCmd} {
		c.Flags().StringVarP(&taskListStatus, "status", "s", "", "Only show one status")
		c.Flags().BoolVar(&taskListDone, "done", false, "Include completed tasks")
	}

	taskDoneCmd.Flags().StringVar(&doneActual, "actual", "", "Minutes actually spent (or 1h, 1h30m)")
	taskDoneCmd.Flags().BoolVar(&doneNoRepeat, "no-repeat", false, "Don't spawn the next occurrence of a recurring task")
}

var taskAddCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Capture a task before it escapes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  hook.Wrap("task.add", runTaskAdd),
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id> [new description]",
	Short: "Change a task's fields (use \"none\" to clear one)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  hook.Wrap("task.edit", runTaskEdit),
}

var taskRateCmd = &cobra.Command{
	Use:   "rate <id> <A> <C> <E> [<L> <M> <T>]",
	Short: "Rate a task in one go",
	Args:  cobra.RangeArgs(4, 7),
	RunE:  hook.Wrap("task.rate", runTaskRate),
}

var taskRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a task and its subtasks",
	Args:    cobra.ExactArgs(1),
	RunE:    hook.Wrap("task.rm", runTaskRm),
}

var taskDoneCmd = &cobra.Command{
	Use:     "done <id>",
	Aliases: []string{"do", "complete", "x"},
	Short:   "Check a task off and replan the rest of the day",
	Args:    cobra.ExactArgs(1),
	RunE:    hook.Wrap("task.done", runTaskDone),
}

var taskStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start the clock on a task",
	Args:  cobra.ExactArgs(1),
	RunE:  hook.Wrap("task.start", runTaskStart),
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks by status",
	RunE:    hook.Wrap("task.list", runTaskList),
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show everything about a task",
	Args:  cobra.ExactArgs(1),
	RunE:  hook.Wrap("task.show", runTaskShow),
}

// buildUpdate turns field flags into a typed update. With allowClear set,
// "none" clears a field; otherwise it is rejected.
func buildUpdate(ctx context.Context, a *app, f fieldFlags, allowClear bool) (task.Update, error) {
	var u task.Update
	now := a.planner.Now()
	cleared := func(name, v string) (bool, error) {
		if !strings.EqualFold(strings.TrimSpace(v), clearValue) {
			return false, nil
		}
		if !allowClear {
			return false, fmt.Errorf("--%s: %q only works with edit", name, clearValue)
		}
		return true, nil
	}

	if f.status != "" {
		s, err := task.ParseStatus(f.status)
		if err != nil {
			return u, err
		}
		u.Status = task.Set(s)
	}

	ints := []struct {
		name string
		raw  string
		dst  *task.Opt[int]
	}{
		{"impact", f.impact, &u.Impact},
		{"consequences", f.consequences, &u.Consequences},
		{"friction", f.friction, &u.Friction},
		{"leverage", f.leverage, &u.Leverage},
		{"energy", f.energy, &u.EnergyMatch},
		{"time-crit", f.timeCrit, &u.TimeCriticality},
		{"recur-day", f.recurDay, &u.RecurrenceDay},
	}
	for _, in := range ints {
		if in.raw == "" {
			continue
		}
		if ok, err := cleared(in.name, in.raw); err != nil {
			return u, err
		} else if ok {
			*in.dst = task.Clear[int]()
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.raw))
		if err != nil {
			return u, fmt.Errorf("--%s: %q is not a number", in.name, in.raw)
		}
		*in.dst = task.Set(n)
	}

	if f.estimate != "" {
		if ok, err := cleared("estimate", f.estimate); err != nil {
			return u, err
		} else if ok {
			u.Estimate = task.Clear[int]()
		} else {
			m, err := parseMinutes(f.estimate)
			if err != nil {
				return u, fmt.Errorf("--estimate: %w", err)
			}
			u.Estimate = task.Set(m)
		}
	}

	if f.confidence != "" {
		if ok, err := cleared("confidence", f.confidence); err != nil {
			return u, err
		} else if ok {
			u.Confidence = task.Clear[task.Confidence]()
		} else {
			c, err := task.ParseConfidence(f.confidence)
			if err != nil {
				return u, err
			}
			u.Confidence = task.Set(c)
		}
	}

	dates := []struct {
		name string
		raw  string
		dst  *task.Opt[string]
	}{
		{"scheduled", f.scheduled, &u.ScheduledFor},
		{"due", f.due, &u.DueDate},
	}
	for _, d := range dates {
		if d.raw == "" {
			continue
		}
		if ok, err := cleared(d.name, d.raw); err != nil {
			return u, err
		} else if ok {
			*d.dst = task.Clear[string]()
			continue
		}
		day, err := task.ParseDate(d.raw, now)
		if err != nil {
			return u, err
		}
		*d.dst = task.Set(day)
	}

	if f.recur != "" {
		if ok, err := cleared("recur", f.recur); err != nil {
			return u, err
		} else if ok {
			u.Recurrence = task.Clear[task.Recurrence]()
		} else {
			r, err := task.ParseRecurrence(f.recur)
			if err != nil {
				return u, err
			}
			u.Recurrence = task.Set(r)
		}
	}

	if f.parent != "" {
		if ok, err := cleared("parent", f.parent); err != nil {
			return u, err
		} else if ok {
			u.ParentID = task.Clear[string]()
		} else {
			id, err := resolveID(ctx, a, f.parent)
			if err != nil {
				return u, fmt.Errorf("--parent: %w", err)
			}
			u.ParentID = task.Set(id)
		}
	}

	if f.tag != "" {
		if ok, err := cleared("tag", f.tag); err != nil {
			return u, err
		} else if ok {
			u.Tag = task.Clear[string]()
		} else {
			tag, err := task.ParseTag(f.tag)
			if err != nil {
				return u, err
			}
			u.Tag = task.Set(tag)
		}
	}
	return u, nil
}

// parseMinutes accepts a bare number of minutes or a Go duration like 1h30m.
func parseMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%q is not a number of minutes", s)
	}
	return int(d.Minutes()), nil
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}

	u, err := buildUpdate(ctx, a, addFields, false)
	if err != nil {
		return err
	}
	t, err := a.planner.AddTask(ctx, task.NewTask{
		Description: strings.Join(args, " "),
		Fields:      u,
	})
	if err != nil {
		return err
	}

	ui.Ok(fmt.Sprintf("Added %s %s", ui.Muted.Render(shortID(t.ID)), t.Description))
	if !task.IsRated(t) {
		ui.Tip(fmt.Sprintf("rate it with %s", ui.Accent.Render("rack task rate "+shortID(t.ID)+" <A> <C> <E> -e <minutes>")))
	}
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, a, args[0])
	if err != nil {
		return err
	}

	u, err := buildUpdate(ctx, a, editFields, true)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		u.Description = task.Set(strings.Join(args[1:], " "))
	}
	if u.Empty() {
		return fmt.Errorf("nothing to change; pass a new description or a field flag (see %s)",
			ui.Accent.Render("rack task edit --help"))
	}

	t, err := a.planner.UpdateTask(ctx, id, u)
	if err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Updated %s %s", ui.Muted.Render(shortID(t.ID)), t.Description))
	return nil
}

func runTaskRate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, a, args[0])
	if err != nil {
		return err
	}

	names := []string{"A", "C", "E", "L", "M", "T"}
	vals := make([]int, len(args)-1)
	for i, raw := range args[1:] {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", names[i], raw)
		}
		vals[i] = n
	}

	u := task.Update{
		Impact:       task.Set(vals[0]),
		Consequences: task.Set(vals[1]),
		Friction:     task.Set(vals[2]),
	}
	if len(vals) > 3 {
		u.Leverage = task.Set(vals[3])
	}
	if len(vals) > 4 {
		u.EnergyMatch = task.Set(vals[4])
	}
	if len(vals) > 5 {
		u.TimeCriticality = task.Set(vals[5])
	}

	t, err := a.planner.UpdateTask(ctx, id, u)
	if err != nil {
		return err
	}
	score, _ := task.CalculateScore(t)
	ui.Ok(fmt.Sprintf("Rated %s %s: score %d", ui.Muted.Render(shortID(t.ID)), t.Description, score.Priority))
	if t.Estimate == nil {
		ui.Tip(fmt.Sprintf("add an estimate with %s", ui.Accent.Render("rack task edit "+shortID(t.ID)+" -e 30")))
	}
	return nil
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, a, args[0])
	if err != nil {
		return err
	}
	t, err := a.planner.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if err := a.planner.DeleteTask(ctx, id); err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Removed %s %s", ui.Muted.Render(shortID(id)), t.Description))
	return nil
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, a, args[0])
	if err != nil {
		return err
	}

	var opts planner.CompleteOptions
	if doneActual != "" {
		m, err := parseMinutes(doneActual)
		if err != nil {
			return fmt.Errorf("--actual: %w", err)
		}
		opts.Actual = &m
	}
	opts.SkipRecurrence = doneNoRepeat

	c, err := a.planner.CompleteTask(ctx, id, opts)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Done: %s", c.Task.Description)
	if c.Actual > 0 {
		msg += ui.Muted.Render(fmt.Sprintf(" (%s)", ui.Minutes(c.Actual)))
	}
	ui.Ok(msg)
	if c.Next != nil {
		ui.Inf(fmt.Sprintf("%s Next one scheduled for %s", ui.IconRecur, c.Next.ScheduledFor))
	}

	plan, err := a.planner.RerackAfterCompletion(ctx, id, nil)
	if err != nil {
		return err
	}
	if len(plan.Keep)+len(plan.Overflow) > 0 {
		ui.Header("Rest of today")
		printPlan(plan, task.Day(a.planner.Now()))
	}
	fmt.Println()
	return nil
}

func runTaskStart(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, a, args[0])
	if err != nil {
		return err
	}
	t, err := a.planner.StartTask(ctx, id)
	if err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Started %s at %s", t.Description, t.StartedAt.Local().Format("15:04")))
	return nil
}

func runTaskList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}

	statuses := task.Statuses
	if taskListStatus != "" {
		s, err := task.ParseStatus(taskListStatus)
		if err != nil {
			return err
		}
		statuses = []task.Status{s}
	}

	shown := 0
	for _, s := range statuses {
		if s == task.StatusDone && !taskListDone && taskListStatus == "" {
			continue
		}
		tasks, err := a.planner.ListByStatus(ctx, s)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			continue
		}
		ui.Header(fmt.Sprintf("%s (%d)", strings.ToUpper(string(s)[:1])+string(s)[1:], len(tasks)))
		if err := printTasks(ctx, a, tasks); err != nil {
			return err
		}
		shown += len(tasks)
	}

	if shown == 0 {
		fmt.Println()
		ui.Inf("Nothing here yet.")
		ui.Tip(fmt.Sprintf("%s to capture something.", ui.Accent.Render(`rack task add "..."`)))
	}
	fmt.Println()
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, a, args[0])
	if err != nil {
		return err
	}
	t, err := a.planner.GetTask(ctx, id)
	if err != nil {
		return err
	}
	fmt.Println()
	if err := printTaskDetail(ctx, a, t); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

// commandContext returns the command's context, or Background when run
// outside cobra (tests call run functions with a nil command).
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
