package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/task"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	Short:   "Manage tasks and their timers",
}

// task add
var taskAddCmd = &cobra.Command{
	Use:   "add <description>...",
	Short: "Create a task",
	Long: `Create a task.

The description is every argument joined with spaces. --date accepts
today, tomorrow, yesterday, +N (days), +Nw (weeks), or yyyy-mm-dd.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(runTaskAdd),
}

var (
	taskAddEstimate int
	taskAddCategory string
	taskAddDate     string
	taskAddJSON     bool
)

// task list
var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks in order",
	Args:    cobra.NoArgs,
	RunE:    withApp(runTaskList),
}

var (
	taskListJSON     bool
	taskListCategory string
	taskListOpen     bool
)

// task show
var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runTaskShow),
}

var taskShowJSON bool

// task done
var taskDoneCmd = &cobra.Command{
	Use:   "done <id>...",
	Short: "Toggle completion of one or more tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApp(runTaskDone),
}

// task rm
var taskRmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Delete one or more tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE:    withApp(runTaskRm),
}

// task reorder
var taskReorderCmd = &cobra.Command{
	Use:   "reorder <id>...",
	Short: "Set the order of all tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApp(runTaskReorder),
}

// task log
var taskLogCmd = &cobra.Command{
	Use:   "log <id> <minutes>",
	Short: "Add manually tracked minutes to a task",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runTaskLog),
}

// task start / pause / reset
var taskStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a task's timer",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(timerCommand("started", (*task.Store).Start)),
}

var taskPauseCmd = &cobra.Command{
	Use:   "pause [id]",
	Short: "Pause a running timer (defaults to the running task)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withApp(runTaskPause),
}

var taskResetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Clear a stopped timer's tracked time",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(timerCommand("reset", (*task.Store).Reset)),
}

// task stats
var taskStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize completed, failed, and tracked work",
	Args:  cobra.NoArgs,
	RunE:  withApp(runTaskStats),
}

var taskStatsJSON bool

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskDoneCmd, taskRmCmd,
		taskReorderCmd, taskLogCmd, taskStartCmd, taskPauseCmd, taskResetCmd, taskStatsCmd)

	taskAddCmd.Flags().IntVarP(&taskAddEstimate, "estimate", "e", 0, "Estimated minutes (1-1440)")
	taskAddCmd.Flags().StringVarP(&taskAddCategory, "category", "c", "", "Category label")
	taskAddCmd.Flags().StringVarP(&taskAddDate, "date", "d", "", "Scheduled date")
	taskAddCmd.Flags().BoolVar(&taskAddJSON, "json", false, "Output as JSON")
	_ = taskAddCmd.MarkFlagRequired("estimate")

	taskListCmd.Flags().BoolVar(&taskListJSON, "json", false, "Output as JSON")
	taskListCmd.Flags().StringVarP(&taskListCategory, "category", "c", "", "Only show this category")
	taskListCmd.Flags().BoolVar(&taskListOpen, "open", false, "Hide completed tasks")

	taskShowCmd.Flags().BoolVar(&taskShowJSON, "json", false, "Output as JSON")
	taskStatsCmd.Flags().BoolVar(&taskStatsJSON, "json", false, "Output as JSON")

	addTaskFlagAliases(taskAddCmd, taskListCmd)
}

func runTaskAdd(a *app, cmd *cobra.Command, args []string) error {
	opts := task.CreateOptions{Category: taskAddCategory}
	if cmd.Flags().Changed("date") {
		date, err := dates.ParseInput(taskAddDate, a.now())
		if err != nil {
			return err
		}
		opts.ScheduledDate = &date
	}

	created, err := a.tasks.Create(strings.Join(args, " "), taskAddEstimate, opts)
	if err != nil {
		return err
	}
	if taskAddJSON {
		return encodeJSONToStdout(created)
	}
	fmt.Printf("Created task %s: %s\n", created.ID, created.Description)
	return nil
}

func runTaskList(a *app, cmd *cobra.Command, args []string) error {
	tasks := a.tasks.List()
	filtered := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if taskListOpen && t.Completed {
			continue
		}
		if taskListCategory != "" && !strings.EqualFold(t.Category, taskListCategory) {
			continue
		}
		filtered = append(filtered, t)
	}

	if taskListJSON {
		return encodeJSONToStdout(filtered)
	}
	if len(filtered) == 0 {
		fmt.Println(emptyListMessage(len(tasks), "tasks", "cad task add"))
		return nil
	}
	fmt.Print(formatTaskTable(filtered, allTaskIDs(tasks)))
	return nil
}

func runTaskShow(a *app, cmd *cobra.Command, args []string) error {
	id, err := a.tasks.Resolve(args[0])
	if err != nil {
		return err
	}
	got, err := a.tasks.Get(id)
	if err != nil {
		return err
	}
	if taskShowJSON {
		return encodeJSONToStdout(got)
	}
	fmt.Print(formatTaskDetail(*got))
	return nil
}

func runTaskDone(a *app, cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		id, err := a.tasks.Resolve(arg)
		if err != nil {
			return err
		}
		toggled, err := a.tasks.ToggleCompletion(id)
		if err != nil {
			return err
		}
		verb := "Reopened"
		if toggled.Completed {
			verb = "Completed"
		}
		fmt.Printf("%s task %s: %s\n", verb, toggled.ID, toggled.Description)
	}
	return nil
}

func runTaskRm(a *app, cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		id, err := a.tasks.Resolve(arg)
		if err != nil {
			return err
		}
		if a.tasks.Delete(id) {
			fmt.Printf("Deleted task %s\n", id)
		}
	}
	return nil
}

func runTaskReorder(a *app, cmd *cobra.Command, args []string) error {
	order := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := a.tasks.Resolve(arg)
		if err != nil {
			return err
		}
		order = append(order, id)
	}
	if err := a.tasks.Reorder(order); err != nil {
		return err
	}
	fmt.Print(formatTaskTable(a.tasks.List(), order))
	return nil
}

func runTaskLog(a *app, cmd *cobra.Command, args []string) error {
	id, err := a.tasks.Resolve(args[0])
	if err != nil {
		return err
	}
	minutes, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid minutes %q: %w", args[1], task.ErrValidation)
	}
	updated, err := a.tasks.AddManualTime(id, minutes)
	if err != nil {
		return err
	}
	fmt.Printf("Logged %dm on task %s (total %s)\n", minutes, updated.ID, formatTracked(updated.ActualTimeSpent))
	return nil
}

func runTaskPause(a *app, cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		running, ok := a.tasks.Running()
		if !ok {
			return fmt.Errorf("no timer is running: %w", task.ErrInvalidState)
		}
		args = []string{running.ID}
	}
	return timerCommand("paused", (*task.Store).Pause)(a, cmd, args)
}

func timerCommand(verb string, action func(*task.Store, string) (*task.Task, error)) func(*app, *cobra.Command, []string) error {
	return func(a *app, cmd *cobra.Command, args []string) error {
		id, err := a.tasks.Resolve(args[0])
		if err != nil {
			return err
		}
		updated, err := action(a.tasks, id)
		if err != nil {
			return err
		}
		fmt.Printf("Timer %s for task %s (%s tracked)\n", verb, updated.ID, formatTracked(updated.ActualTimeSpent))
		return nil
	}
}

func runTaskStats(a *app, cmd *cobra.Command, args []string) error {
	stats := a.tasks.Stats()
	if taskStatsJSON {
		return encodeJSONToStdout(struct {
			task.Stats
			TotalReviews int `json:"total_reviews"`
		}{stats, a.reviews.TotalReviews()})
	}
	fmt.Print(formatTaskStats(stats, a.reviews.TotalReviews()))
	return nil
}
