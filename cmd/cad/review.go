package main

import (
	"fmt"
	"strings"

	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/internal/editor"
	"github.com/amonks/cadence/review"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:     "review",
	Aliases: []string{"r"},
	Short:   "Manage spaced-repetition review items",
}

// review add
var reviewAddCmd = &cobra.Command{
	Use:   "add <title>...",
	Short: "Add a review item",
	Long: `Add a review item.

The title is every argument joined with spaces. The first review defaults
to today; --first accepts the same forms as task dates.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(runReviewAdd),
}

var (
	reviewAddContent    string
	reviewAddFirst      string
	reviewAddDifficulty string
	reviewAddJSON       bool
)

// review list
var reviewListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List review items by next review date",
	Args:    cobra.NoArgs,
	RunE:    withApp(runReviewList),
}

var reviewListJSON bool

// review show
var reviewShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a review item and its notes",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runReviewShow),
}

var reviewShowJSON bool

// review edit
var reviewEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a review item",
	Long: `Change fields of a review item.

With no field flags and an interactive terminal, or with --editor, the item
opens in $EDITOR as TOML settings followed by its markdown notes.`,
	Args: cobra.ExactArgs(1),
	RunE:  withApp(runReviewEdit),
}

var (
	reviewEditTitle      string
	reviewEditContent    string
	reviewEditFirst      string
	reviewEditNext       string
	reviewEditDifficulty string
	reviewEditEditor     bool
)

// review rm
var reviewRmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Delete one or more review items",
	Args:    cobra.MinimumNArgs(1),
	RunE:    withApp(runReviewRm),
}

// review done
var reviewDoneCmd = &cobra.Command{
	Use:   "done <id> <easy|medium|hard>",
	Short: "Record a review and schedule the next one",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runReviewDone),
}

// review due
var reviewDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List items due for review",
	Args:  cobra.NoArgs,
	RunE:  withApp(runReviewDue),
}

var (
	reviewDueDate    string
	reviewDueOverdue bool
	reviewDueJSON    bool
)

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewAddCmd, reviewListCmd, reviewShowCmd, reviewEditCmd,
		reviewRmCmd, reviewDoneCmd, reviewDueCmd)

	reviewAddCmd.Flags().StringVar(&reviewAddContent, "content", "", "Markdown notes")
	reviewAddCmd.Flags().StringVar(&reviewAddFirst, "first", "", "First review date (default today)")
	reviewAddCmd.Flags().StringVar(&reviewAddDifficulty, "difficulty", "", "Initial difficulty hint: easy, medium, or hard")
	reviewAddCmd.Flags().BoolVar(&reviewAddJSON, "json", false, "Output as JSON")

	reviewListCmd.Flags().BoolVar(&reviewListJSON, "json", false, "Output as JSON")
	reviewShowCmd.Flags().BoolVar(&reviewShowJSON, "json", false, "Output as JSON")

	reviewEditCmd.Flags().StringVar(&reviewEditTitle, "title", "", "New title")
	reviewEditCmd.Flags().StringVar(&reviewEditContent, "content", "", "New markdown notes")
	reviewEditCmd.Flags().StringVar(&reviewEditFirst, "first", "", "New first review date")
	reviewEditCmd.Flags().StringVar(&reviewEditNext, "next", "", "New next review date")
	reviewEditCmd.Flags().StringVar(&reviewEditDifficulty, "difficulty", "", "New difficulty; empty clears it")
	reviewEditCmd.Flags().BoolVarP(&reviewEditEditor, "editor", "e", false, "Edit in $EDITOR")

	reviewDueCmd.Flags().StringVarP(&reviewDueDate, "date", "d", "today", "Date to check")
	reviewDueCmd.Flags().BoolVar(&reviewDueOverdue, "overdue", false, "Include items whose review date has passed")
	reviewDueCmd.Flags().BoolVar(&reviewDueJSON, "json", false, "Output as JSON")

	addReviewFlagAliases(reviewAddCmd, reviewEditCmd)
}

func runReviewAdd(a *app, cmd *cobra.Command, args []string) error {
	opts := review.AddOptions{Content: reviewAddContent}
	if cmd.Flags().Changed("first") {
		first, err := dates.ParseInput(reviewAddFirst, a.now())
		if err != nil {
			return err
		}
		opts.FirstReviewDate = &first
	}
	if reviewAddDifficulty != "" {
		difficulty, err := review.ParseDifficulty(reviewAddDifficulty)
		if err != nil {
			return err
		}
		opts.Difficulty = difficulty
	}

	added, err := a.reviews.AddItem(strings.Join(args, " "), opts)
	if err != nil {
		return err
	}
	if reviewAddJSON {
		return encodeJSONToStdout(added)
	}
	fmt.Printf("Added review %s: %s (first review %s)\n", added.ID, added.Title, added.NextReviewDate)
	return nil
}

func runReviewList(a *app, cmd *cobra.Command, args []string) error {
	items := a.reviews.List()
	if reviewListJSON {
		return encodeJSONToStdout(items)
	}
	if len(items) == 0 {
		fmt.Println(emptyListMessage(0, "review items", "cad review add"))
		return nil
	}
	fmt.Print(formatReviewTable(items, allReviewIDs(items), dates.Today(a.now())))
	return nil
}

func runReviewShow(a *app, cmd *cobra.Command, args []string) error {
	id, err := a.reviews.Resolve(args[0])
	if err != nil {
		return err
	}
	item, err := a.reviews.Get(id)
	if err != nil {
		return err
	}
	if reviewShowJSON {
		return encodeJSONToStdout(item)
	}
	fmt.Print(formatReviewDetail(*item, dates.Today(a.now())))
	return nil
}

func runReviewEdit(a *app, cmd *cobra.Command, args []string) error {
	id, err := a.reviews.Resolve(args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var opts review.UpdateOptions
	if flags.Changed("title") {
		opts.Title = &reviewEditTitle
	}
	if flags.Changed("content") {
		opts.Content = &reviewEditContent
	}
	if flags.Changed("first") {
		first, err := dates.ParseInput(reviewEditFirst, a.now())
		if err != nil {
			return err
		}
		opts.FirstReviewDate = &first
	}
	if flags.Changed("next") {
		next, err := dates.ParseInput(reviewEditNext, a.now())
		if err != nil {
			return err
		}
		opts.NextReviewDate = &next
	}
	if flags.Changed("difficulty") {
		var difficulty review.Difficulty
		if strings.TrimSpace(reviewEditDifficulty) != "" {
			difficulty, err = review.ParseDifficulty(reviewEditDifficulty)
			if err != nil {
				return err
			}
		}
		opts.Difficulty = &difficulty
	}
	if reviewEditEditor || (opts == (review.UpdateOptions{}) && editor.IsInteractive()) {
		existing, err := a.reviews.Get(id)
		if err != nil {
			return err
		}
		parsed, err := editor.EditReview(existing)
		if err != nil {
			return err
		}
		opts = parsed.ToUpdateOptions()
	}
	if opts == (review.UpdateOptions{}) {
		return fmt.Errorf("nothing to change: %w", review.ErrValidation)
	}

	updated, err := a.reviews.UpdateItem(id, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Updated review %s: %s (next review %s)\n", updated.ID, updated.Title, updated.NextReviewDate)
	return nil
}

func runReviewRm(a *app, cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		id, err := a.reviews.Resolve(arg)
		if err != nil {
			return err
		}
		if a.reviews.DeleteItem(id) {
			fmt.Printf("Deleted review %s\n", id)
		}
	}
	return nil
}

func runReviewDone(a *app, cmd *cobra.Command, args []string) error {
	id, err := a.reviews.Resolve(args[0])
	if err != nil {
		return err
	}
	difficulty, err := review.ParseDifficulty(args[1])
	if err != nil {
		return err
	}
	updated, err := a.reviews.MarkReviewed(id, difficulty)
	if err != nil {
		return err
	}
	fmt.Printf("Reviewed %s (%s): next review %s, in %s\n",
		updated.ID, updated.Difficulty, updated.NextReviewDate, formatDays(updated.IntervalDays))
	return nil
}

func runReviewDue(a *app, cmd *cobra.Command, args []string) error {
	date, err := dates.ParseInput(reviewDueDate, a.now())
	if err != nil {
		return err
	}
	items := a.reviews.ItemsDueOn(date)
	if reviewDueOverdue {
		items = a.reviews.ItemsDueBy(date)
	}
	if reviewDueJSON {
		return encodeJSONToStdout(items)
	}
	if len(items) == 0 {
		fmt.Printf("Nothing due on %s.\n", date)
		return nil
	}
	fmt.Print(formatReviewTable(items, allReviewIDs(a.reviews.List()), dates.Today(a.now())))
	return nil
}
