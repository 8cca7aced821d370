package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/P3chys/awards-api/internal/board"
	"github.com/P3chys/awards-api/internal/client"
	"github.com/P3chys/awards-api/internal/config"
	"github.com/P3chys/awards-api/internal/models"
	"github.com/P3chys/awards-api/internal/ordering"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	api     string
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "awardctl",
		Short:        "Inspect and reorder awards",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.api, "api", config.Load().APIURL, "awards API base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log board activity")

	root.AddCommand(
		newCategoriesCmd(opts),
		newAwardsCmd(opts),
		newMoveCmd(opts),
		newSortCmd(opts),
		newDeleteCmd(opts),
	)
	return root
}

func (o *options) client() *client.Client {
	return client.New(o.api)
}

func (o *options) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), o.timeout)
}

// board loads a board over the API and selects the named category.
func (o *options) board(ctx context.Context, out io.Writer, category string) (*board.Board, error) {
	log := zap.NewNop()
	if o.verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	b := board.New(o.client(), notifier{out: out}, log)
	if err := b.Load(ctx); err != nil {
		return nil, err
	}

	id, err := resolveCategory(b.Categories(), category)
	if err != nil {
		return nil, err
	}
	if err := b.Select(id); err != nil {
		return nil, err
	}
	return b, nil
}

// resolveCategory accepts a category id or its exact name.
func resolveCategory(categories []models.Category, ref string) (uint, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		for _, c := range categories {
			if c.ID == uint(id) {
				return c.ID, nil
			}
		}
	}
	for _, c := range categories {
		if c.Name == ref {
			return c.ID, nil
		}
	}
	return 0, fmt.Errorf("category %q: %w", ref, board.ErrUnknownCategory)
}

func newCategoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			categories, err := opts.client().Categories(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-4s %s", "ID", "NAME")))
			for _, c := range categories {
				fmt.Fprintf(out, "%-4d %s\n", c.ID, c.Name)
			}
			return nil
		},
	}
}

func newAwardsCmd(opts *options) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "awards",
		Short: "List awards in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			c := opts.client()
			categories, err := c.Categories(ctx)
			if err != nil {
				return err
			}
			awards, err := c.Awards(ctx)
			if err != nil {
				return err
			}

			var only uint
			if category != "" {
				if only, err = resolveCategory(categories, category); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, cat := range categories {
				if only != 0 && cat.ID != only {
					continue
				}
				fmt.Fprintln(out, headerStyle.Render(cat.Name))
				var inCategory []models.Award
				for _, a := range awards {
					if a.CategoryID == cat.ID {
						inCategory = append(inCategory, a)
					}
				}
				printAwards(out, inCategory)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only show this category (id or name)")
	return cmd
}

func newMoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "move CATEGORY FROM TO",
		Short: "Move the award at position FROM to position TO",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid FROM %q", args[1])
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid TO %q", args[2])
			}

			ctx, cancel := opts.context()
			defer cancel()

			out := cmd.OutOrStdout()
			b, err := opts.board(ctx, out, args[0])
			if err != nil {
				return err
			}

			res := b.Move(ctx, from, to)
			printAwards(out, b.Visible())
			return res.Err
		},
	}
}

func newSortCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sort CATEGORY [asc|desc]",
		Short: "Sort a category by award date (newest first by default)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ordering.Desc
			if len(args) == 2 {
				var err error
				if dir, err = ordering.ParseDirection(strings.ToLower(args[1])); err != nil {
					return err
				}
			}

			ctx, cancel := opts.context()
			defer cancel()

			out := cmd.OutOrStdout()
			b, err := opts.board(ctx, out, args[0])
			if err != nil {
				return err
			}

			res := b.SortByDate(ctx, dir)
			printAwards(out, b.Visible())
			return res.Err
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an award",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid ID %q", args[0])
			}

			ctx, cancel := opts.context()
			defer cancel()

			out := notifier{out: cmd.OutOrStdout()}
			if err := opts.client().DeleteAward(ctx, uint(id)); err != nil {
				if client.IsNotFound(err) {
					out.Failure(fmt.Sprintf("Award %d not found", id))
				}
				return err
			}
			out.Success(fmt.Sprintf("Award %d deleted", id))
			return nil
		},
	}
}

func printAwards(out io.Writer, awards []models.Award) {
	if len(awards) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  (no awards)"))
		return
	}
	for _, a := range awards {
		fmt.Fprintf(out, "  %3d  %s  #%-5d %s\n", a.Order, mutedStyle.Render(fmt.Sprintf("%04d-%02d", a.Year, a.Month)), a.ID, a.Name)
	}
}
