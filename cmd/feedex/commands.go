package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	feedbackuc "github.com/kailas-cloud/feedex/internal/usecase/feedback"
)

// --- batch ---

// NewBatchCmd creates the 'batch' command running one orchestrator pass.
func NewBatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Analyze one batch of unprocessed feedback",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				res, err := a.analysis.RunBatch(ctx)
				cancelled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
				if err != nil && !cancelled {
					return fmt.Errorf("run batch: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "run %s: processed=%d successful=%d embedded=%d failed=%d\n",
					res.RunID, res.Processed, res.Successful, res.Embedded, res.Failed)
				for _, it := range res.Items {
					if it.Err != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "  #%d %s: %v\n", it.ID, it.Status, it.Err)
					}
				}
				if cancelled {
					return fmt.Errorf("run batch interrupted: %w", err)
				}
				return nil
			})
		},
	}
}

// --- index-all ---

// NewIndexAllCmd creates the 'index-all' command.
func NewIndexAllCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "index-all",
		Short: "Re-embed the whole corpus into the vector index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				res, err := a.indexing.IndexAll(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "indexed=%d failed=%d total=%d chunks=%d failed_chunks=%d\n",
					res.Indexed, res.Failed, res.Total, res.Chunks, res.FailedChunks)
				if err != nil {
					return fmt.Errorf("index all: %w", err)
				}
				return nil
			})
		},
	}
}

// --- search ---

// NewSearchCmd creates the 'search' command.
func NewSearchCmd(flags *globalFlags) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over indexed feedback",
		Example: `  feedex search "app crashes on login"
  feedex search -k 3 "billing"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				matches, err := a.search.Search(ctx, query, k)
				if err != nil {
					return fmt.Errorf("search: %w", err)
				}
				if len(matches) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no matches")
					return nil
				}
				for i, m := range matches {
					fmt.Fprintf(cmd.OutOrStdout(), "%2d. [%.3f] #%d (%s) %s\n",
						i+1, m.Similarity, m.ID, m.Source, truncate(m.Content, 100))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&k, "limit", "k", 0, "number of results (default 10, max 100)")
	return cmd
}

// --- classify ---

// NewClassifyCmd creates the 'classify' command. Text comes from args or stdin.
func NewClassifyCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify a single text",
		Example: `  feedex classify "the app is absolutely broken and crashes"
  echo "love the new dashboard" | feedex classify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("text is required")
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				res := a.classify.Classify(ctx, text).Normalize()
				out := map[string]any{
					"sentiment": res.Sentiment,
					"score":     res.Score,
					"urgency":   res.Urgency,
					"themes":    res.Themes,
					"path":      res.Path,
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			})
		},
	}
}

// --- seed ---

// NewSeedCmd creates the 'seed' command replacing the corpus from a file.
func NewSeedCmd(flags *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Replace the corpus from a JSON or YAML file",
		Long: `Replace every stored feedback item with the records in the file.

Vectors are left untouched; run 'feedex batch' and 'feedex index-all' afterwards.
Ids keep increasing across reseeds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readSeedFile(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("seed replaces all %d stored items; pass --yes to confirm", len(inputs))
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				n, err := a.feedback.Reseed(ctx, inputs)
				if err != nil {
					return fmt.Errorf("reseed: %w", err)
				}
				a.logger.Info("corpus reseeded", zap.String("file", args[0]), zap.Int("items", n))
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d items\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm replacing the stored corpus")
	return cmd
}

// readSeedFile decodes a list of feedback records. Files ending in .yaml or
// .yml are YAML, everything else is JSON.
func readSeedFile(path string) ([]feedbackuc.Input, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var inputs []feedbackuc.Input
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &inputs)
	default:
		err = json.Unmarshal(data, &inputs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("seed file %s has no records", path)
	}
	return inputs, nil
}

// truncate collapses whitespace and keeps at most n runes.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
