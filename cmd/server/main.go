package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"navaid/internal/app"
	"navaid/internal/config"
	"navaid/internal/dto"
	"navaid/internal/logger"
	"navaid/internal/repository/sqlite"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "server",
		Short:        "Intelligent Navigation Aid detection API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	root.AddCommand(newDetectCmd(), newHistoryCmd())
	return root
}

func setup() (*config.Config, *logger.Logger, error) {
	cfg := config.Load()
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func serve() error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Close()

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("Failed to start: %v", err)
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Error("Server error: %v", err)
		return err
	}
	return nil
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <image-file>",
		Short: "Run detection on a local image and print the JSON response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Close()

			application, err := app.NewApp(cfg, log)
			if err != nil {
				return err
			}
			defer application.Close()

			payload := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(raw)
			result, err := application.Pipeline().Detect(payload)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dto.NewDetectResponse(result.Detections))
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	var pruneOlderThan time.Duration

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or prune the detection history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.HistoryDB == "" {
				return fmt.Errorf("HISTORY_DB is not set")
			}

			db, err := sqlite.New(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := sqlite.NewHistoryRepository(db)
			out := cmd.OutOrStdout()

			if pruneOlderThan > 0 {
				removed, err := repo.DeleteOlderThan(time.Now().Add(-pruneOlderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d requests older than %s\n", removed, pruneOlderThan)
				return nil
			}

			total, err := repo.GetTotalCount()
			if err != nil {
				return err
			}
			counts, err := repo.GetLabelCounts()
			if err != nil {
				return err
			}
			recent, err := repo.GetRecent(limit)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Requests recorded: %d\n", total)

			labels := make([]string, 0, len(counts))
			for label := range counts {
				labels = append(labels, label)
			}
			sort.Slice(labels, func(i, j int) bool {
				if counts[labels[i]] != counts[labels[j]] {
					return counts[labels[i]] > counts[labels[j]]
				}
				return labels[i] < labels[j]
			})
			for _, label := range labels {
				fmt.Fprintf(out, "  %-16s %d\n", label, counts[label])
			}

			for _, req := range recent {
				fmt.Fprintf(out, "%s  %s  %dx%d  %d detections\n",
					req.Timestamp.Format(time.RFC3339), req.RequestID, req.Width, req.Height, len(req.Detections))
				for _, d := range req.Detections {
					fmt.Fprintf(out, "    %-16s %.2f  [%d %d %d %d]  %s\n", d.Label, d.Confidence, d.X1, d.Y1, d.X2, d.Y2, d.Direction)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of recent requests to show")
	cmd.Flags().DurationVar(&pruneOlderThan, "prune-older-than", 0, "delete requests older than this age instead of listing")
	return cmd
}
