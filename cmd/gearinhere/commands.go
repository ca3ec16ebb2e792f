package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"gearinhere/internal/api"
	"gearinhere/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const previewChars = 200

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "gearinhere",
		Short:         "gearinhere drafts persona product reviews and publishes them to WordPress.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".env", "env file with settings, environment variables take precedence")

	root.AddCommand(
		newServeCmd(&configPath),
		newDraftCmd(&configPath),
		newPublishCmd(&configPath),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the operator HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			server := api.NewServer(a.cfg, a.pipeline, a.drafts, a.metrics, prometheus.DefaultGatherer, a.logger)

			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()
			a.logger.Info("server started", zap.String("port", a.cfg.ServerPort))

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("could not start server: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			a.logger.Info("shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			a.logger.Info("server exiting")
			return nil
		},
	}
}

func newDraftCmd(configPath *string) *cobra.Command {
	var (
		req     domain.DraftRequest
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Scrape a product page and generate a review draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			draft, err := a.pipeline.Prepare(cmd.Context(), req)
			if err != nil {
				return err
			}

			printPreview(cmd.ErrOrStderr(), draft)

			if outPath == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), draft.Content)
				return err
			}
			if err := os.WriteFile(outPath, []byte(draft.Content), 0o644); err != nil {
				return fmt.Errorf("write draft: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Draft written to %s, edit it and run publish.\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.URL, "url", "", "product URL (Kickstarter or Amazon)")
	cmd.Flags().StringVar(&req.Source, "source", "kickstarter", "source site: kickstarter or amazon")
	cmd.Flags().BoolVar(&req.AutoRefresh, "auto-refresh", false, "request a daily refresh for this product (not scheduled)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the draft to this file instead of stdout")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newPublishCmd(configPath *string) *cobra.Command {
	var (
		opts     domain.PublishOptions
		filePath string
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish an edited draft file to WordPress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			content, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("read draft: %w", err)
			}

			result, err := a.pipeline.PublishContent(cmd.Context(), opts.Title, string(content), opts)
			if err != nil {
				if errors.Is(err, domain.ErrPublish) {
					return fmt.Errorf("%s Draft kept at %s", domain.NoticePublishFailed, filePath)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published successfully! Post ID: %d\n", result.PostID)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Title, "title", "", "post title")
	cmd.Flags().StringVar(&filePath, "file", "", "markdown file holding the review")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category ID or slug")
	cmd.Flags().StringVar(&opts.Tags, "tags", "", "comma-separated tags")
	cmd.Flags().BoolVar(&opts.SaveAsDraft, "draft", false, "save as draft instead of publishing")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printPreview(w io.Writer, d *domain.Draft) {
	description := ""
	if d.Snapshot.Description != nil {
		description = *d.Snapshot.Description
	}
	if utf8.RuneCountInString(description) > previewChars {
		description = string([]rune(description)[:previewChars])
	}

	fmt.Fprintf(w, "Title: %s\n", d.Title())
	fmt.Fprintf(w, "Description: %s...\n", description)
	if d.Snapshot.Image != nil {
		fmt.Fprintf(w, "Image: %s\n", *d.Snapshot.Image)
	}
	for _, n := range d.Notices {
		fmt.Fprintf(w, "Note: %s\n", n)
	}
	fmt.Fprintln(w)
}
