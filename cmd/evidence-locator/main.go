// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/gemaraproj/evidence-locator/internal/config"
	"github.com/gemaraproj/evidence-locator/internal/display"
	"github.com/gemaraproj/evidence-locator/internal/evidence/loaders"
	"github.com/gemaraproj/evidence-locator/internal/query"
	"github.com/gemaraproj/evidence-locator/internal/tool"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "evidence-locator",
		Short: "Resolve query evidence to renderable document anchors",
		Long: `evidence-locator resolves passages, tables and highlights returned by a
document query to anchors inside the previewed document:

  - page and bounding box for documents with structural metadata
  - clamped character ranges for plain text
  - text match selectors for HTML and JSON documents

It also computes the title, excerpt and link displayed for each result.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(locateCmd(opts))
	rootCmd.AddCommand(renderCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	return rootCmd
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func readResponse(path string, stdin io.Reader) (query.Response, error) {
	if path == "" || path == "-" {
		return query.Decode(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return query.Response{}, fmt.Errorf("failed to open response: %w", err)
	}
	defer f.Close()
	return query.Decode(f)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func locateCmd(root *rootOptions) *cobra.Command {
	var (
		responsePath string
		filePath     string
		input        tool.InputLocateEvidence
	)
	cmd := &cobra.Command{
		Use:   "locate DOCUMENT_ID",
		Short: "Resolve one piece of evidence to anchors in its document",
		Example: `  evidence-locator locate 7e8ada04 --response response.json --evidence passage --index 0
  evidence-locator locate 7e8ada04 --response response.json --evidence highlight --begin 40 --end 60`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := readResponse(responsePath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			input.Response = resp
			input.DocumentID = args[0]
			if filePath != "" {
				data, err := os.ReadFile(filePath)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				input.FileBase64 = base64.StdEncoding.EncodeToString(data)
			}

			h := tool.NewHandlers(loaders.NewDefaultPipeline(), root.logger(cmd.ErrOrStderr()))
			_, out, err := h.LocateEvidence(cmd.Context(), nil, input)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&responsePath, "response", "r", "-", "query response JSON file (- for stdin)")
	cmd.Flags().StringVar(&filePath, "file", "", "original document file (PDF) backing the preview")
	cmd.Flags().StringVarP(&input.Evidence, "evidence", "e", "", "evidence kind: passage, table or highlight")
	cmd.Flags().IntVarP(&input.Index, "index", "i", 0, "passage or table index")
	cmd.Flags().IntVar(&input.Begin, "begin", 0, "highlight begin offset")
	cmd.Flags().IntVar(&input.End, "end", 0, "highlight end offset")
	return cmd
}

func renderCmd(root *rootOptions) *cobra.Command {
	var responsePath, configPath string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the title, excerpt and link of every result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := readResponse(responsePath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg := config.Config{}
			if configPath != "" {
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}

			page := display.Render(resp, cfg.Settings())
			log := root.logger(cmd.ErrOrStderr())
			log.Debug("rendered results", "results", len(page.Results), "passage_length", display.PassageLength(cfg.PassageLength))
			if page.FetchFilter != "" {
				log.Info("tables reference documents missing from the response", "fetch_filter", page.FetchFilter)
			}
			return writeJSON(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().StringVarP(&responsePath, "response", "r", "-", "query response JSON file (- for stdin)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "display configuration file (YAML)")
	return cmd
}

func serveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the locator tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := root.logger(cmd.ErrOrStderr())
			server := tool.NewServer(tool.NewHandlers(loaders.NewDefaultPipeline(), log), version)
			log.Info("serving MCP on stdio", "version", version, "tools", strings.Join([]string{
				tool.MetadataLocateEvidence.Name,
				tool.MetadataRenderResults.Name,
			}, ","))
			if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil && cmd.Context().Err() == nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
