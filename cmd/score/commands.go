package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"garmentscore/internal/catalog"
	"garmentscore/internal/config"
	"garmentscore/internal/logger"
	"garmentscore/internal/model"
	"garmentscore/internal/scoring"
	"garmentscore/internal/service"
)

type scoreOptions struct {
	catalogFile   string
	responsesFile string
	clientID      string
	completedAt   string
	useAI         bool
	pretty        bool
}

func newRootCmd() *cobra.Command {
	opts := &scoreOptions{}

	root := &cobra.Command{
		Use:   "score",
		Short: "Score a completed garment assessment offline",
		Long: `Reads a submission ({"responses": {...}, "businessContext": {...}}) and
prints the full report as JSON. The rule-based narrative is used unless --ai is
set and OPENAI_API_KEY is configured.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	root.Flags().StringVarP(&opts.catalogFile, "catalog", "c", "", "catalog YAML (defaults to the built-in garment catalog)")
	root.Flags().StringVarP(&opts.responsesFile, "responses", "r", "-", "submission JSON file, - for stdin")
	root.Flags().StringVar(&opts.clientID, "client", "offline", "client id recorded on the report")
	root.Flags().StringVar(&opts.completedAt, "completed-at", "", "completion time, RFC3339 (defaults to now)")
	root.Flags().BoolVar(&opts.useAI, "ai", false, "ask the configured model for the narrative")
	root.Flags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")

	root.AddCommand(newCatalogCmd())
	return root
}

func newCatalogCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate a catalog and print it as resolved YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(file)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(c); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML (defaults to the built-in garment catalog)")
	return cmd
}

func runScore(ctx context.Context, opts *scoreOptions, stdin io.Reader, stdout io.Writer) error {
	c, err := loadCatalog(opts.catalogFile)
	if err != nil {
		return err
	}
	active := catalog.ActiveOnly(c)

	req, err := readSubmission(opts.responsesFile, stdin)
	if err != nil {
		return err
	}

	completedAt := time.Now().UTC()
	if opts.completedAt != "" {
		completedAt, err = time.Parse(time.RFC3339, opts.completedAt)
		if err != nil {
			return fmt.Errorf("--completed-at: %w", err)
		}
	}

	scored, err := scoring.Score(active, req.Responses, completedAt)
	if err != nil {
		return err
	}

	var insights *model.NarrativeInsights
	if opts.useAI {
		narrator := service.NewNarrativeService(config.DefaultAIConfig(), logger.Nop())
		insights = narrator.Generate(ctx, active, scored, req.BusinessContext)
	}

	report := scoring.Assemble(scoring.AssembleInput{
		ReportID:     "offline",
		AssessmentID: "offline",
		ClientID:     opts.clientID,
		Catalog:      active,
		Scored:       scored,
		Context:      req.BusinessContext,
		Insights:     insights,
		CreatedAt:    completedAt,
	})

	enc := json.NewEncoder(stdout)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

func readSubmission(path string, stdin io.Reader) (*model.SubmissionRequest, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var req model.SubmissionRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	if req.Responses == nil {
		req.Responses = model.Responses{}
	}
	return &req, nil
}

func loadCatalog(path string) (*model.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catalog.Load(f)
}
