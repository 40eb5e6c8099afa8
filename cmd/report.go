package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/model"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report in the foreground and print it as JSON",
}

var reportAgentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Rank the top selling agents for a suburb",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("report"); err != nil {
			return err
		}
		req, err := reportRequestFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		p, _, err := initPipeline(cfg)
		if err != nil {
			return err
		}

		report, err := p.RunAgents(cmd.Context(), req, logStatus)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	},
}

var reportAgenciesCmd = &cobra.Command{
	Use:   "agencies",
	Short: "Rank the busiest rental agencies for a suburb",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("report"); err != nil {
			return err
		}
		req, err := reportRequestFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		p, _, err := initPipeline(cfg)
		if err != nil {
			return err
		}

		report, err := p.RunAgencies(cmd.Context(), req, logStatus)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	},
}

func logStatus(_ context.Context, s model.JobStatus) {
	zap.L().Debug("report stage", zap.String("status", string(s)), zap.Int("progress", s.Progress()))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// optionalInt returns a pointer to the flag value when the flag was set.
func optionalInt(fs *pflag.FlagSet, name string) (*int, error) {
	if !fs.Changed(name) {
		return nil, nil
	}
	v, err := fs.GetInt(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func reportRequestFromFlags(fs *pflag.FlagSet) (model.ReportRequest, error) {
	var req model.ReportRequest
	req.Suburb, _ = fs.GetString("suburb")
	req.State, _ = fs.GetString("state")
	req.PostCode, _ = fs.GetString("post-code")
	req.Region, _ = fs.GetString("region")
	req.Area, _ = fs.GetString("area")
	if types, _ := fs.GetStringSlice("property-types"); len(types) > 0 {
		req.PropertyTypes = types
	}
	req.IncludeSurroundingSuburbs, _ = fs.GetBool("include-surrounding")

	ints := []struct {
		flag string
		dst  **int
	}{
		{"min-bedrooms", &req.MinBedrooms},
		{"max-bedrooms", &req.MaxBedrooms},
		{"min-bathrooms", &req.MinBathrooms},
		{"max-bathrooms", &req.MaxBathrooms},
		{"min-carspaces", &req.MinCarspaces},
		{"max-carspaces", &req.MaxCarspaces},
		{"min-land-area", &req.MinLandArea},
		{"max-land-area", &req.MaxLandArea},
	}
	for _, f := range ints {
		v, err := optionalInt(fs, f.flag)
		if err != nil {
			return req, err
		}
		*f.dst = v
	}
	return req, nil
}

func addReportFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.String("suburb", "", "suburb to report on (required)")
	fs.String("state", "", "state code (default NSW)")
	fs.String("post-code", "", "post code")
	fs.String("region", "", "Domain region")
	fs.String("area", "", "Domain area")
	fs.StringSlice("property-types", nil, "property types to keep (e.g. House,Townhouse)")
	fs.Bool("include-surrounding", false, "include surrounding suburbs")
	for _, name := range []string{
		"min-bedrooms", "max-bedrooms",
		"min-bathrooms", "max-bathrooms",
		"min-carspaces", "max-carspaces",
		"min-land-area", "max-land-area",
	} {
		fs.Int(name, 0, "")
	}
	_ = cmd.MarkFlagRequired("suburb")
}

func init() {
	addReportFlags(reportAgentsCmd)
	addReportFlags(reportAgenciesCmd)
	reportCmd.AddCommand(reportAgentsCmd)
	reportCmd.AddCommand(reportAgenciesCmd)
	rootCmd.AddCommand(reportCmd)
}
