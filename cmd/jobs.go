package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/articflow/agentlink/internal/jobs"
	"github.com/articflow/agentlink/internal/model"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect report jobs",
	Long:  "Commands for listing, viewing, and purging background report jobs.",
}

// -- jobs list --

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List report jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("jobs"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		list, err := st.ListJobs(ctx, model.JobFilter{Status: model.JobStatus(status), Limit: limit})
		if err != nil {
			return eris.Wrap(err, "jobs list")
		}

		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No jobs found.")
			return nil
		}

		formatJobsList(cmd.OutOrStdout(), list)
		return nil
	},
}

// -- jobs status --

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show full details of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("jobs"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		job, err := st.GetJob(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "jobs status")
		}
		return printJSON(cmd.OutOrStdout(), job)
	},
}

// -- jobs purge --

var jobsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete finished jobs older than the TTL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("jobs"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl <= 0 {
			ttl = cfg.Jobs.TTL()
		}

		n, err := jobs.NewPurger(st, ttl).Purge(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Purged %d job(s) older than %s.\n", n, ttl)
		return nil
	},
}

func formatJobsList(w io.Writer, list []model.Job) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSUBURB\tSTATUS\tPROGRESS\tUPDATED")
	for _, j := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
			j.ID, j.Kind, j.Suburb, j.Status, j.Status.Progress(),
			j.UpdatedAt.Local().Format(time.DateTime),
		)
	}
	_ = tw.Flush()
}

func init() {
	jobsListCmd.Flags().String("status", "", "filter by job status (processing, completed, failed, ...)")
	jobsListCmd.Flags().Int("limit", 50, "max number of jobs to display")

	jobsPurgeCmd.Flags().Duration("ttl", 0, "age after which finished jobs are deleted (default from config)")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsStatusCmd)
	jobsCmd.AddCommand(jobsPurgeCmd)
	rootCmd.AddCommand(jobsCmd)
}
