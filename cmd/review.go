package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/rie/internal/audit"
	"github.com/spigell/rie/internal/records"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Grade the quality of a resume, optionally in the context of a job",
	Run: func(cmd *cobra.Command, _ []string) {
		review(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringP("candidate", "c", "", "file with the candidate record (yaml or json)")
	reviewCmd.Flags().String("candidate-id", "", "candidate id to pick when the file holds several")
	reviewCmd.Flags().StringP("resume", "r", "", "plain text resume, replaces the record's resumeText")
	reviewCmd.Flags().StringP("job", "J", "", "optional file with job records for context")
	reviewCmd.Flags().String("job-title", "", "job title to pick when the file holds several")
	reviewCmd.Flags().StringP("opinion", "o", "", "stored model reply to fuse instead of calling the model")

	reviewCmd.MarkFlagRequired("candidate")
}

func review(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := startup("review")

	candidates, err := records.LoadCandidates(cmd.Flag("candidate").Value.String())
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}
	candidate, err := pickCandidate(candidates, cmd.Flag("candidate-id").Value.String())
	if err != nil {
		logger.Fatal("choosing a candidate", zap.Error(err), zap.Strings("candidates", candidates.Names()))
	}

	if path := cmd.Flag("resume").Value.String(); path != "" {
		text, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal("reading resume", zap.Error(err))
		}
		candidate.ResumeText = string(text)
	}

	var job *records.Job
	if path := cmd.Flag("job").Value.String(); path != "" {
		jobs, err := records.LoadJobs(path)
		if err != nil {
			logger.Fatal("loading jobs", zap.Error(err))
		}
		if job, err = pickJob(jobs, cmd.Flag("job-title").Value.String()); err != nil {
			logger.Fatal("choosing a job", zap.Error(err), zap.Strings("jobs", jobs.Titles()))
		}
	}

	opinion, err := loadOpinion(cmd.Flag("opinion").Value.String())
	if err != nil {
		logger.Fatal("loading opinion", zap.Error(err))
	}

	pipeline, err := newPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building scoring pipeline", zap.Error(err))
	}

	result := pipeline.Review(ctx, *candidate, job, opinion)

	if err := printJSON(result); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}

	store := audit.NewStore(config.AuditFile)
	if err := store.Append(audit.NewRecord(*candidate, job, result, time.Now())); err != nil {
		logger.Fatal("writing audit log", zap.Error(err))
	}
}
