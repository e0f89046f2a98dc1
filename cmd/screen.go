package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/rie/internal/audit"
	"github.com/spigell/rie/internal/records"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Score one candidate against one job",
	Run: func(cmd *cobra.Command, _ []string) {
		screen(cmd)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringP("candidate", "c", "", "file with the candidate record (yaml or json)")
	screenCmd.Flags().String("candidate-id", "", "candidate id to pick when the file holds several")
	screenCmd.Flags().StringP("job", "J", "", "file with the job record (yaml or json)")
	screenCmd.Flags().String("job-title", "", "job title to pick when the file holds several")
	screenCmd.Flags().StringP("opinion", "o", "", "stored model reply to fuse instead of calling the model")

	screenCmd.MarkFlagRequired("candidate")
	screenCmd.MarkFlagRequired("job")
}

func screen(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := startup("screen")

	candidate, job := loadPair(cmd, logger)

	opinion, err := loadOpinion(cmd.Flag("opinion").Value.String())
	if err != nil {
		logger.Fatal("loading opinion", zap.Error(err))
	}

	pipeline, err := newPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building scoring pipeline", zap.Error(err))
	}

	result := pipeline.Screen(ctx, *candidate, *job, opinion)

	if err := printJSON(result); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}

	store := audit.NewStore(config.AuditFile)
	if err := store.Append(audit.NewRecord(*candidate, job, result, time.Now())); err != nil {
		logger.Fatal("writing audit log", zap.Error(err))
	}
	if store.Enabled() {
		logger.Info("appended to audit log", zap.String("filename", store.Path()))
	}
}

func loadPair(cmd *cobra.Command, logger *zap.Logger) (*records.Candidate, *records.Job) {
	candidates, err := records.LoadCandidates(cmd.Flag("candidate").Value.String())
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}
	candidate, err := pickCandidate(candidates, cmd.Flag("candidate-id").Value.String())
	if err != nil {
		logger.Fatal("choosing a candidate", zap.Error(err), zap.Strings("candidates", candidates.Names()))
	}

	jobs, err := records.LoadJobs(cmd.Flag("job").Value.String())
	if err != nil {
		logger.Fatal("loading jobs", zap.Error(err))
	}
	job, err := pickJob(jobs, cmd.Flag("job-title").Value.String())
	if err != nil {
		logger.Fatal("choosing a job", zap.Error(err), zap.Strings("jobs", jobs.Titles()))
	}

	return candidate, job
}
