package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/rie/internal/audit"
	"github.com/spigell/rie/internal/fusion"
	"github.com/spigell/rie/internal/records"
	"github.com/spigell/rie/internal/screening"
)

const (
	PromptPrint      = "Print ranking"
	PromptSave       = "Append ranking to audit log"
	PromptReportJobs = "Report by jobs"
	PromptDump       = "Dump ranking to file"
	PromptNo         = "No"
)

var errExit = errors.New("exit requested")

var rankPrompt = promptui.Select{
	Label: "Procced?",
	Items: []string{PromptPrint, PromptSave, PromptReportJobs, PromptDump, PromptNo},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score every candidate against every job and rank the results",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("candidates", "c", "", "file with candidate records (yaml or json)")
	rankCmd.Flags().StringP("jobs", "J", "", "file with job records (yaml or json)")
	rankCmd.Flags().BoolP("rescreen", "f", false, "score pairs even if they are already in the audit log")
	rankCmd.Flags().BoolP("auto-aprove", "y", false, "print and save the ranking without asking")
	rankCmd.Flags().StringSlice("skip-filter", nil, "filters to disable, e.g. min_fit,risk_flags")

	rankCmd.MarkFlagRequired("candidates")
	rankCmd.MarkFlagRequired("jobs")
}

// ranked is one line of the rank output.
type ranked struct {
	Candidate string        `json:"candidate"`
	Job       string        `json:"job"`
	Result    fusion.Result `json:"result"`
}

func rank(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := startup("rank")

	candidates, err := records.LoadCandidates(cmd.Flag("candidates").Value.String())
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}
	jobs, err := records.LoadJobs(cmd.Flag("jobs").Value.String())
	if err != nil {
		logger.Fatal("loading jobs", zap.Error(err))
	}

	logger.Info("loaded records", zap.Int("candidates", candidates.Len()), zap.Int("jobs", jobs.Len()))

	pipeline, err := newPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building scoring pipeline", zap.Error(err))
	}

	rescreen, _ := cmd.Flags().GetBool("rescreen")
	store := audit.NewStore(config.AuditFile)
	steps := screening.Default(rescreen)
	skipped, _ := cmd.Flags().GetStringSlice("skip-filter")
	for _, name := range skipped {
		screening.DisableByName(steps, name, "disabled via --skip-filter")
	}

	for _, status := range screening.Describe(steps) {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.Any("details", status.Details),
		)
	}

	screeningConfig := config.Screening
	if screeningConfig == nil {
		screeningConfig = &screening.Config{}
	}

	entries, err := screening.Run(ctx, screeningConfig, screening.Deps{
		Logger:   logger,
		Audit:    store,
		Scorer:   pipeline,
		Parallel: config.Parallel,
	}, steps, screening.Pairs(candidates, jobs))
	if err != nil {
		logger.Fatal("screening failed", zap.Error(err))
	}

	if entries.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no pairs left after filters"))
		return
	}
	entries.Sort()

	autoApprove, _ := cmd.Flags().GetBool("auto-aprove")
	if autoApprove {
		for _, action := range []string{PromptPrint, PromptSave} {
			if err := handleRankAction(action, logger, store, entries); err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}
		return
	}

	for {
		_, action, err := rankPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current ranking", zap.Int("count", entries.Len()))

		if err := handleRankAction(action, logger, store, entries); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleRankAction(action string, logger *zap.Logger, store *audit.Store, entries *screening.Entries) error {
	switch action {
	case PromptPrint:
		return printJSON(ranking(entries))
	case PromptSave:
		if !store.Enabled() {
			logger.Warn("audit log is not configured", zap.String("hint", "set audit-file in the config or RIE_AUDIT_FILE"))
			return nil
		}
		if err := store.Append(auditRecords(entries, time.Now())...); err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}
		logger.Info("appended to audit log", zap.String("filename", store.Path()), zap.Int("count", entries.Len()))
		return nil
	case PromptReportJobs:
		pretty, _ := json.MarshalIndent(reportByJob(entries), "", "  ")
		logger.Info(string(pretty), zap.Int("pairs count", entries.Len()))
		return nil
	case PromptDump:
		filename, err := dumpToTmpFile(ranking(entries))
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func ranking(entries *screening.Entries) []ranked {
	out := make([]ranked, 0, entries.Len())
	for _, entry := range entries.Items {
		if entry.Result == nil {
			continue
		}
		out = append(out, ranked{Candidate: entry.Candidate.Name, Job: entry.Job.Title, Result: *entry.Result})
	}
	return out
}

func auditRecords(entries *screening.Entries, now time.Time) []audit.Record {
	recs := make([]audit.Record, 0, entries.Len())
	for _, entry := range entries.Items {
		if entry.Result == nil {
			continue
		}
		recs = append(recs, audit.NewRecord(*entry.Candidate, entry.Job, *entry.Result, now))
	}
	return recs
}

type jobReport struct {
	Candidates int    `json:"candidates"`
	TopScore   int    `json:"topScore"`
	Top        string `json:"topCandidate"`
}

// reportByJob expects entries sorted by score.
func reportByJob(entries *screening.Entries) map[string]*jobReport {
	report := make(map[string]*jobReport)
	for _, entry := range entries.Items {
		if entry.Result == nil {
			continue
		}
		r, ok := report[entry.Job.Title]
		if !ok {
			r = &jobReport{TopScore: entry.Result.Score, Top: entry.Candidate.Name}
			report[entry.Job.Title] = r
		}
		r.Candidates++
	}
	return report
}

func dumpToTmpFile(v any) (string, error) {
	file, err := os.CreateTemp("", app+"-ranking-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}
