package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cvrank/internal/document"
	"github.com/spigell/cvrank/internal/ranking"
)

const (
	PromptReportByCandidates = "Report by candidates"
	PromptCandidateDetails   = "Show candidate details"
	PromptRankingToFile      = "Dump ranking to file"
	PromptExit               = "Exit"
	PromptBack               = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReportByCandidates, PromptCandidateDetails, PromptRankingToFile, PromptExit},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank résumés against a job description, one entry per candidate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := setup(ctx)
		if err != nil {
			return err
		}

		jobText, err := e.jobText(cmd)
		if err != nil {
			return err
		}

		files, _ := cmd.Flags().GetStringSlice("cv")
		dir, _ := cmd.Flags().GetString("dir")
		paths, err := collectFiles(files, dir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return errors.New("no résumé given: use --cv or --dir")
		}

		ids, _ := cmd.Flags().GetStringSlice("ids")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		if !cmd.Flags().Changed("page-size") {
			pageSize = e.config.Ranking.PageSize
		}

		e.logger.Info("ranking résumés", zap.Int("count", len(paths)))

		result := e.ranker.Rank(ctx, jobText, e.candidates(paths), ranking.Options{
			IDs:      ids,
			Page:     page,
			PageSize: pageSize,
		})

		interactive, _ := cmd.Flags().GetBool("interactive")
		if !interactive {
			return writeJSON(cmd.OutOrStdout(), result)
		}

		return e.interact(result)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	addJobFlags(rankCmd)
	rankCmd.Flags().StringSlice("cv", nil, "résumé files, repeatable or comma separated")
	rankCmd.Flags().String("dir", "", "directory with résumé files")
	rankCmd.Flags().StringSlice("ids", nil, "only rank these candidates (file base names)")
	rankCmd.Flags().Int("page", 1, "page to return, starting at 1")
	rankCmd.Flags().Int("page-size", 0, "entries per page, 0 returns everything")
	rankCmd.Flags().BoolP("interactive", "i", false, "browse the ranking interactively")
}

// collectFiles merges explicit files with the supported files of dir, sorted
// by name and without duplicates.
func collectFiles(files []string, dir string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, f := range files {
		if f = strings.TrimSpace(f); f != "" {
			add(f)
		}
	}

	if dir = strings.TrimSpace(dir); dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading directory %q: %w", dir, err)
		}
		var found []string
		for _, entry := range entries {
			p := filepath.Join(dir, entry.Name())
			if entry.IsDir() || !document.Supported(p) || !fileExists(p) {
				continue
			}
			found = append(found, p)
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}

	return paths, nil
}

// candidates loads every file. Unreadable files become candidates without text
// so that the ranking reports them as failed.
func (e *engine) candidates(paths []string) []ranking.Candidate {
	out := make([]ranking.Candidate, 0, len(paths))
	for _, p := range paths {
		text, err := e.loader.Load(p)
		if err != nil {
			e.logger.Warn("loading résumé", zap.String("file", p), zap.Error(err))
		}
		out = append(out, ranking.Candidate{
			ID:     filepath.Base(p),
			Text:   text,
			Source: p,
		})
	}
	return out
}

func (e *engine) interact(result *ranking.Ranking) error {
	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		if err := e.handleAction(action, result); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

func (e *engine) handleAction(action string, result *ranking.Ranking) error {
	switch action {
	case PromptExit:
		e.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByCandidates:
		pretty, _ := json.MarshalIndent(result.ReportByCandidate(), "", "  ")
		e.logger.Info(string(pretty), zap.Int("candidates count", result.Len()))
		return nil
	case PromptCandidateDetails:
		return e.candidateDetails(result)
	case PromptRankingToFile:
		filename, err := result.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump ranking to file: %w", err)
		}
		e.logger.Info("dumping ranking to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (e *engine) candidateDetails(result *ranking.Ranking) error {
	items := make([]string, 0, result.Len()+1)
	for i, entry := range result.Entries {
		items = append(items, fmt.Sprintf("%d. %s / %s / %.2f", i+1, entry.SourceID, entry.Identity.Name, entry.Result.Score))
	}

	candidatePrompt := promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: append(items, PromptBack),
	}

	idx, selected, err := candidatePrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	pretty, _ := json.MarshalIndent(result.Entries[idx], "", "  ")
	e.logger.Info(string(pretty), zap.String("document", result.Entries[idx].SourceID))
	return nil
}
