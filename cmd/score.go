package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one résumé against a job description",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := setup(ctx)
		if err != nil {
			return err
		}

		cvPath, _ := cmd.Flags().GetString("cv")
		cvText, err := e.readInput("résumé (--cv)", cvPath, "")
		if err != nil {
			return err
		}

		jobText, err := e.jobText(cmd)
		if err != nil {
			return err
		}

		result := e.scorer.Score(ctx, cvText, jobText)

		e.logger.Info("résumé scored",
			zap.String("cv", cvPath),
			zap.Float64("score", result.Score),
			zap.Bool("degraded", result.Degraded),
			zap.Bool("low_confidence", result.LowConfidence),
		)

		return writeJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().String("cv", "", "résumé file (.pdf, .docx, .txt, .md)")
	addJobFlags(scoreCmd)

	_ = scoreCmd.MarkFlagRequired("cv")
}

func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().String("job", "", "job description file")
	cmd.Flags().String("job-text", "", "job description text (takes precedence over --job)")
}

func (e *engine) jobText(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("job")
	inline, _ := cmd.Flags().GetString("job-text")
	return e.readInput("job description (--job or --job-text)", path, inline)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
