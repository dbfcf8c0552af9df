package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spigell/cvrank/internal/text"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the skills, experience and identity found in a résumé",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}

		cvPath, _ := cmd.Flags().GetString("cv")
		raw, err := e.readInput("résumé (--cv)", cvPath, "")
		if err != nil {
			return err
		}

		profile := e.scorer.Extractor().Profile(text.Normalize(raw))

		return writeJSON(cmd.OutOrStdout(), profile)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("cv", "", "résumé file (.pdf, .docx, .txt, .md)")
	_ = extractCmd.MarkFlagRequired("cv")
}
