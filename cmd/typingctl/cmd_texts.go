package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/baharkarakas/typing-backend/internal/repository/postgres"
	"github.com/baharkarakas/typing-backend/internal/services"
)

var importDryRun bool

// importTextsCmd bulk-loads practice texts from YAML.
var importTextsCmd = &cobra.Command{
	Use:   "import-texts FILE",
	Short: "Import practice texts from a YAML file",
	Long: `Import practice texts from a YAML file of the form:

texts:
  - text: "The quick brown fox jumps over the lazy dog."
    language: english
    difficultyLevel: easy
    date: 2026-01-01T00:00:00Z   # optional

All texts are inserted in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportTexts,
}

func init() {
	importTextsCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the file without writing")
}

type textsFile struct {
	Texts []struct {
		Text            string     `yaml:"text"`
		Language        string     `yaml:"language"`
		DifficultyLevel string     `yaml:"difficultyLevel"`
		Date            *time.Time `yaml:"date"`
	} `yaml:"texts"`
}

// parseTexts decodes and validates a texts file.
func parseTexts(r io.Reader) ([]services.TextInput, error) {
	var f textsFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	out := make([]services.TextInput, 0, len(f.Texts))
	for i, t := range f.Texts {
		in := services.TextInput{Text: t.Text, Language: t.Language, DifficultyLevel: t.DifficultyLevel, Date: t.Date}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("texts[%d]: %w", i, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func runImportTexts(cmd *cobra.Command, args []string) error {
	fh, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer fh.Close()

	texts, err := parseTexts(fh)
	if err != nil {
		return err
	}
	if importDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d texts valid\n", len(texts))
		return nil
	}

	c, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	n, err := services.NewTextService(postgres.NewStore(c.sql)).Import(cmd.Context(), texts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d texts\n", n)
	return nil
}
