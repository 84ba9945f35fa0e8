package cmd

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/resume"
)

const parseConcurrency = 4

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Work with resume files",
}

var resumeParseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Extract name, email, phone, summary and sections from PDF or DOCX resumes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApplication(parseResumes),
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.AddCommand(resumeParseCmd)

	resumeParseCmd.Flags().StringP("candidate", "c", "", "fill the candidate's empty fields from the parsed resume")
}

// readUpload loads a resume file. Files above maxSize are rejected from
// their stat before anything is read; zero means the extractor default.
func readUpload(path string, maxSize int64) (resume.Upload, error) {
	if maxSize <= 0 {
		maxSize = resume.DefaultMaxSizeBytes
	}

	info, err := os.Stat(path)
	if err != nil {
		return resume.Upload{}, fmt.Errorf("reading resume: %w", err)
	}
	if info.IsDir() {
		return resume.Upload{}, fmt.Errorf("reading resume: %s is a directory", path)
	}
	if info.Size() > maxSize {
		return resume.Upload{}, fmt.Errorf("%w: %s is %d bytes, limit is %d", resume.ErrFileTooLarge, filepath.Base(path), info.Size(), maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return resume.Upload{}, fmt.Errorf("reading resume: %w", err)
	}

	return resume.Upload{
		FileName: filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Data:     data,
	}, nil
}

type parseOutcome struct {
	Path   string         `json:"path"`
	Result *resume.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func parseResumes(ctx context.Context, cmd *cobra.Command, a *application, args []string) error {
	candidateID, _ := cmd.Flags().GetString("candidate")
	if candidateID != "" {
		if len(args) != 1 {
			return errors.New("--candidate takes exactly one resume file")
		}
		return backfillCandidate(ctx, cmd, a, candidateID, args[0])
	}

	extractor := a.extractor()
	outcomes := make([]parseOutcome, len(args))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parseConcurrency)
	for i, path := range args {
		g.Go(func() error {
			outcomes[i].Path = path

			upload, err := readUpload(path, a.config.Resume.MaxSizeBytes)
			if err != nil {
				outcomes[i].Error = err.Error()
				return nil
			}
			result, err := extractor.Extract(gctx, upload)
			if err != nil {
				a.logger.Warn("resume extraction failed", zap.String("path", path), zap.Error(err))
				outcomes[i].Error = err.Error()
				return nil
			}
			outcomes[i].Result = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(outcomes) == 1 {
		if outcomes[0].Error != "" {
			return errors.New(outcomes[0].Error)
		}
		return printJSON(cmd, outcomes[0].Result)
	}
	return printJSON(cmd, outcomes)
}

// backfillCandidate fills only the empty identity fields of an existing
// candidate and replaces the stored resume summary.
func backfillCandidate(ctx context.Context, cmd *cobra.Command, a *application, candidateID, path string) error {
	c, err := a.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return err
	}

	upload, err := readUpload(path, a.config.Resume.MaxSizeBytes)
	if err != nil {
		return err
	}
	result, err := a.extractor().Extract(ctx, upload)
	if err != nil {
		return err
	}

	filled := c.ApplyResume(result, time.Now())
	if err := a.store.SaveCandidate(ctx, c); err != nil {
		return fmt.Errorf("saving candidate: %w", err)
	}

	a.logger.Info("resume attached",
		zap.String(logger.FieldCandidateID, c.ID),
		zap.String("file", result.FileName),
		zap.Strings("filled_fields", filled),
	)

	return printJSON(cmd, struct {
		Candidate    any      `json:"candidate"`
		FilledFields []string `json:"filledFields"`
		Resume       any      `json:"resume"`
	}{c, filled, result})
}
