package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/candidate"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
)

var candidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Manage candidate records",
}

var candidateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a candidate, optionally prefilled from a resume",
	Args:  cobra.NoArgs,
	RunE:  withApplication(createCandidate),
}

var candidateUpdateCmd = &cobra.Command{
	Use:   "update <candidate-id>",
	Short: "Update the candidate's name, email or phone",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(updateCandidate),
}

var candidateShowCmd = &cobra.Command{
	Use:   "show <candidate-id>",
	Short: "Show the candidate with their interviews",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(showCandidate),
}

var candidateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates with their latest final score",
	Args:  cobra.NoArgs,
	RunE:  withApplication(listCandidates),
}

func init() {
	rootCmd.AddCommand(candidateCmd)
	candidateCmd.AddCommand(candidateCreateCmd, candidateUpdateCmd, candidateShowCmd, candidateListCmd)

	for _, c := range []*cobra.Command{candidateCreateCmd, candidateUpdateCmd} {
		c.Flags().String("name", "", "full name")
		c.Flags().String("email", "", "email address")
		c.Flags().String("phone", "", "phone number")
	}
	candidateCreateCmd.Flags().StringP("resume", "r", "", "PDF or DOCX resume to fill empty fields from")
}

func profileFromFlags(cmd *cobra.Command) candidate.Profile {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	phone, _ := cmd.Flags().GetString("phone")

	return candidate.Profile{Name: name, Email: email, Phone: phone}
}

func createCandidate(ctx context.Context, cmd *cobra.Command, a *application, _ []string) error {
	c, err := candidate.New(profileFromFlags(cmd), time.Now())
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("resume"); path != "" {
		upload, err := readUpload(path, a.config.Resume.MaxSizeBytes)
		if err != nil {
			return err
		}
		result, err := a.extractor().Extract(ctx, upload)
		if err != nil {
			return err
		}
		filled := c.ApplyResume(result, time.Now())
		a.logger.Debug("candidate prefilled from resume",
			zap.String(logger.FieldCandidateID, c.ID),
			zap.Strings("fields", filled),
		)
	}

	if err := a.store.SaveCandidate(ctx, c); err != nil {
		return fmt.Errorf("saving candidate: %w", err)
	}

	a.logger.Info("candidate created",
		zap.String(logger.FieldCandidateID, c.ID),
		zap.Strings("missing_fields", c.MissingFields()),
	)
	return printJSON(cmd, c)
}

func updateCandidate(ctx context.Context, cmd *cobra.Command, a *application, args []string) error {
	c, err := a.store.GetCandidate(ctx, args[0])
	if err != nil {
		return err
	}

	if err := c.ApplyProfile(profileFromFlags(cmd), time.Now()); err != nil {
		return err
	}
	if err := a.store.SaveCandidate(ctx, c); err != nil {
		return fmt.Errorf("saving candidate: %w", err)
	}

	return printJSON(cmd, c)
}

type sessionBrief struct {
	ID         string           `json:"id"`
	Status     interview.Status `json:"status"`
	Answered   int              `json:"answeredQuestions"`
	Total      int              `json:"totalQuestions"`
	FinalScore *float64         `json:"finalScore,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

func briefOf(s *interview.Session) sessionBrief {
	return sessionBrief{
		ID:         s.ID,
		Status:     s.Status,
		Answered:   s.Answered(),
		Total:      len(s.Questions),
		FinalScore: s.FinalScore,
		CreatedAt:  s.CreatedAt,
	}
}

func showCandidate(ctx context.Context, cmd *cobra.Command, a *application, args []string) error {
	c, err := a.store.GetCandidate(ctx, args[0])
	if err != nil {
		return err
	}

	sessions, err := a.store.ListSessions(ctx, c.ID)
	if err != nil {
		return err
	}

	briefs := make([]sessionBrief, 0, len(sessions))
	for _, s := range sessions {
		briefs = append(briefs, briefOf(s))
	}

	return printJSON(cmd, struct {
		Candidate *candidate.Candidate `json:"candidate"`
		Sessions  []sessionBrief       `json:"sessions"`
	}{c, briefs})
}

type candidateRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	MissingFields []string `json:"missingFields"`
	Interviews    int      `json:"interviews"`
	LatestScore   *float64 `json:"latestFinalScore,omitempty"`
}

func listCandidates(ctx context.Context, cmd *cobra.Command, a *application, _ []string) error {
	candidates, err := a.store.ListCandidates(ctx)
	if err != nil {
		return err
	}

	rows := make([]candidateRow, 0, len(candidates))
	for _, c := range candidates {
		sessions, err := a.store.ListSessions(ctx, c.ID)
		if err != nil {
			return err
		}

		row := candidateRow{
			ID:            c.ID,
			Name:          c.Name,
			Email:         c.Email,
			MissingFields: c.MissingFields(),
			Interviews:    len(sessions),
		}
		// sessions are newest first
		for _, s := range sessions {
			if s.FinalScore != nil {
				row.LatestScore = s.FinalScore
				break
			}
		}
		rows = append(rows, row)
	}

	return printJSON(cmd, rows)
}
