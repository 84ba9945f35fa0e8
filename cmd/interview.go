package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run and inspect interview sessions",
}

var interviewStartCmd = &cobra.Command{
	Use:   "start <candidate-id>",
	Short: "Open a new interview session for the candidate",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(startInterview),
}

var interviewCurrentCmd = &cobra.Command{
	Use:   "current <session-id>",
	Short: "Show the first unresolved question and the session progress",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(currentQuestion),
}

var interviewAnswerCmd = &cobra.Command{
	Use:   "answer <session-id> <question-index> [answer...]",
	Short: "Submit an answer; it is read from stdin when not given as arguments",
	Args:  cobra.MinimumNArgs(2),
	RunE:  withApplication(answerQuestion),
}

var interviewSkipCmd = &cobra.Command{
	Use:   "skip <session-id> <question-index>",
	Short: "Record a timeout for the question",
	Args:  cobra.ExactArgs(2),
	RunE:  withApplication(skipQuestion),
}

var interviewFinalizeCmd = &cobra.Command{
	Use:   "finalize <session-id>",
	Short: "Compute the final score and summary of a fully resolved session",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(finalizeInterview),
}

var interviewShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the whole session",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(showInterview),
}

var interviewRunCmd = &cobra.Command{
	Use:   "run <candidate-id>",
	Short: "Interview the candidate interactively, resuming an open session if there is one",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(runInterview),
}

func init() {
	rootCmd.AddCommand(interviewCmd)
	interviewCmd.AddCommand(
		interviewStartCmd,
		interviewCurrentCmd,
		interviewAnswerCmd,
		interviewSkipCmd,
		interviewFinalizeCmd,
		interviewShowCmd,
		interviewRunCmd,
	)

	interviewRunCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before the first question")
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", interview.ErrInvalidQuestionIndex, raw)
	}
	return index, nil
}

func startInterview(ctx context.Context, cmd *cobra.Command, a *application, args []string) error {
	svc, err := a.interviews(ctx)
	if err != nil {
		return err
	}

	session, err := svc.StartSession(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, session)
}

func currentQuestion(ctx context.Context, cmd *cobra.Command, a *application, args []string) error {
	svc, err := a.interviews(ctx)
	if err != nil {
		return err
	}

	progress, err := svc.CurrentQuestion(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, progress)
}

func answerQuestion(ctx context.Context, cmd *cobra.Command, a *application, args []string) error {
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	answer := strings.Join(args[2:], " ")
	if len(args) == 2 {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading answer: %w", err)
		}
		answer = string(raw)
	}

	svc, err := a.interviews(ctx)
	if err != nil {
		return err
	}

	session, err := svc.SubmitAnswer(ctx, args[0], index, answer)
	if err != nil {
		return err
	}
	return printJSON(cmd, session.Questions[index])
}

func skipQuestion(ctx context.Context, cmd *cobra.Command, a *application, args []string) error {
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	svc, err := a.interviews(ctx)
	if err != nil {
		return err
	}

	session, err := svc.Skip(ctx, args[0], index)
	if err != nil {
		return err
	}
	return printJSON(cmd, session.Progress())
}

func finalizeInterview(ctx context.Context, cmd *cobra.Command, a *application, args []string) error {
	svc, err := a.interviews(ctx)
	if err != nil {
		return err
	}

	session, err := svc.Finalize(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, session)
}

func showInterview(ctx context.Context, cmd *cobra.Command, a *application, args []string) error {
	svc, err := a.interviews(ctx)
	if err != nil {
		return err
	}

	session, err := svc.Session(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, session)
}

// runInterview asks the questions one by one. The clock runs on this side:
// an answer given after the question's allowance is recorded as a skip.
func runInterview(ctx context.Context, cmd *cobra.Command, a *application, args []string) error {
	svc, err := a.interviews(ctx)
	if err != nil {
		return err
	}

	session, err := svc.StartSession(ctx, args[0])
	var inProgress *interview.SessionInProgressError
	if errors.As(err, &inProgress) {
		a.logger.Info("resuming open interview", zap.String(logger.FieldSessionID, inProgress.SessionID))
		session, err = svc.Session(ctx, inProgress.SessionID)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	progress := session.Progress()
	fmt.Fprintf(out, "Interview %s: %d questions, %d already resolved.\n", session.ID, progress.Total, progress.Resolved)

	if approve, _ := cmd.Flags().GetBool("auto-approve"); !approve && !progress.Completed {
		prompt := promptui.Select{
			Label: "Start?",
			Items: []string{PromptYes, PromptNo},
		}
		_, choice, err := prompt.Run()
		if err != nil {
			return pausedOr(out, err)
		}
		if choice == PromptNo {
			fmt.Fprintf(out, "Session %s stays open.\n", session.ID)
			return nil
		}
	}

	for {
		if session, progress, err = nextQuestion(ctx, svc, session); err != nil {
			return err
		}
		if progress.Completed {
			break
		}

		q := progress.Question
		allowed := time.Duration(q.SecondsAllowed) * time.Second
		fmt.Fprintf(out, "\nQuestion %d/%d [%s, %s]\n%s\n", progress.Index+1, progress.Total, q.Difficulty, allowed, q.Text)

		prompt := promptui.Prompt{Label: fmt.Sprintf("Answer (%s)", allowed)}
		started := time.Now()
		answer, err := prompt.Run()
		elapsed := time.Since(started).Round(time.Second)
		if err != nil {
			return pausedOr(out, err)
		}

		if elapsed > allowed {
			if session, err = svc.Skip(ctx, session.ID, progress.Index); err != nil {
				return err
			}
			fmt.Fprintf(out, "Time is up (%s of %s), the question is skipped.\n", elapsed, allowed)
			continue
		}

		submitted, err := svc.SubmitAnswer(ctx, session.ID, progress.Index, answer)
		if errors.Is(err, interview.ErrQuestionAlreadyResolved) {
			fmt.Fprintln(out, "The question was resolved elsewhere, moving on.")
			if session, err = svc.Session(ctx, session.ID); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		session = submitted
		graded := session.Questions[progress.Index]
		fmt.Fprintf(out, "Score: %d/10 (%s)\n", *graded.Score, graded.Rationale)
	}

	fmt.Fprintf(out, "\nFinal score: %.1f/10\n%s\n", *session.FinalScore, session.Summary)
	return nil
}

// nextQuestion returns the session's progress. A session whose questions are
// all resolved but which was never finalized is finalized first.
func nextQuestion(ctx context.Context, svc *interview.Service, session *interview.Session) (*interview.Session, *interview.Progress, error) {
	progress := session.Progress()
	if !progress.Completed || session.Completed() {
		return session, progress, nil
	}

	finalized, err := svc.Finalize(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}
	return finalized, finalized.Progress(), nil
}

// pausedOr treats an interrupted prompt as a pause; the session stays open.
func pausedOr(out io.Writer, err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		fmt.Fprintln(out, "\nInterview paused. Run the same command again to continue.")
		return nil
	}
	return err
}
