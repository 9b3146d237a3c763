package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/assessment"
	"github.com/spigell/hh-interviewer/internal/export"
	"github.com/spigell/hh-interviewer/internal/headhunter"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/resume"
	"github.com/spigell/hh-interviewer/internal/secrets"
)

const (
	PromptYes          = "Yes"
	PromptNo           = "No"
	PromptSaveScore    = "Save score"
	PromptExportReport = "Export report"
	PromptRestart      = "Restart interview"
	PromptExit         = "Exit"
)

var errExit = errors.New("exit requested")

var resultPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptSaveScore, PromptExportReport, PromptRestart, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Screen a resume against a job and run the interview",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "path to the resume (.txt, .md or .pdf), - reads plain text from stdin")
	runCmd.Flags().String("job", "", "job title from the catalog. Asked interactively when unset.")
	runCmd.Flags().String("vacancy", "", "hh.ru vacancy id to screen against instead of the catalog")
	runCmd.Flags().Bool("search", false, "choose the vacancy from hh.ru search results (headhunter.search in config)")
	runCmd.Flags().String("candidate", "", "candidate name")
	runCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation when the skill match is below the gate")
	runCmd.Flags().Bool("dictate", false, "read answers line by line from stdin, an empty line ends an answer")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	resumePath := strings.TrimSpace(cmd.Flag("resume").Value.String())
	if resumePath == "" {
		logger.Fatal("resume is required", zap.String("hint", "pass --resume path/to/cv.pdf"))
	}

	dictate := cmd.Flag("dictate").Value.String() == "true"
	if dictate && resumePath == stdinPath {
		logger.Fatal("stdin can carry either the resume or the answers", zap.String("hint", "pass the resume as a file with --dictate"))
	}

	text, err := readResume(resumePath, os.Stdin)
	if err != nil {
		logger.Fatal("reading resume", zap.String("path", resumePath), zap.Error(err))
	}
	logger.Debug("resume extracted", zap.Int("length", len([]rune(text))))

	job, err := selectJob(ctx, cmd, config, logger)
	if err != nil {
		logger.Fatal("selecting a job", zap.Error(err))
	}

	candidate := strings.TrimSpace(cmd.Flag("candidate").Value.String())
	if candidate == "" {
		candidate, err = (&promptui.Prompt{Label: "Candidate name (empty for anonymous)"}).Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	e := newEngine(ctx, config, logger)

	analysis, err := e.matcher.Analyze(job, text)
	if err != nil {
		logger.Fatal("analyzing resume", zap.String("job", job.Title), zap.Error(err))
	}

	logger.Info("resume screened",
		zap.String("job", job.Title),
		zap.Int("skill_match", analysis.Percent),
		zap.Strings("strengths", analysis.Strengths()),
		zap.Strings("weaknesses", analysis.Weaknesses()),
	)

	if !analysis.Proceed && cmd.Flag("auto-aprove").Value.String() == "false" {
		confirm := promptui.Select{
			Label: fmt.Sprintf("Skill match %d%% is below %d%%. Continue with the interview?", analysis.Percent, e.matcher.Gate()),
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := confirm.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if answer == PromptNo {
			logger.Info("exiting", zap.String("reason", "skill match below the gate"))
			return
		}
	}

	questions, err := e.generator.GenerateQuestions(ctx, job, text)
	if err != nil {
		logger.Fatal("generating questions", zap.Error(err))
	}

	session, err := interview.New(questions, interview.NewWriterSpeaker(os.Stdout), logger.Named("session"))
	if err != nil {
		logger.Fatal("starting the interview", zap.Error(err))
	}

	answer := promptAnswer
	if dictate {
		answer = dictateAnswer(interview.NewLineTranscriber(os.Stdin), logger)
	}

	for {
		if err := conduct(ctx, os.Stdout, session, answer, candidate, analysis, e); err != nil {
			logger.Fatal("interview failed", zap.Error(err))
		}
		result := session.Result()

		sessionLogger := withSession(logger, result, job)
		reportResult(sessionLogger, result)

		if err := afterInterview(ctx, config, e, session, job, result, sessionLogger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

const stdinPath = "-"

func readResume(path string, stdin io.Reader) (string, error) {
	if path == stdinPath {
		return resume.FromReader(stdin)
	}
	return resume.Extract(path)
}

// selectJob picks the job either from hh.ru by vacancy id or from the catalog.
func selectJob(ctx context.Context, cmd *cobra.Command, config *Config, logger *zap.Logger) (assessment.JobDescription, error) {
	id := strings.TrimSpace(cmd.Flag("vacancy").Value.String())
	search := cmd.Flag("search").Value.String() == "true"

	if id != "" || search {
		hh, err := newHeadHunter(ctx, config, logger)
		if err != nil {
			return assessment.JobDescription{}, err
		}

		if id == "" {
			if id, err = searchVacancy(hh, config, logger); err != nil {
				return assessment.JobDescription{}, err
			}
		}

		// Search results carry no key skills, so the full vacancy is always fetched.
		vacancy, err := hh.GetVacancy(id)
		if err != nil {
			return assessment.JobDescription{}, err
		}
		logger.Info("got vacancy from HH.ru", zap.String("vacancy", vacancy.Label()))
		return vacancy.JobDescription(), nil
	}

	jobs, err := loadCatalog(config)
	if err != nil {
		return assessment.JobDescription{}, err
	}
	if jobs.Len() == 0 {
		return assessment.JobDescription{}, errors.New("job catalog is empty; set catalog in config or pass --vacancy")
	}

	title := strings.TrimSpace(cmd.Flag("job").Value.String())
	if title == "" {
		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: jobs.Titles(),
		}
		if _, title, err = jobPrompt.Run(); err != nil {
			return assessment.JobDescription{}, err
		}
	}

	job, err := jobs.FindByTitle(title)
	if err != nil {
		return assessment.JobDescription{}, err
	}
	return job.JobDescription(), nil
}

func searchVacancy(hh *headhunter.Client, config *Config, logger *zap.Logger) (string, error) {
	if config.HeadHunter == nil || config.HeadHunter.Search == nil {
		return "", errors.New("headhunter.search is not configured")
	}

	logger.Info("starting the search", zap.String("search", config.HeadHunter.Search.Text))

	vacancies, err := hh.Search(config.HeadHunter.Search)
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}

	logger.Info("getting vacancies", zap.Int("count", vacancies.Len()))
	if vacancies.Len() == 0 {
		return "", errors.New("no vacancies found")
	}

	vacancyPrompt := promptui.Select{
		Label: "Choose a vacancy and press ENTER",
		Items: vacancies.Labels(),
		Size:  10,
	}
	_, selected, err := vacancyPrompt.Run()
	if err != nil {
		return "", err
	}

	vacancyID := strings.Split(selected, " ")[0]
	if vacancies.FindByID(vacancyID) == nil {
		return "", fmt.Errorf("there is no such vacancy id %s", vacancyID)
	}
	return vacancyID, nil
}

func newHeadHunter(ctx context.Context, config *Config, logger *zap.Logger) (*headhunter.Client, error) {
	hhConfig := config.HeadHunter
	if hhConfig == nil {
		hhConfig = &HeadHunterConfig{}
	}

	// Vacancies are public, a token only raises rate limits.
	token, err := secrets.Optional(secrets.Source{
		Name: "headhunter token",
		File: hhConfig.TokenFile,
	})
	if err != nil {
		return nil, err
	}

	hh := headhunter.New(ctx, logger.Named("headhunter"), token)
	if hhConfig.UserAgent != "" {
		hh.UserAgent = hhConfig.UserAgent
	}
	return hh, nil
}

// answerFunc fills the draft of the current question.
type answerFunc func(ctx context.Context, session *interview.Session) error

// conduct asks every question in turn and composes the result, available
// from session.Result afterwards.
func conduct(ctx context.Context, out io.Writer, session *interview.Session, answer answerFunc, candidate string, analysis *assessment.SkillAnalysis, e *engine) error {
	for {
		idx, _ := session.Current()
		fmt.Fprintf(out, "\nQuestion %d of %d:\n", idx+1, session.Len())
		if err := session.Ask(ctx); err != nil {
			return err
		}

		if err := answer(ctx, session); err != nil {
			return err
		}

		done, err := session.Advance()
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	_, err := session.Finish(candidate, analysis, e.scorer, e.composer)
	return err
}

func promptAnswer(_ context.Context, session *interview.Session) error {
	answer, err := askAnswer()
	if err != nil {
		return err
	}
	session.SetAnswer(answer)
	return nil
}

// dictateAnswer records transcribed speech into the draft. Nobody is asked to
// confirm a brief answer, it is logged instead.
func dictateAnswer(transcriber interview.Transcriber, logger *zap.Logger) answerFunc {
	return func(ctx context.Context, session *interview.Session) error {
		segments, err := transcriber.Transcribe(ctx)
		if err != nil {
			return err
		}
		if err := session.Listen(ctx, segments); err != nil {
			return err
		}

		check, err := interview.CheckAnswer(session.Draft())
		if err != nil {
			return err
		}
		if check.Brief {
			idx, _ := session.Current()
			logger.Warn("brief answer accepted", zap.Int("question", idx+1), zap.Int("words", check.Words))
		}
		return nil
	}
}

// askAnswer prompts until the answer is long enough or the candidate confirms
// a brief one.
func askAnswer() (string, error) {
	for {
		answerPrompt := promptui.Prompt{
			Label: "Answer",
			Validate: func(s string) error {
				_, err := interview.CheckAnswer(s)
				return err
			},
		}

		answer, err := answerPrompt.Run()
		if err != nil {
			return "", err
		}

		check, err := interview.CheckAnswer(answer)
		if err != nil {
			return "", err
		}
		if !check.Brief {
			return answer, nil
		}

		confirm := promptui.Select{
			Label: "Your answer seems brief. Submit it anyway?",
			Items: []string{PromptYes, PromptNo},
		}
		_, choice, err := confirm.Run()
		if err != nil {
			return "", err
		}
		if choice == PromptYes {
			return answer, nil
		}
	}
}

func withSession(base *zap.Logger, result *assessment.Result, job assessment.JobDescription) *zap.Logger {
	return logger.WithSessionFields(base, result.ID, result.CandidateName, job.Title)
}

func reportResult(logger *zap.Logger, result *assessment.Result) {
	for _, score := range result.AnswerScores {
		logger.Info("answer graded",
			zap.Int("question", score.QuestionIndex+1),
			zap.Int("score", score.Score),
			zap.Strings("feedback", score.Feedback),
		)
	}

	logger.Info("interview finished",
		zap.Int("resume_match", result.ResumeMatch),
		zap.Int("answer_quality", result.AnswerQuality),
		zap.Int("composite", result.Composite),
		zap.Stringer("status", result.Status),
		zap.Strings("strengths", result.Strengths),
		zap.Strings("weaknesses", result.Weaknesses),
	)
}

func afterInterview(ctx context.Context, config *Config, e *engine, session *interview.Session, job assessment.JobDescription, result *assessment.Result, logger *zap.Logger) error {
	for {
		_, action, err := resultPrompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptSaveScore:
			saveScore(ctx, config, e, result, logger)
		case PromptExportReport:
			path, err := export.ToFile(result, job, reportPath(config, result))
			if err != nil {
				logger.Error("exporting report", zap.Error(err))
				continue
			}
			logger.Info("report exported", zap.String("filename", path))
		case PromptRestart:
			session.Restart()
			logger.Info("restarting the interview")
			return nil
		case PromptExit:
			logger.Info("exiting", zap.String("reason", "got exit from prompt"))
			return errExit
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

// saveScore never fails the run: the result and the report stay available.
func saveScore(ctx context.Context, config *Config, e *engine, result *assessment.Result, logger *zap.Logger) {
	store, err := openStore(config, logger)
	if err != nil {
		logger.Error("opening score store", zap.Error(err))
		return
	}
	if store == nil {
		logger.Warn("score is not saved", zap.String("reason", "database is not configured"),
			zap.String("hint", "set database.dsn or DATABASE_DSN"))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := e.composer.Submit(ctx, store, result.CandidateName, result); err != nil {
		logger.Error("saving score", zap.Error(err))
		return
	}
	logger.Info("score saved", zap.Int("score", result.Composite))
}

func reportPath(config *Config, result *assessment.Result) string {
	dir := strings.TrimSpace(config.ReportDir)
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.xlsx", app, result.ID))
}
