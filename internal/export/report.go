package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/hh-interviewer/internal/assessment"
)

const (
	SummarySheet = "Summary"
	AnswersSheet = "Answers"
)

var answerHeaders = []string{"#", "Question", "Answer", "Score", "Words", "Detail", "Relevance", "Specificity", "Skills", "Feedback"}

// ToFile writes the assessment report as an xlsx workbook. The extension is
// appended when missing and the final path is returned.
func ToFile(result *assessment.Result, job assessment.JobDescription, path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := build(result, job)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

// Write streams the workbook, for example into an HTTP response.
func Write(w io.Writer, result *assessment.Result, job assessment.JobDescription) error {
	f, err := build(result, job)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

func build(result *assessment.Result, job assessment.JobDescription) (*excelize.File, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: nil result", assessment.ErrInvalidInput)
	}

	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(AnswersSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := summarySheet(f, result, job); err != nil {
		f.Close()
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := answersSheet(f, result); err != nil {
		f.Close()
		return nil, fmt.Errorf("create answers sheet: %w", err)
	}

	return f, nil
}

func summarySheet(f *excelize.File, result *assessment.Result, job assessment.JobDescription) error {
	if err := f.SetColWidth(SummarySheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 60); err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][2]interface{}{
		{"Candidate", result.CandidateName},
		{"Result ID", result.ID},
		{"Job", job.Title},
		{"Required skills", job.SkillsString()},
		{"Resume match", result.ResumeMatch},
		{"Answer quality", result.AnswerQuality},
		{"Composite", result.Composite},
		{"Status", result.Status.String()},
		{"Strengths", strings.Join(result.Strengths, ", ")},
		{"Weaknesses", strings.Join(result.Weaknesses, ", ")},
		{"Assessed at", result.Timestamp.Format(time.RFC3339)},
	}

	for i, row := range rows {
		label, _ := excelize.CoordinatesToCellName(1, i+1)
		value, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(SummarySheet, label, row[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, label, label, labelStyle); err != nil {
			return err
		}
		if err := f.SetCellValue(SummarySheet, value, row[1]); err != nil {
			return err
		}
	}

	return nil
}

func answersSheet(f *excelize.File, result *assessment.Result) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	for col, header := range answerHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(AnswersSheet, cell, header); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(answerHeaders), 1)
	if err := f.SetCellStyle(AnswersSheet, "A1", last, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(AnswersSheet, "B", "C", 50); err != nil {
		return err
	}

	for i, score := range result.AnswerScores {
		question := ""
		if score.QuestionIndex >= 0 && score.QuestionIndex < len(result.Questions) {
			question = result.Questions[score.QuestionIndex]
		}
		answer := ""
		if i < len(result.Answers) {
			answer = result.Answers[i].Text
		}

		values := []interface{}{
			score.QuestionIndex + 1,
			question,
			answer,
			score.Score,
			score.WordCount,
			score.Detail,
			score.Relevance,
			score.Specificity,
			strings.Join(score.SkillsMatched, ", "),
			strings.Join(score.Feedback, "; "),
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(AnswersSheet, cell, &values); err != nil {
			return err
		}
	}

	return nil
}
