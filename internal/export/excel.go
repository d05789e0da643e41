// Package export flattens interview sessions into a spreadsheet: one row per
// session, with the transcript split into independently numbered Question{n}
// (AI-side entries) and Answer{n} (user entries) columns.
package export

import (
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/xuri/excelize/v2"

	"candor.io/interview-agent/internal/store"
)

const sheetName = "Interview Summary"

var illegalSheetChars = regexp.MustCompile(`[\\/?*\[\]:]`)

// CleanSheetName strips characters Excel rejects and caps the length at 31.
func CleanSheetName(name string) string {
	if name == "" {
		return "Sheet1"
	}
	clean := illegalSheetChars.ReplaceAllString(name, "_")
	if len(clean) > 30 {
		clean = clean[:30]
	}
	return clean
}

// row is one flattened session: fixed fields plus the per-role sequences.
type row struct {
	SessionID     string
	ParticipantID string
	StartTime     string
	EndTime       string
	Note          string
	Questions     []string // non-user entries, transcript order
	Answers       []string // user entries, transcript order
}

// formatSession flattens one session. Questions and answers are numbered by
// role and appearance order only; they are never zipped into pairs.
func formatSession(sess store.Session) (row, error) {
	if sess.ID == "" {
		return row{}, fmt.Errorf("session has no id")
	}

	r := row{
		SessionID: sess.ID,
		StartTime: sess.StartTime.Format(time.RFC3339),
	}
	if sess.ParticipantID != nil {
		r.ParticipantID = *sess.ParticipantID
	}
	if sess.EndTime != nil {
		r.EndTime = sess.EndTime.Format(time.RFC3339)
	}
	if sess.Note != nil {
		r.Note = *sess.Note
	}

	for _, entry := range sess.Transcript {
		switch entry.Role {
		case store.RoleUser:
			r.Answers = append(r.Answers, entry.Content)
		case store.RoleAI, "assistant", "system":
			r.Questions = append(r.Questions, entry.Content)
		}
	}
	return r, nil
}

// BuildWorkbook produces the export spreadsheet. Sessions that fail to
// format are skipped with a logged warning; the export never aborts for a
// single bad row.
func BuildWorkbook(sessions []store.Session) (*excelize.File, error) {
	rows := []row{}
	maxQuestions, maxAnswers := 0, 0
	for _, sess := range sessions {
		r, err := formatSession(sess)
		if err != nil {
			log.Printf("Warning: skipping session %q in export: %v", sess.ID, err)
			continue
		}
		rows = append(rows, r)
		if len(r.Questions) > maxQuestions {
			maxQuestions = len(r.Questions)
		}
		if len(r.Answers) > maxAnswers {
			maxAnswers = len(r.Answers)
		}
	}

	f := excelize.NewFile()
	sheet := CleanSheetName(sheetName)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name export sheet: %w", err)
	}

	if len(rows) == 0 {
		if err := f.SetSheetRow(sheet, "A1", &[]string{"Status", "Reason"}); err != nil {
			return nil, fmt.Errorf("failed to write export report: %w", err)
		}
		if err := f.SetSheetRow(sheet, "A2", &[]string{"No data exported", "no sessions selected or all rows failed to format"}); err != nil {
			return nil, fmt.Errorf("failed to write export report: %w", err)
		}
		return f, nil
	}

	header := []string{"Session ID", "Participant ID", "Start Time", "End Time", "Note"}
	for i := 1; i <= maxQuestions; i++ {
		header = append(header, fmt.Sprintf("Question%d", i))
	}
	for i := 1; i <= maxAnswers; i++ {
		header = append(header, fmt.Sprintf("Answer%d", i))
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	for i, r := range rows {
		cells := []string{r.SessionID, r.ParticipantID, r.StartTime, r.EndTime, r.Note}
		for q := 0; q < maxQuestions; q++ {
			if q < len(r.Questions) {
				cells = append(cells, r.Questions[q])
			} else {
				cells = append(cells, "")
			}
		}
		for a := 0; a < maxAnswers; a++ {
			if a < len(r.Answers) {
				cells = append(cells, r.Answers[a])
			} else {
				cells = append(cells, "")
			}
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell reference: %w", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &cells); err != nil {
			return nil, fmt.Errorf("failed to write export row: %w", err)
		}
	}
	return f, nil
}
