package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"candor.io/interview-agent/internal/store"
)

func sessionWith(id string, entries ...store.TranscriptEntry) store.Session {
	return store.Session{
		ID:         id,
		ProjectID:  "project-1",
		StartTime:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Transcript: entries,
	}
}

func sheetRows(t *testing.T, f *excelize.File) [][]string {
	t.Helper()
	rows, err := f.GetRows("Interview Summary")
	require.NoError(t, err)
	return rows
}

func TestCleanSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", CleanSheetName(""))
	assert.Equal(t, "Q3_interviews", CleanSheetName("Q3/interviews"))
	assert.Equal(t, "a_b_c_d_e_f_g", CleanSheetName(`a\b/c?d*e[f]g`))
	long := CleanSheetName("this sheet name is far longer than excel allows")
	assert.LessOrEqual(t, len(long), 30)
}

func TestQuestionsAndAnswersNumberedIndependently(t *testing.T) {
	sess := sessionWith("s1",
		store.TranscriptEntry{Role: store.RoleAI, Content: "Q one"},
		store.TranscriptEntry{Role: store.RoleUser, Content: "A one"},
		store.TranscriptEntry{Role: store.RoleAI, Content: "Q two"},
		store.TranscriptEntry{Role: store.RoleAI, Content: "Q three"},
		store.TranscriptEntry{Role: store.RoleUser, Content: "A two"},
	)

	f, err := BuildWorkbook([]store.Session{sess})
	require.NoError(t, err)
	defer f.Close()

	rows := sheetRows(t, f)
	require.Len(t, rows, 2)
	header := rows[0]
	assert.Equal(t, []string{"Session ID", "Participant ID", "Start Time", "End Time", "Note",
		"Question1", "Question2", "Question3", "Answer1", "Answer2"}, header)

	data := rows[1]
	assert.Equal(t, "s1", data[0])
	assert.Equal(t, "Q one", data[5])
	assert.Equal(t, "Q three", data[7])
	assert.Equal(t, "A one", data[8])
	assert.Equal(t, "A two", data[9])
}

func TestLegacyAssistantRolesCountAsQuestions(t *testing.T) {
	sess := sessionWith("s1",
		store.TranscriptEntry{Role: "assistant", Content: "legacy question"},
		store.TranscriptEntry{Role: "system", Content: "system aside"},
		store.TranscriptEntry{Role: store.RoleUser, Content: "answer"},
	)

	r, err := formatSession(sess)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy question", "system aside"}, r.Questions)
	assert.Equal(t, []string{"answer"}, r.Answers)
}

func TestBadRowsAreSkippedNotFatal(t *testing.T) {
	good := sessionWith("s1", store.TranscriptEntry{Role: store.RoleUser, Content: "kept"})
	bad := sessionWith("") // no id, cannot be formatted

	f, err := BuildWorkbook([]store.Session{good, bad})
	require.NoError(t, err)
	defer f.Close()

	rows := sheetRows(t, f)
	require.Len(t, rows, 2) // header plus the surviving session
	assert.Equal(t, "s1", rows[1][0])
}

func TestEmptyExportWritesReport(t *testing.T) {
	f, err := BuildWorkbook(nil)
	require.NoError(t, err)
	defer f.Close()

	rows := sheetRows(t, f)
	require.Len(t, rows, 2)
	assert.Equal(t, "Status", rows[0][0])
	assert.Equal(t, "No data exported", rows[1][0])
}
