// Package save persists the question bank and the rankings. Two stores
// share one record format: FileStore writes JSON flat files and
// SQLiteStore keeps the same records in a SQLite database.
package save

import (
	"encoding/json"
	"time"

	"github.com/nathoo/quizshot/errors"
	"github.com/nathoo/quizshot/types"
)

// DateLayout is the timestamp format used in persisted files.
const DateLayout = "2006-01-02 15:04:05"

// BankData is everything persisted for the question bank.
type BankData struct {
	Questions []types.Question
	Files     []types.SourceFile
}

// Store loads and saves bank and ranking data. Load methods return a
// NotFound error when nothing has been saved yet and a MalformedContent
// error when the stored data cannot be decoded.
type Store interface {
	LoadBank() (BankData, error)
	SaveBank(BankData) error
	LoadRankings() ([]types.RankingEntry, error)
	SaveRankings([]types.RankingEntry) error
	Close() error
}

// bankFile is the on-disk layout of the question bank.
type bankFile struct {
	Questions []questionRecord `json:"questions"`
	Files     []fileRecord     `json:"files"`
}

type questionRecord struct {
	ID             string         `json:"id,omitempty"`
	Question       string         `json:"question"`
	Context        string         `json:"context"`
	Type           string         `json:"type"`
	Answers        []answerRecord `json:"answers"`
	Correct        *int           `json:"correct"`
	CorrectAnswers []int          `json:"correct_answers"`
	CorrectAnswer  string         `json:"correct_answer,omitempty"`
	Level          string         `json:"level"`
}

// answerRecord is a plain string for multiple choice and a
// {"text", "is_statement"} object for true/false statements.
type answerRecord struct {
	Text      string
	Statement bool
}

type statementJSON struct {
	Text        string `json:"text"`
	IsStatement bool   `json:"is_statement"`
}

func (a answerRecord) MarshalJSON() ([]byte, error) {
	if a.Statement {
		return json.Marshal(statementJSON{Text: a.Text, IsStatement: true})
	}
	return json.Marshal(a.Text)
}

func (a *answerRecord) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = answerRecord{Text: s}
		return nil
	}
	var st statementJSON
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	*a = answerRecord{Text: st.Text, Statement: st.IsStatement}
	return nil
}

type fileRecord struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	QuestionCount int    `json:"question_count"`
	UploadDate    string `json:"upload_date"`
}

type rankingRecord struct {
	Name           string `json:"name"`
	Score          int    `json:"score"`
	Won            bool   `json:"won"`
	MonstersKilled int    `json:"monsters_killed"`
	Date           string `json:"date"`
}

// EncodeBank serializes bank data to indented JSON.
func EncodeBank(d BankData) ([]byte, error) {
	f := bankFile{
		Questions: make([]questionRecord, 0, len(d.Questions)),
		Files:     make([]fileRecord, 0, len(d.Files)),
	}
	for _, q := range d.Questions {
		f.Questions = append(f.Questions, toRecord(q))
	}
	for _, s := range d.Files {
		f.Files = append(f.Files, fileRecord{
			Name:          s.Name,
			Path:          s.Path,
			QuestionCount: s.QuestionCount,
			UploadDate:    formatDate(s.UploadedAt),
		})
	}
	return json.MarshalIndent(f, "", "  ")
}

// DecodeBank parses bank JSON.
func DecodeBank(data []byte) (BankData, error) {
	var f bankFile
	if err := json.Unmarshal(data, &f); err != nil {
		return BankData{}, errors.WrapWithCode(err, errors.CodeMalformedContent, "decoding question bank")
	}
	d := BankData{
		Questions: make([]types.Question, 0, len(f.Questions)),
		Files:     make([]types.SourceFile, 0, len(f.Files)),
	}
	for _, r := range f.Questions {
		d.Questions = append(d.Questions, fromRecord(r))
	}
	for _, r := range f.Files {
		d.Files = append(d.Files, types.SourceFile{
			Name:          r.Name,
			Path:          r.Path,
			QuestionCount: r.QuestionCount,
			UploadedAt:    parseDate(r.UploadDate),
		})
	}
	return d, nil
}

// EncodeRankings serializes ranking entries to indented JSON.
func EncodeRankings(entries []types.RankingEntry) ([]byte, error) {
	recs := make([]rankingRecord, 0, len(entries))
	for _, e := range entries {
		recs = append(recs, rankingRecord{
			Name:           e.Name,
			Score:          e.Score,
			Won:            e.Won,
			MonstersKilled: e.Kills,
			Date:           formatDate(e.At),
		})
	}
	return json.MarshalIndent(recs, "", "  ")
}

// DecodeRankings parses rankings JSON.
func DecodeRankings(data []byte) ([]types.RankingEntry, error) {
	var recs []rankingRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeMalformedContent, "decoding rankings")
	}
	entries := make([]types.RankingEntry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, types.RankingEntry{
			Name:  r.Name,
			Score: r.Score,
			Won:   r.Won,
			Kills: r.MonstersKilled,
			At:    parseDate(r.Date),
		})
	}
	return entries, nil
}

func toRecord(q types.Question) questionRecord {
	r := questionRecord{
		ID:             q.ID,
		Question:       q.Text,
		Context:        q.Context,
		Type:           string(q.Kind()),
		Answers:        []answerRecord{},
		CorrectAnswers: []int{},
		Level:          string(q.Level),
	}
	switch body := q.Body.(type) {
	case types.MultipleChoice:
		for _, o := range body.Options {
			r.Answers = append(r.Answers, answerRecord{Text: o})
		}
		if body.Correct != types.NoAnswer {
			c := body.Correct
			r.Correct = &c
			r.CorrectAnswers = []int{c}
		}
	case types.TrueFalse:
		for _, s := range body.Statements {
			r.Answers = append(r.Answers, answerRecord{Text: s, Statement: true})
		}
		r.CorrectAnswers = append(r.CorrectAnswers, body.Correct...)
		if body.Primary != types.NoAnswer {
			p := body.Primary
			r.Correct = &p
		}
	case types.ShortAnswer:
		r.CorrectAnswer = body.Expected
	}
	return r
}

func fromRecord(r questionRecord) types.Question {
	q := types.Question{
		ID:      r.ID,
		Text:    r.Question,
		Context: r.Context,
		Level:   types.Level(r.Level),
	}
	if q.Level == types.LevelAny {
		q.Level = types.LevelComprehension
	}

	texts := make([]string, len(r.Answers))
	for i, a := range r.Answers {
		texts[i] = a.Text
	}
	primary := types.NoAnswer
	if r.Correct != nil && *r.Correct >= 0 && *r.Correct < len(texts) {
		primary = *r.Correct
	}

	switch types.Kind(r.Type) {
	case types.KindTrueFalse:
		correct := append([]int(nil), r.CorrectAnswers...)
		if primary == types.NoAnswer && len(correct) > 0 {
			primary = correct[0]
		}
		q.Body = types.TrueFalse{Statements: texts, Correct: correct, Primary: primary}
	case types.KindShortAnswer:
		q.Body = types.ShortAnswer{Expected: r.CorrectAnswer}
	default:
		q.Body = types.MultipleChoice{Options: texts, Correct: primary}
	}
	return q
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// parseDate returns the zero time for dates it cannot read.
func parseDate(s string) time.Time {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
