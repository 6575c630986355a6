package save

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/nathoo/quizshot/errors"
	"github.com/nathoo/quizshot/types"
)

//go:embed schema.sql
var schemaDDL string

// SQLiteStore keeps the bank and rankings in a SQLite database. Question
// rows hold the same JSON record the file store writes.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "applying sqlite schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadBank() (BankData, error) {
	var d BankData

	rows, err := s.db.Query(`SELECT id, record FROM questions ORDER BY position`)
	if err != nil {
		return BankData{}, errors.Wrap(err, "querying questions")
	}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return BankData{}, errors.Wrap(err, "scanning question")
		}
		var rec questionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			rows.Close()
			return BankData{}, errors.WrapWithCode(err, errors.CodeMalformedContent, "decoding question "+id)
		}
		rec.ID = id
		d.Questions = append(d.Questions, fromRecord(rec))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return BankData{}, errors.Wrap(err, "reading questions")
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT name, path, question_count, upload_date FROM source_files ORDER BY position`)
	if err != nil {
		return BankData{}, errors.Wrap(err, "querying source files")
	}
	defer rows.Close()
	for rows.Next() {
		var r fileRecord
		if err := rows.Scan(&r.Name, &r.Path, &r.QuestionCount, &r.UploadDate); err != nil {
			return BankData{}, errors.Wrap(err, "scanning source file")
		}
		d.Files = append(d.Files, types.SourceFile{
			Name:          r.Name,
			Path:          r.Path,
			QuestionCount: r.QuestionCount,
			UploadedAt:    parseDate(r.UploadDate),
		})
	}
	if err := rows.Err(); err != nil {
		return BankData{}, errors.Wrap(err, "reading source files")
	}

	if len(d.Questions) == 0 && len(d.Files) == 0 {
		return BankData{}, errors.NotFound("no saved question bank")
	}
	return d, nil
}

func (s *SQLiteStore) SaveBank(d BankData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM questions`); err != nil {
		return errors.Wrap(err, "clearing questions")
	}
	if _, err := tx.Exec(`DELETE FROM source_files`); err != nil {
		return errors.Wrap(err, "clearing source files")
	}
	for i, q := range d.Questions {
		rec := toRecord(q)
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding question %d: %w", i, err)
		}
		if _, err := tx.Exec(`INSERT INTO questions (position, id, record) VALUES (?, ?, ?)`, i, q.ID, string(raw)); err != nil {
			return errors.Wrap(err, "inserting question")
		}
	}
	for i, f := range d.Files {
		if _, err := tx.Exec(
			`INSERT INTO source_files (position, name, path, question_count, upload_date) VALUES (?, ?, ?, ?, ?)`,
			i, f.Name, f.Path, f.QuestionCount, formatDate(f.UploadedAt),
		); err != nil {
			return errors.Wrap(err, "inserting source file")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing question bank")
	}
	return nil
}

func (s *SQLiteStore) LoadRankings() ([]types.RankingEntry, error) {
	rows, err := s.db.Query(`SELECT name, score, won, monsters_killed, date FROM rankings ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "querying rankings")
	}
	defer rows.Close()

	var entries []types.RankingEntry
	for rows.Next() {
		var r rankingRecord
		if err := rows.Scan(&r.Name, &r.Score, &r.Won, &r.MonstersKilled, &r.Date); err != nil {
			return nil, errors.Wrap(err, "scanning ranking")
		}
		entries = append(entries, types.RankingEntry{
			Name:  r.Name,
			Score: r.Score,
			Won:   r.Won,
			Kills: r.MonstersKilled,
			At:    parseDate(r.Date),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading rankings")
	}
	if len(entries) == 0 {
		return nil, errors.NotFound("no saved rankings")
	}
	return entries, nil
}

func (s *SQLiteStore) SaveRankings(entries []types.RankingEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM rankings`); err != nil {
		return errors.Wrap(err, "clearing rankings")
	}
	for i, e := range entries {
		if _, err := tx.Exec(
			`INSERT INTO rankings (position, name, score, won, monsters_killed, date) VALUES (?, ?, ?, ?, ?, ?)`,
			i, e.Name, e.Score, e.Won, e.Kills, formatDate(e.At),
		); err != nil {
			return errors.Wrap(err, "inserting ranking")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing rankings")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
