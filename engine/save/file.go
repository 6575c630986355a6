package save

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nathoo/quizshot/errors"
	"github.com/nathoo/quizshot/types"
)

// File names inside a FileStore directory.
const (
	BankFileName     = "questions_data.json"
	RankingsFileName = "rankings.json"
)

// FileStore keeps the bank and rankings as JSON files in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.FromFS(err, "creating data directory")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) LoadBank() (BankData, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, BankFileName))
	if err != nil {
		return BankData{}, errors.FromFS(err, "reading question bank")
	}
	return DecodeBank(data)
}

func (s *FileStore) SaveBank(d BankData) error {
	data, err := EncodeBank(d)
	if err != nil {
		return fmt.Errorf("encoding question bank: %w", err)
	}
	return s.writeAtomic(BankFileName, data)
}

func (s *FileStore) LoadRankings() ([]types.RankingEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, RankingsFileName))
	if err != nil {
		return nil, errors.FromFS(err, "reading rankings")
	}
	return DecodeRankings(data)
}

func (s *FileStore) SaveRankings(entries []types.RankingEntry) error {
	data, err := EncodeRankings(entries)
	if err != nil {
		return fmt.Errorf("encoding rankings: %w", err)
	}
	return s.writeAtomic(RankingsFileName, data)
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error { return nil }

// writeAtomic writes to a temp file in the same directory and renames it
// over name, so readers never see a partial file.
func (s *FileStore) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return errors.FromFS(err, "creating temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.FromFS(err, "writing "+name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.FromFS(err, "closing "+name)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return errors.FromFS(err, "replacing "+name)
	}
	return nil
}
