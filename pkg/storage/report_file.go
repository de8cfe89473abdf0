package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReportFile persists a JSON document such as a trial report. Writes go to a
// temporary file in the same directory which then replaces the target.
type ReportFile struct {
	filepath string
}

func NewReportFile(filepath string) *ReportFile {
	return &ReportFile{
		filepath: filepath,
	}
}

func (s *ReportFile) Path() string {
	return s.filepath
}

func (s *ReportFile) Save(v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	dir := filepath.Dir(s.filepath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.filepath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(jsonData); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.filepath); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}

func (s *ReportFile) Load(v any) error {
	jsonData, err := os.ReadFile(s.filepath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := json.Unmarshal(jsonData, v); err != nil {
		return fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return nil
}

func (s *ReportFile) Exists() bool {
	_, err := os.Stat(s.filepath)
	return err == nil
}

func (s *ReportFile) Delete() error {
	if !s.Exists() {
		return nil
	}
	return os.Remove(s.filepath)
}
