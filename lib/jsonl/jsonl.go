// Package jsonl reads and writes line-delimited JSON files.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// Append serializes each record as a single JSON line and appends it
// to the file at path, creating the file if it does not exist. The
// file is opened and closed per call so an interrupted run keeps every
// line written before the interruption.
func Append[T any](path string, records []T) error {
	if len(records) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			f.Close()
			return fmt.Errorf("marshal record: %w", err)
		}
		line = append(line, '\n')
		if _, err := f.Write(line); err != nil {
			f.Close()
			return fmt.Errorf("append to %s: %w", path, err)
		}
	}
	return f.Close()
}

// ReadAll decodes every line of the file at path into T.
func ReadAll[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record T
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("parse line %d of %s: %w", len(out)+1, path, err)
		}
		out = append(out, record)
	}
	return out, scanner.Err()
}

// WriteAll replaces the file at path with one JSON line per record.
// The replacement goes through a temp file and a rename so a crash
// mid-write cannot truncate the original.
func WriteAll[T any](path string, records []T) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}

	tmp, err := os.CreateTemp(dirOf(path), ".jsonl-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("marshal record: %w", err)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
