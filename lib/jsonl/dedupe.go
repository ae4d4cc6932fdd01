package jsonl

import (
	"bufio"
	"os"
	"path/filepath"
	"slices"
)

func dirOf(path string) string {
	return filepath.Dir(path)
}

// DedupeFile sorts the lines of the file at path as opaque strings,
// drops exact duplicates and rewrites the file in place. Running it a
// second time is a no-op. Returns the line counts before and after.
func DedupeFile(path string) (before, after int, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return 0, 0, err
	}
	f.Close()

	before = len(lines)
	slices.Sort(lines)
	lines = slices.Compact(lines)
	after = len(lines)

	tmp, err := os.CreateTemp(dirOf(path), ".dedupe-*")
	if err != nil {
		return before, after, err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			tmp.Close()
			return before, after, err
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			return before, after, err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return before, after, err
	}
	if err := tmp.Close(); err != nil {
		return before, after, err
	}
	// CreateTemp makes the file 0600; the rewritten file must keep the
	// original's mode
	if err := os.Chmod(tmp.Name(), info.Mode()); err != nil {
		return before, after, err
	}
	return before, after, os.Rename(tmp.Name(), path)
}
