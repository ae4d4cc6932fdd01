package jsonl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestAppendAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carrier_data_full.jsonl")

	record := map[string]string{"Code": "AA", "Name": "Example Air"}
	require.NoError(t, Append(path, []map[string]string{record}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"Code":"AA","Name":"Example Air"}`+"\n", string(raw))

	got, err := ReadAll[map[string]string](path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Empty(t, cmp.Diff(record, got[0]))
}

func TestAppendAccumulates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	records := []map[string]string{
		{"Code": "AA"},
		{"Code": "AB"},
	}
	require.NoError(t, Append(path, records[:1]))
	require.NoError(t, Append(path, records[1:]))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)

	got, err := ReadAll[map[string]string](path)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(records, got))
}

func TestAppendNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, Append[map[string]string](path, nil))

	// an empty batch must not create the file
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestDedupeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	input := `{"Code":"ZZ"}
{"Code":"AA"}
{"Code":"ZZ"}
{"Code":"AA"}
{"Code":"MM"}
`
	require.NoError(t, os.WriteFile(path, []byte(input), 0644))

	before, after, err := DedupeFile(path)
	require.NoError(t, err)
	require.Equal(t, 5, before)
	require.Equal(t, 3, after)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `{"Code":"AA"}
{"Code":"MM"}
{"Code":"ZZ"}
`
	require.Equal(t, want, string(raw))
}

func TestDedupeFileIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"b\":1}\n{\"a\":1}\n{\"b\":1}\n"), 0644))

	_, _, err := DedupeFile(path)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	before, after, err := DedupeFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestWriteAllReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old content\n"), 0644))

	require.NoError(t, WriteAll(path, []map[string]string{{"Code": "AA"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{\"Code\":\"AA\"}\n", string(raw))
}

func TestDedupeFileKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n{\"a\":1}\n"), 0644))

	_, _, err := DedupeFile(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWriteAllKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0640))

	require.NoError(t, WriteAll(path, []map[string]string{{"Code": "AA"}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0640), info.Mode().Perm())
}
