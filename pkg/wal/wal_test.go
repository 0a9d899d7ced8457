package wal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Seq  int    `json:"seq"`
	Note string `json:"note"`
}

func readEntries(t *testing.T, w *WAL) []entry {
	t.Helper()
	var got []entry
	err := w.ReadAll(func(raw json.RawMessage) error {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestWALWriteAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")

	w, err := NewWAL(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(entry{Seq: 1, Note: "a"}))
	require.NoError(t, w.Write(entry{Seq: 2, Note: "b"}))

	assert.Equal(t, []entry{{1, "a"}, {2, "b"}}, readEntries(t, w))

	// 讀取後繼續追加
	require.NoError(t, w.Write(entry{Seq: 3, Note: "c"}))
	require.NoError(t, w.Close())

	reopened, err := NewWAL(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []entry{{1, "a"}, {2, "b"}, {3, "c"}}, readEntries(t, reopened))
}

func TestWALIgnoresTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	require.NoError(t, os.WriteFile(path, []byte("{\"seq\":1,\"note\":\"a\"}\n{\"seq\":2,\"no"), FileModeReadOnly))

	w, err := NewWAL(path)
	require.NoError(t, err)
	assert.Equal(t, []entry{{1, "a"}}, readEntries(t, w))

	// 殘缺的尾端被截斷後，新的紀錄仍可被完整讀回
	require.NoError(t, w.Write(entry{Seq: 3, Note: "c"}))
	require.NoError(t, w.Close())

	reopened, err := NewWAL(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []entry{{1, "a"}, {3, "c"}}, readEntries(t, reopened))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"seq\":1,\"note\":\"a\"}\n{\"seq\":3,\"note\":\"c\"}\n", string(data))
}

func TestWALTornOnlyRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	require.NoError(t, os.WriteFile(path, []byte("{\"seq\":1,\"no"), FileModeReadOnly))

	w, err := NewWAL(path)
	require.NoError(t, err)
	assert.Empty(t, readEntries(t, w))
	require.NoError(t, w.Write(entry{Seq: 2, Note: "b"}))
	require.NoError(t, w.Close())

	reopened, err := NewWAL(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []entry{{2, "b"}}, readEntries(t, reopened))
}

func TestWALRejectsCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	require.NoError(t, os.WriteFile(path, []byte("{\"seq\":1}\n}garbage{\n"), FileModeReadOnly))

	w, err := NewWAL(path)
	require.NoError(t, err)
	defer w.Close()
	err = w.ReadAll(func(json.RawMessage) error { return nil })
	assert.Error(t, err)
}
