// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/cardassist/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStoreWithDir(t.TempDir())
	require.NoError(t, err)
	return store
}

func sampleMessages() []model.Message {
	return []model.Message{
		model.NewUserMessage("what does corazón mean?"),
		model.NewAssistantMessage("It means heart."),
	}
}

func TestSaveGeneratesIDAndSummary(t *testing.T) {
	store := newTestStore(t)

	tr := &Transcript{Messages: sampleMessages()}
	id, err := store.Save(tr)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "what does corazón mean?", tr.Summary)
	assert.False(t, tr.CreatedAt.IsZero())
	assert.False(t, tr.UpdatedAt.IsZero())
}

func TestSaveWritesRestrictedPermissions(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save(&Transcript{Messages: sampleMessages()})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(store.BaseDir, id+".json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save(&Transcript{
		Model:    "llama3.2",
		Provider: "ollama",
		Messages: sampleMessages(),
	})
	require.NoError(t, err)

	loaded, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, id, loaded.ID)
	assert.Equal(t, "llama3.2", loaded.Model)
	assert.Equal(t, sampleMessages(), loaded.Messages)
}

func TestLoadMissingTranscript(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load("nope")
	assert.ErrorIs(t, err, ErrTranscriptNotFound)
}

func TestRecordCreatesThenUpdates(t *testing.T) {
	store := newTestStore(t)
	sessionID := "session-abc"

	require.NoError(t, store.Record(sessionID, sampleMessages()))

	first, err := store.Load(sessionID)
	require.NoError(t, err)
	created := first.CreatedAt

	time.Sleep(10 * time.Millisecond)

	extended := append(sampleMessages(), model.NewUserMessage("another question"))
	require.NoError(t, store.Record(sessionID, extended))

	second, err := store.Load(sessionID)
	require.NoError(t, err)
	assert.Len(t, second.Messages, 3)
	assert.Equal(t, created, second.CreatedAt, "creation time should survive updates")
	assert.True(t, second.UpdatedAt.After(created))
}

func TestListMostRecentFirst(t *testing.T) {
	store := newTestStore(t)

	idA, err := store.Save(&Transcript{Messages: []model.Message{model.NewUserMessage("first")}})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	idB, err := store.Save(&Transcript{Messages: []model.Message{model.NewUserMessage("second")}})
	require.NoError(t, err)

	metas, err := store.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, idB, metas[0].ID)
	assert.Equal(t, idA, metas[1].ID)
	assert.Equal(t, 1, metas[0].MessageCount)
	assert.Equal(t, "second", metas[0].Preview)
}

func TestListSkipsCorruptFiles(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(&Transcript{Messages: sampleMessages()})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.BaseDir, "broken.json"), []byte("{nope"), 0600))

	metas, err := store.List()
	require.NoError(t, err)
	assert.Len(t, metas, 1)
}

func TestSearch(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(&Transcript{Messages: []model.Message{model.NewUserMessage("conjugate the verb ser")}})
	require.NoError(t, err)
	_, err = store.Save(&Transcript{Messages: []model.Message{model.NewUserMessage("kanji stroke order")}})
	require.NoError(t, err)

	results, err := store.Search("KANJI")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Preview, "kanji")

	results, err = store.Search("no such thing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchMessages(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(&Transcript{Messages: []model.Message{
		model.NewUserMessage("short question"),
		model.NewAssistantMessage("the mitochondria is the powerhouse of the cell"),
	}})
	require.NoError(t, err)

	results, err := store.SearchMessages("mitochondria")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// Empty query returns everything.
	results, err = store.SearchMessages("")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDeleteAndClear(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save(&Transcript{Messages: sampleMessages()})
	require.NoError(t, err)

	require.NoError(t, store.Delete(id))
	assert.ErrorIs(t, store.Delete(id), ErrTranscriptNotFound)

	_, err = store.Save(&Transcript{Messages: sampleMessages()})
	require.NoError(t, err)
	_, err = store.Save(&Transcript{Messages: sampleMessages()})
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	metas, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestEnforceLimitPrunesOldest(t *testing.T) {
	store := newTestStore(t)
	store.MaxTranscripts = 2

	var ids []string
	for _, text := range []string{"one", "two", "three"} {
		id, err := store.Save(&Transcript{Messages: []model.Message{model.NewUserMessage(text)}})
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(10 * time.Millisecond)
	}

	metas, err := store.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)

	_, err = store.Load(ids[0])
	assert.ErrorIs(t, err, ErrTranscriptNotFound)
	_, err = store.Load(ids[2])
	assert.NoError(t, err)
}

func TestExportMarkdown(t *testing.T) {
	tr := &Transcript{
		ID:        "abc",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Messages:  sampleMessages(),
	}

	md := tr.ExportMarkdown()
	assert.True(t, strings.HasPrefix(md, "# Session abc"))
	assert.Contains(t, md, "**You**")
	assert.Contains(t, md, "**Assistant**")
	assert.Contains(t, md, "It means heart.")
}
