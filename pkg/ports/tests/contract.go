// Package tests holds contract suites that adapters run against themselves.
package tests

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/aretw0/machi/pkg/domain"
	"github.com/aretw0/machi/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StateStoreContractTest verifies that a StateStore implementation adheres
// to the interface contract.
func StateStoreContractTest(t *testing.T, store ports.StateStore) {
	t.Helper()
	ctx := context.Background()
	sessionID := "contract-" + strconv.FormatInt(time.Now().UnixNano(), 36)

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, map[string]any{"name": "Sarah"})
		state.Context["age"] = 22
		state.CurrentEntryID = "Postcode?"
		state.History = []string{"Age?", "Name?"}

		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, "Postcode?", loaded.CurrentEntryID)
		assert.Equal(t, []string{"Age?", "Name?"}, loaded.History)
		assert.Equal(t, "Sarah", loaded.Context["name"])
		// JSON backed stores turn numbers into float64
		assert.EqualValues(t, 22, loaded.Context["age"])
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Context["name"] = "changed"
		loaded.History = append(loaded.History, "Extra")

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Sarah", again.Context["name"])
		assert.Len(t, again.History, 2)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		state := domain.NewState(sessionID, nil)
		state.Terminated = true
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.True(t, loaded.Terminated)
		assert.Empty(t, loaded.Context)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewState(sessionID, nil)))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1, nil)))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2, nil)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
		assert.NotContains(t, sessions, sessionID)
	})
}
