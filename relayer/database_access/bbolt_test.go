package databaseaccess

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func TestBoltDatabase(t *testing.T) {
	testDir, err := os.MkdirTemp("", "boltdb-test")
	require.NoError(t, err)

	defer func() {
		os.RemoveAll(testDir)
		os.Remove(testDir)
	}()

	filePath := path.Join(testDir, "temp_test.db")

	dbCleanup := func() {
		if _, err := os.Stat(filePath); err == nil {
			os.Remove(filePath)
		}
	}

	event := core.ChainEvent{
		Direction:   core.DirectionSource,
		EventName:   "Deposit",
		TxHash:      "0x01",
		BlockNumber: 10,
		Args:        []core.EventArg{{Name: "amount", Value: "100"}},
	}

	t.Run("Init", func(t *testing.T) {
		t.Cleanup(dbCleanup)

		db := &BBoltDatabase{}
		require.NoError(t, db.Init(filePath))
		require.NoError(t, db.Close())
	})

	t.Run("Init should fail", func(t *testing.T) {
		t.Cleanup(dbCleanup)

		db := &BBoltDatabase{}
		require.Error(t, db.Init(""))
	})

	t.Run("Init locked file times out", func(t *testing.T) {
		t.Cleanup(dbCleanup)

		prevTimeout := openTimeout
		openTimeout = time.Millisecond * 100

		t.Cleanup(func() { openTimeout = prevTimeout })

		db := &BBoltDatabase{}
		require.NoError(t, db.Init(filePath))

		defer db.Close()

		done := make(chan error, 1)

		go func() {
			done <- (&BBoltDatabase{}).Init(filePath)
		}()

		select {
		case err := <-done:
			require.ErrorIs(t, err, bbolt.ErrTimeout)
		case <-time.After(time.Second * 5):
			t.Fatal("init blocked on locked file")
		}
	})

	t.Run("NewDatabase creates directory", func(t *testing.T) {
		nestedPath := path.Join(testDir, "nested", "pair.db")

		db, err := NewDatabase(nestedPath)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		_, err = os.Stat(nestedPath)
		require.NoError(t, err)
	})

	t.Run("DeadLetters", func(t *testing.T) {
		t.Cleanup(dbCleanup)

		db := &BBoltDatabase{}
		require.NoError(t, db.Init(filePath))

		defer db.Close()

		res, err := db.GetDeadLetters()
		require.NoError(t, err)
		require.Empty(t, res)

		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, db.AddDeadLetter(&core.DeadLetter{
				ID:        id,
				Pair:      "pair",
				Direction: core.DirectionSource,
				Reason:    "executor failed",
				Events:    []core.PendingEvent{{ChainEvent: event, FlushAttempts: 5}},
				CreatedAt: time.Now().UTC(),
			}))
		}

		res, err = db.GetDeadLetters()
		require.NoError(t, err)
		require.Len(t, res, 3)
		require.Equal(t, "a", res[0].ID)
		require.Equal(t, "c", res[2].ID)
		require.Equal(t, event.TxHash, res[1].Events[0].TxHash)
		require.Equal(t, 5, res[1].Events[0].FlushAttempts)

		require.NoError(t, db.RemoveDeadLetter("b"))
		require.ErrorIs(t, db.RemoveDeadLetter("b"), core.ErrDeadLetterNotFound)

		res, err = db.GetDeadLetters()
		require.NoError(t, err)
		require.Len(t, res, 2)
		require.Equal(t, "a", res[0].ID)
		require.Equal(t, "c", res[1].ID)
	})

	t.Run("DroppedEvents", func(t *testing.T) {
		t.Cleanup(dbCleanup)

		db := &BBoltDatabase{}
		require.NoError(t, db.Init(filePath))

		defer db.Close()

		require.NoError(t, db.AddDroppedEvent(&core.DroppedEvent{
			ID:     "x",
			Pair:   "pair",
			Event:  event,
			Reason: core.ErrTransactionNotFound.Error(),
		}))

		res, err := db.GetDroppedEvents()
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.Equal(t, "x", res[0].ID)
		require.Equal(t, event.Args, res[0].Event.Args)
		require.Equal(t, core.ErrTransactionNotFound.Error(), res[0].Reason)
	})
}
