package databaseaccess

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"go.etcd.io/bbolt"
)

var (
	deadLetterBucket   = []byte("deadLetters")
	droppedEventBucket = []byte("droppedEvents")

	errStop = errors.New("stop iteration")

	openTimeout = time.Second * 5
)

type BBoltDatabase struct {
	db *bbolt.DB
}

var _ core.Database = (*BBoltDatabase)(nil)

func (bd *BBoltDatabase) Init(filePath string) error {
	// a file locked by another process fails after openTimeout instead of blocking startup
	db, err := bbolt.Open(filePath, 0660, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("could not open db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bn := range [][]byte{deadLetterBucket, droppedEventBucket} {
			_, err := tx.CreateBucketIfNotExists(bn)
			if err != nil {
				return fmt.Errorf("could not bucket: %s, err: %w", string(bn), err)
			}
		}

		return nil
	})
	if err != nil {
		return errors.Join(err, db.Close())
	}

	bd.db = db

	return nil
}

func (bd *BBoltDatabase) Close() error {
	return bd.db.Close()
}

func (bd *BBoltDatabase) AddDeadLetter(deadLetter *core.DeadLetter) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		if err := putSequential(tx.Bucket(deadLetterBucket), deadLetter); err != nil {
			return fmt.Errorf("dead letter write error: %w", err)
		}

		return nil
	})
}

func (bd *BBoltDatabase) GetDeadLetters() ([]*core.DeadLetter, error) {
	var result []*core.DeadLetter

	err := bd.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(deadLetterBucket).ForEach(func(_, v []byte) error {
			var deadLetter core.DeadLetter

			if err := json.Unmarshal(v, &deadLetter); err != nil {
				return fmt.Errorf("could not unmarshal dead letter: %w", err)
			}

			result = append(result, &deadLetter)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (bd *BBoltDatabase) RemoveDeadLetter(id string) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(deadLetterBucket)

		var key []byte

		err := bucket.ForEach(func(k, v []byte) error {
			var deadLetter core.DeadLetter

			if err := json.Unmarshal(v, &deadLetter); err != nil {
				return fmt.Errorf("could not unmarshal dead letter: %w", err)
			}

			if deadLetter.ID == id {
				key = append([]byte{}, k...)

				return errStop
			}

			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			return err
		}

		if key == nil {
			return fmt.Errorf("%w: %s", core.ErrDeadLetterNotFound, id)
		}

		return bucket.Delete(key)
	})
}

func (bd *BBoltDatabase) AddDroppedEvent(droppedEvent *core.DroppedEvent) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		if err := putSequential(tx.Bucket(droppedEventBucket), droppedEvent); err != nil {
			return fmt.Errorf("dropped event write error: %w", err)
		}

		return nil
	})
}

func (bd *BBoltDatabase) GetDroppedEvents() ([]*core.DroppedEvent, error) {
	var result []*core.DroppedEvent

	err := bd.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(droppedEventBucket).ForEach(func(_, v []byte) error {
			var droppedEvent core.DroppedEvent

			if err := json.Unmarshal(v, &droppedEvent); err != nil {
				return fmt.Errorf("could not unmarshal dropped event: %w", err)
			}

			result = append(result, &droppedEvent)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// putSequential stores value under the bucket's next sequence so iteration follows insertion order
func putSequential(bucket *bbolt.Bucket, value any) error {
	bytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal: %w", err)
	}

	seq, err := bucket.NextSequence()
	if err != nil {
		return err
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)

	return bucket.Put(key, bytes)
}
