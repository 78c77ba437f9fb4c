package dbx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

// BadgerError maps badger errors onto the common sentinels.
func BadgerError(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return common.ErrNotFound
	}
	return fmt.Errorf("badger error: %w: %w", common.ErrStoreUnavailable, err)
}

// BadgerGet loads and decodes the JSON value stored under key.
func BadgerGet[T any](db *badger.DB, key []byte) (*T, error) {
	var out T
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		return nil, BadgerError(err)
	}
	return &out, nil
}

// BadgerPut encodes v as JSON under key. When mustExist is set the key has
// to be present already.
func BadgerPut(db *badger.DB, key []byte, v any, mustExist bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	err = db.Update(func(txn *badger.Txn) error {
		if mustExist {
			if _, err := txn.Get(key); err != nil {
				return err
			}
		}
		return txn.Set(key, b)
	})
	if err != nil {
		return BadgerError(err)
	}
	return nil
}

// BadgerModify decodes the value under key, applies fn and writes it back
// in one transaction. A missing key fails with common.ErrNotFound.
func BadgerModify[T any](db *badger.DB, key []byte, fn func(*T)) error {
	err := db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var v T
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return err
		}
		fn(&v)
		b, err := json.Marshal(&v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		return txn.Set(key, b)
	})
	if err != nil {
		return BadgerError(err)
	}
	return nil
}

// BadgerDelete removes key, failing with common.ErrNotFound when absent.
func BadgerDelete(db *badger.DB, key []byte) error {
	err := db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return BadgerError(err)
	}
	return nil
}

// BadgerScan decodes every value under prefix and keeps those accepted by
// keep. The context is checked between items.
func BadgerScan[T any](ctx context.Context, db *badger.DB, prefix []byte, keep func(*T) bool) ([]*T, error) {
	var result []*T
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var v T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return err
			}
			if keep == nil || keep(&v) {
				result = append(result, &v)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, BadgerError(err)
	}
	return result, nil
}

// OpenInMemoryBadger opens a badger instance without a directory. Used by
// the memory-backed tests of badger repositories.
func OpenInMemoryBadger() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}
