package kv

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Pebble is a Store backed by a local pebble database. It is the default
// durable backend.
type Pebble struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) a pebble database at path.
func OpenPebble(path string) (*Pebble, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble db: %w", err)
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Get(key string) ([]byte, error) {
	v, closer, err := p.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (p *Pebble) Put(key string, value []byte) error {
	return p.db.Set([]byte(key), value, pebble.Sync)
}

func (p *Pebble) Has(key string) bool {
	_, closer, err := p.db.Get([]byte(key))
	if err != nil {
		return false
	}
	closer.Close()
	return true
}

func (p *Pebble) Remove(key string) error {
	return p.db.Delete([]byte(key), pebble.Sync)
}

func (p *Pebble) Close() error { return p.db.Close() }
