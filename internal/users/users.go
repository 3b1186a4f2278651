// Package users tracks known users across platforms. The whole list lives
// in a single JSON map under the known_users_list key.
package users

import (
	"encoding/json"
	"fmt"

	"github.com/petrel-ai/attendant/internal/kv"
)

const knownUsersKey = "known_users_list"

// KnownUser is one entry in the known users list.
type KnownUser struct {
	DisplayName string `json:"display_name"`
	DMRoomID    string `json:"dm_room_id"`
}

// Service reads and writes the known users list.
type Service struct {
	kv kv.Store
}

// NewService creates a user service on top of the given key-value backend.
func NewService(backend kv.Store) *Service {
	return &Service{kv: backend}
}

// KnownUsers returns the stored user map, empty if none exists yet.
func (s *Service) KnownUsers() (map[string]KnownUser, error) {
	if !s.kv.Has(knownUsersKey) {
		return map[string]KnownUser{}, nil
	}
	data, err := s.kv.Get(knownUsersKey)
	if err != nil {
		return nil, fmt.Errorf("load known users: %w", err)
	}
	users := map[string]KnownUser{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode known users: %w", err)
	}
	return users, nil
}

// IsKnown reports whether userID has been seen before.
func (s *Service) IsKnown(userID string) bool {
	users, err := s.KnownUsers()
	if err != nil {
		return false
	}
	_, ok := users[userID]
	return ok
}

// Add records a user, replacing any previous entry for the same ID.
func (s *Service) Add(userID, displayName, dmRoomID string) error {
	users, err := s.KnownUsers()
	if err != nil {
		return err
	}
	users[userID] = KnownUser{DisplayName: displayName, DMRoomID: dmRoomID}
	return s.save(users)
}

// DisplayName returns the stored display name for userID, or "".
func (s *Service) DisplayName(userID string) string {
	users, err := s.KnownUsers()
	if err != nil {
		return ""
	}
	return users[userID].DisplayName
}

func (s *Service) save(users map[string]KnownUser) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode known users: %w", err)
	}
	if err := s.kv.Put(knownUsersKey, data); err != nil {
		return fmt.Errorf("save known users: %w", err)
	}
	return nil
}
