package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrel-ai/attendant/internal/kv"
)

func TestService_EmptyList(t *testing.T) {
	s := NewService(kv.NewMemory())

	users, err := s.KnownUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.False(t, s.IsKnown("u1"))
	assert.Equal(t, "", s.DisplayName("u1"))
}

func TestService_AddAndLookup(t *testing.T) {
	s := NewService(kv.NewMemory())

	require.NoError(t, s.Add("u1", "Ada", "room:dm:u1"))
	require.NoError(t, s.Add("u2", "Grace", "room:dm:u2"))

	assert.True(t, s.IsKnown("u1"))
	assert.Equal(t, "Ada", s.DisplayName("u1"))
	assert.Equal(t, "Grace", s.DisplayName("u2"))

	users, err := s.KnownUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "room:dm:u1", users["u1"].DMRoomID)
}

func TestService_AddReplacesEntry(t *testing.T) {
	s := NewService(kv.NewMemory())

	require.NoError(t, s.Add("u1", "Ada", "room:old"))
	require.NoError(t, s.Add("u1", "Ada L.", "room:new"))

	users, err := s.KnownUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "Ada L.", users["u1"].DisplayName)
	assert.Equal(t, "room:new", users["u1"].DMRoomID)
}
