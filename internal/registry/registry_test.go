package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinAndMembersOf(t *testing.T) {
	r := NewMemoryRegistry()

	r.Join("conn-1", "support")
	r.Join("conn-2", "support")

	require.ElementsMatch(t, []string{"conn-1", "conn-2"}, r.MembersOf("support"))
}

func TestJoinIsIdempotent(t *testing.T) {
	r := NewMemoryRegistry()

	r.Join("conn-1", "support")
	r.Join("conn-1", "support")

	require.Equal(t, []string{"conn-1"}, r.MembersOf("support"))
}

func TestMembersOfUnknownRoomIsEmpty(t *testing.T) {
	r := NewMemoryRegistry()

	require.Empty(t, r.MembersOf("nowhere"))
}

func TestLeaveRemovesFromEveryRoom(t *testing.T) {
	r := NewMemoryRegistry()

	r.Join("conn-1", "support")
	r.Join("conn-1", "general")
	r.Join("conn-2", "support")

	r.Leave("conn-1")

	require.Equal(t, []string{"conn-2"}, r.MembersOf("support"))
	require.Empty(t, r.MembersOf("general"))
}

func TestLeaveNeverJoinedIsNoop(t *testing.T) {
	r := NewMemoryRegistry()

	r.Join("conn-1", "support")
	r.Leave("conn-2")

	require.Equal(t, []string{"conn-1"}, r.MembersOf("support"))
}

func TestLeaveRoom(t *testing.T) {
	r := NewMemoryRegistry()

	r.Join("conn-1", "support")
	r.Join("conn-1", "general")

	r.LeaveRoom("conn-1", "support")

	require.Empty(t, r.MembersOf("support"))
	require.Equal(t, []string{"conn-1"}, r.MembersOf("general"))
}

func TestEmptyRoomsAreDropped(t *testing.T) {
	r := NewMemoryRegistry()

	r.Join("conn-1", "support")
	r.Leave("conn-1")

	require.Empty(t, r.rooms)
}
