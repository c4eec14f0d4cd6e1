package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

func TestTokenFromAuth(t *testing.T) {
	tests := []struct {
		name string
		auth map[string]any
		want string
	}{
		{"plain", map[string]any{"token": "abc"}, "abc"},
		{"bearer prefix", map[string]any{"token": "Bearer abc"}, "abc"},
		{"missing", map[string]any{}, ""},
		{"wrong type", map[string]any{"token": 42}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tokenFromAuth(tc.auth))
		})
	}
}

func TestConnectedPayload(t *testing.T) {
	account := user.User{FullName: "Ada", Role: types.RoleProvider}
	account.ID = uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	payload := connectedPayload(account, 3, now)
	assert.Equal(t, account.ID.String(), payload["userId"])
	assert.Equal(t, int64(3), payload["unreadCount"])
	assert.Equal(t, types.RoleProvider, payload["role"])
	assert.Equal(t, "2026-03-01T12:00:00Z", payload["timestamp"])
}

func TestUserRoomNaming(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "user_"+id.String(), string(userRoom(id.String())))
}
