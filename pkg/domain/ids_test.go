package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "authgate/pkg/domain-errors"
)

func TestParseUserID(t *testing.T) {
	issued := NewUserID()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"freshly issued id", issued.String(), false},
		{"uppercase", strings.ToUpper(issued.String()), false},
		{"empty subject", "", true},
		{"nil uuid", uuid.Nil.String(), true},
		{"not a uuid", "alice@example.com", true},
		{"jwt-looking garbage", "eyJhbGciOiJIUzI1NiJ9.e30.sig", true},
		{"embedded null byte", issued.String()[:8] + "\x00" + issued.String()[8:], true},
		{"oversized", strings.Repeat("f", 512), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUserID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				assert.True(t, got.IsNil())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, issued, got)
		})
	}
}

func TestUserID_IsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.False(t, NewUserID().IsNil())
	assert.NotEqual(t, NewUserID(), NewUserID())
}
