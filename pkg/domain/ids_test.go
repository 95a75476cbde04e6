package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
)

func TestParseIDs(t *testing.T) {
	valid := uuid.NewString()

	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAccountID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePropertyID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil uuid", func(t *testing.T) {
		_, err := ParseOwnershipID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid uuid", func(t *testing.T) {
		ownerID, err := ParseOwnerID(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, ownerID.String())
		assert.False(t, ownerID.IsNil())
	})

	t.Run("error message names the id kind", func(t *testing.T) {
		_, err := ParseOwnerID("")
		assert.Contains(t, dErrors.MessageOf(err), "owner")
		_, err = ParseAccountID("junk")
		assert.Contains(t, dErrors.MessageOf(err), "account")
	})
}

func TestIDJSONRoundTrip(t *testing.T) {
	original := PropertyID(uuid.New())

	raw, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+original.String()+`"`, string(raw))

	var decoded PropertyID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original, decoded)
}

func TestIDUnmarshalRejectsInvalid(t *testing.T) {
	var decoded OwnershipID
	err := json.Unmarshal([]byte(`"not-a-uuid"`), &decoded)
	require.Error(t, err)
}

func TestIsNil(t *testing.T) {
	assert.True(t, AccountID{}.IsNil())
	assert.False(t, AccountID(uuid.New()).IsNil())
}
