package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+2348031234567", "+2348031234567"},
		{"2348031234567", "+2348031234567"},
		{"+234 803 123 4567", "+2348031234567"},
		{"+234-803-123-4567", "+2348031234567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in), "input %q", tt.in)
	}
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+2348031234567", FormatPhone("08031234567", "+234"))
	assert.Equal(t, "+2348031234567", FormatPhone("2348031234567", "+234"))
	assert.Equal(t, "+2348031234567", FormatPhone("8031234567", "+234"))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+2348031234567"))
	assert.False(t, IsValidPhone("not-a-phone"))
	assert.False(t, IsValidPhone(""))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	adminID := primitive.NewObjectID()
	roleID := primitive.NewObjectID()

	token, err := GenerateAccessToken(adminID, roleID, "branch-hex", "amina@coopsave.ng", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token.Token, "secret")
	require.NoError(t, err)
	assert.Equal(t, adminID, claims.AdminID)
	assert.Equal(t, roleID, claims.RoleID)
	assert.Equal(t, "amina@coopsave.ng", claims.Email)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(primitive.NewObjectID(), primitive.NewObjectID(), "", "a@b.c", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token.Token, "other-secret")
	assert.Error(t, err)
}

func TestGenerateRandomPassword(t *testing.T) {
	a := GenerateRandomPassword(GeneratedPasswordLength)
	b := GenerateRandomPassword(GeneratedPasswordLength)

	assert.Len(t, a, GeneratedPasswordLength)
	assert.NotEqual(t, a, b)
}

func TestPaginationBounds(t *testing.T) {
	params := &PaginationParams{Page: 3, PageSize: 20}
	assert.Equal(t, 40, params.GetSkip())
	assert.Equal(t, 20, params.GetLimit())

	meta := CreatePaginationMeta(&PaginationParams{Page: 2, PageSize: 10}, 35)
	assert.Equal(t, 4, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)
}
