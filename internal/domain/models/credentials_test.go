package models

import (
	"testing"

	"taskhub/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     struct {
			err error
		}
	}{
		{
			name:     "valid password",
			password: "password1",
			want: struct {
				err error
			}{
				err: nil,
			},
		},
		{
			name:     "exactly minimum length",
			password: "12345678",
			want: struct {
				err error
			}{
				err: nil,
			},
		},
		{
			name:     "too short",
			password: "1234567",
			want: struct {
				err error
			}{
				err: errors.ErrInvalidPassword,
			},
		},
		{
			name:     "empty",
			password: "",
			want: struct {
				err error
			}{
				err: errors.ErrInvalidPassword,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)

			if tt.want.err != nil {
				assert.ErrorIs(t, err, tt.want.err)
				assert.Empty(t, hash)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, CheckPassword(hash, tt.password))
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("password1")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "password1"))
	assert.False(t, CheckPassword(hash, "password2"))
	assert.False(t, CheckPassword("not a bcrypt hash", "password1"))
	assert.False(t, CheckPassword("", "password1"))
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{
			name:  "trims whitespace",
			email: "  alice@x.com  ",
			want:  "alice@x.com",
		},
		{
			name:  "escapes html",
			email: "<script>@x.com",
			want:  "&lt;script&gt;@x.com",
		},
		{
			name:  "clean email untouched",
			email: "alice@x.com",
			want:  "alice@x.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeEmail(tt.email))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  struct {
			err error
		}
	}{
		{
			name:  "valid date",
			value: "2025-03-01",
			want: struct {
				err error
			}{
				err: nil,
			},
		},
		{
			name:  "wrong order",
			value: "01-03-2025",
			want: struct {
				err error
			}{
				err: errors.ErrInvalidDate,
			},
		},
		{
			name:  "nonexistent day",
			value: "2025-02-30",
			want: struct {
				err error
			}{
				err: errors.ErrInvalidDate,
			},
		},
		{
			name:  "free text",
			value: "tomorrow",
			want: struct {
				err error
			}{
				err: errors.ErrInvalidDate,
			},
		},
		{
			name:  "empty",
			value: "",
			want: struct {
				err error
			}{
				err: errors.ErrInvalidDate,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseDate(tt.value)

			if tt.want.err != nil {
				assert.ErrorIs(t, err, tt.want.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.value, parsed.Format(DateLayout))
		})
	}
}
