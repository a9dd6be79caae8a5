package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	t.Run("SetUserContext and getters", func(t *testing.T) {
		ctx := SetUserContext(context.Background(), "u-1", "admin", "admin", []string{"orders"})

		id, ok := GetUserIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "u-1", id)
		assert.Equal(t, "admin", GetUsernameFromContext(ctx))
		assert.Equal(t, "admin", GetUserRoleFromContext(ctx))
	})

	t.Run("Empty context", func(t *testing.T) {
		_, ok := GetUserIDFromContext(context.Background())
		assert.False(t, ok)
		assert.Equal(t, "", GetUserRoleFromContext(context.Background()))
	})
}

func TestHasPermission(t *testing.T) {
	ctx := context.Background()

	assert.False(t, HasPermission(ctx, "orders"))

	user := SetUserContext(ctx, "u-1", "jan", "admin", []string{"orders"})
	assert.True(t, HasPermission(user, "orders"))
	assert.False(t, HasPermission(user, "rides"))

	super := SetUserContext(ctx, "u-2", "root", RoleSuperAdmin, nil)
	assert.True(t, HasPermission(super, "rides"))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Club Shirt 2024":      "club-shirt-2024",
		"  Hoodie -- Zwart!! ": "hoodie-zwart",
		"Über Cap":             "ber-cap",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestPtrHelpers(t *testing.T) {
	assert.Equal(t, "x", *StrPtr("x"))
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, "not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not found", body["error"])
}

type signup struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age" validate:"gte=18"`
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, Validate(signup{Name: "Jan", Email: "jan@example.com", Age: 30}))
	})

	t.Run("Invalid uses json names", func(t *testing.T) {
		err := Validate(signup{Email: "nope", Age: 3})
		require.Error(t, err)

		fields := FieldErrors(err)
		assert.Equal(t, "is required", fields["name"])
		assert.Equal(t, "must be a valid email address", fields["email"])
		assert.Equal(t, "must be 18 or more", fields["age"])
	})

	t.Run("Non validation error", func(t *testing.T) {
		fields := FieldErrors(errors.New("boom"))
		assert.Equal(t, "boom", fields["_"])
	})
}
