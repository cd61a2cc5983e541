package ownership

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ownedThing struct {
	id    uuid.UUID
	owner Key
}

func (o *ownedThing) OwnerKey() Key { return o.owner }

func TestAuthorize(t *testing.T) {
	a := Identity(uuid.New())
	b := Identity(uuid.New())

	assert.Equal(t, NotFound, Authorize(a, Key{}, false))
	assert.Equal(t, Allowed, Authorize(a, a, true))
	assert.Equal(t, Forbidden, Authorize(b, a, true))
	assert.Equal(t, Forbidden, Authorize(Key{}, a, true))
	assert.Equal(t, Forbidden, Authorize(NamespaceToken("acme", "t"), a, true))
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Allowed.Err("Payable"))
	assert.True(t, errors.Is(Forbidden.Err("Payable"), shared.ErrForbidden))
	assert.True(t, errors.Is(NotFound.Err("Payable"), shared.ErrNotFound))
	assert.Equal(t, "Payable not found", NotFound.Err("Payable").Error())
}

func TestLoad(t *testing.T) {
	owner := Identity(uuid.New())
	other := Identity(uuid.New())
	thing := &ownedThing{id: uuid.New(), owner: owner}

	find := func(_ context.Context, id uuid.UUID) (*ownedThing, error) {
		if id == thing.id {
			return thing, nil
		}
		return nil, shared.ErrNotFound
	}

	t.Run("owner gets the record", func(t *testing.T) {
		got, err := Load(context.Background(), owner, thing.id, "Thing", find)
		require.NoError(t, err)
		assert.Same(t, thing, got)
	})

	t.Run("other owner is forbidden and gets nothing", func(t *testing.T) {
		got, err := Load(context.Background(), other, thing.id, "Thing", find)
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, shared.ErrForbidden))
		assert.False(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("missing record is not found", func(t *testing.T) {
		got, err := Load(context.Background(), owner, uuid.New(), "Thing", find)
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("store failures pass through", func(t *testing.T) {
		boom := errors.New("connection reset")
		failing := func(context.Context, uuid.UUID) (*ownedThing, error) { return nil, boom }
		_, err := Load(context.Background(), owner, thing.id, "Thing", failing)
		assert.ErrorIs(t, err, boom)
	})
}
