package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/service/catalog"
	"github.com/vladislavdragonenkov/labqc/internal/storage"
	"github.com/vladislavdragonenkov/labqc/internal/storage/memory"
)

func login(t *testing.T, store *memory.Store, username string) *access.Session {
	t.Helper()
	session := access.NewSession(store.Users(), nil)
	_, err := session.Login(username, storage.DefaultPassword)
	require.NoError(t, err)
	return session
}

func TestCatalogLifecycle(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Seed(storage.DefaultSeed()))
	svc := catalog.NewService(store.Services(), nil)
	controller := login(t, store, "controller1")

	id, err := svc.Create(controller, "Анализ воды", "pH и жёсткость", decimal.NewFromInt(1200))
	require.NoError(t, err)

	active, err := svc.Active(controller)
	require.NoError(t, err)
	require.Len(t, active, 6)

	require.NoError(t, svc.UpdatePrice(controller, id, decimal.RequireFromString("1300.50")))
	stored, err := store.Services().Get(id)
	require.NoError(t, err)
	require.Equal(t, "1300.50 руб.", stored.PriceDisplay())

	require.EqualError(t, svc.UpdatePrice(controller, id, decimal.Zero), "price must be greater than 0")

	require.NoError(t, svc.Deactivate(controller, id))
	active, err = svc.Active(controller)
	require.NoError(t, err)
	require.Len(t, active, 5)

	require.NoError(t, svc.Activate(controller, id))
	require.ErrorIs(t, svc.Deactivate(controller, 404), domain.ErrServiceNotFound)
}

func TestCatalogRequiresController(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Seed(storage.DefaultSeed()))
	svc := catalog.NewService(store.Services(), nil)
	lab := login(t, store, "lab1")

	_, err := svc.Create(lab, "Анализ воды", "", decimal.NewFromInt(10))
	require.ErrorIs(t, err, access.ErrPermissionDenied)
	require.ErrorIs(t, svc.Deactivate(lab, 1), access.ErrPermissionDenied)

	active, err := svc.Active(lab)
	require.NoError(t, err)
	require.Len(t, active, 5)

	controller := login(t, store, "controller1")
	_, err = svc.Create(controller, "ab", "", decimal.NewFromInt(10))
	require.EqualError(t, err, "service name must contain at least 3 characters")
}
