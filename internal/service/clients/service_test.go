package clients_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/service/clients"
	"github.com/vladislavdragonenkov/labqc/internal/storage"
	"github.com/vladislavdragonenkov/labqc/internal/storage/memory"
	"github.com/vladislavdragonenkov/labqc/internal/validation"
)

func setup(t *testing.T) (*clients.Service, *access.Session) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Seed(storage.DefaultSeed()))
	session := access.NewSession(store.Users(), nil)
	_, err := session.Login("manager1", storage.DefaultPassword)
	require.NoError(t, err)
	return clients.NewService(store.Clients(), nil), session
}

func TestRegister(t *testing.T) {
	svc, session := setup(t)

	id, err := svc.Register(session, domain.Client{
		Type:        domain.ClientTypeLegal,
		CompanyName: " Acme LLC ",
		INN:         "1234567890",
		Phone:       "79123456789",
	})
	require.NoError(t, err)

	stored, err := svc.Get(session, id)
	require.NoError(t, err)
	require.Equal(t, "Acme LLC", stored.CompanyName)

	_, err = svc.Register(session, domain.Client{
		Type:        domain.ClientTypeLegal,
		CompanyName: "Acme Copy",
		INN:         "1234567890",
		Phone:       "79123456789",
	})
	require.ErrorIs(t, err, domain.ErrClientINNExists)

	_, err = svc.Register(session, domain.Client{Type: domain.ClientTypeIndividual, Phone: "79123456789"})
	require.Equal(t, "full name is required", validation.Message(err))
}

func TestListAndSearch(t *testing.T) {
	svc, session := setup(t)

	for _, c := range []domain.Client{
		{Type: domain.ClientTypeLegal, CompanyName: "Acme", Phone: "79123456789"},
		{Type: domain.ClientTypeIndividual, FullName: "Иванов Иван", Phone: "79123456780"},
	} {
		_, err := svc.Register(session, c)
		require.NoError(t, err)
	}

	all, err := svc.Search(session, "  ", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	found, err := svc.Search(session, "Иван", domain.ClientTypeIndividual)
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = svc.List(session, domain.ClientType("corp"))
	require.ErrorIs(t, err, domain.ErrClientTypeInvalid)

	session.Logout()
	_, err = svc.List(session, "")
	require.ErrorIs(t, err, access.ErrNotAuthenticated)
}
