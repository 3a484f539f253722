package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/app"
	"github.com/vladislavdragonenkov/labqc/internal/storage"
)

func newCLI(t *testing.T, a *app.App, username string) (*cli, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &cli{app: a, out: out, username: username, password: storage.DefaultPassword}, out
}

func exec(t *testing.T, c *cli, args string) error {
	t.Helper()
	return c.dispatch(context.Background(), strings.Fields(args))
}

func TestOrderFlowThroughCommands(t *testing.T) {
	a, err := app.Open(context.Background(), app.DefaultConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	manager, out := newCLI(t, a, "manager1")
	require.NoError(t, exec(t, manager, "clients add -type legal -company Acme -inn 1234567890 -phone 89123456789"))
	require.Equal(t, "client 1 registered\n", out.String())

	out.Reset()
	require.NoError(t, exec(t, manager, "orders create -client 1 -date 2024-03-01 -service 1:2 -service 2"))
	require.Equal(t, "order 1 created: vessel VS000001, total 55000.00 руб.\n", out.String())

	require.ErrorIs(t, exec(t, manager, "orders list"), access.ErrPermissionDenied)

	lab, out := newCLI(t, a, "lab1")
	require.NoError(t, exec(t, lab, "orders status -id 1 -status completed"))

	out.Reset()
	require.NoError(t, exec(t, lab, "orders list -status completed"))
	require.Contains(t, out.String(), "VS000001")
	require.Contains(t, out.String(), "Завершен")

	out.Reset()
	require.NoError(t, exec(t, lab, "orders show -id 1"))
	require.Contains(t, out.String(), "Химический анализ состава")
	require.Contains(t, out.String(), "55000.00 руб.")

	out.Reset()
	require.NoError(t, exec(t, lab, "report -from 2024-03-01 -to 2024-03-31 -format csv"))
	require.Contains(t, out.String(), "VS000001")
	require.Contains(t, out.String(), "Итого заказов: 1")

	require.Error(t, exec(t, lab, "report -from 2024-03-01 -to 2024-03-31 -format pdf"))
	require.Error(t, exec(t, lab, "report -to 2024-03-31"))
}

func TestServicesCommands(t *testing.T) {
	a, err := app.Open(context.Background(), app.DefaultConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	controller, out := newCLI(t, a, "controller1")
	require.NoError(t, exec(t, controller, "services add -name Дефектоскопия -price 9000"))
	require.Equal(t, "service 6 created\n", out.String())
	require.NoError(t, exec(t, controller, "services price -id 6 -price 9500.50"))
	require.NoError(t, exec(t, controller, "services disable -id 6"))

	out.Reset()
	require.NoError(t, exec(t, controller, "services list"))
	require.NotContains(t, out.String(), "Дефектоскопия")

	require.Error(t, exec(t, controller, "services add -name Проба -price abc"))
}

func TestDispatchErrors(t *testing.T) {
	a, err := app.Open(context.Background(), app.DefaultConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	c, _ := newCLI(t, a, "lab1")
	require.ErrorIs(t, exec(t, c, "launch"), errUnknownCommand)
	require.ErrorIs(t, exec(t, c, "orders"), errUnknownCommand)
	require.ErrorIs(t, exec(t, c, "orders delete"), errUnknownCommand)

	bad := &cli{app: a, out: &bytes.Buffer{}, username: "lab1", password: "wrong"}
	require.ErrorIs(t, exec(t, bad, "orders list"), access.ErrWrongPassword)
}

func TestServiceQtyFlag(t *testing.T) {
	var items serviceQty
	require.NoError(t, items.Set("3"))
	require.NoError(t, items.Set("4:2"))
	require.Error(t, items.Set("x"))
	require.Error(t, items.Set("1:many"))

	require.Len(t, items, 2)
	require.Equal(t, int64(3), items[0].id)
	require.Equal(t, 1, items[0].qty)
	require.Equal(t, 2, items[1].qty)
}
