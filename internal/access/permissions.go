// Package access содержит ролевую модель и сессию оператора.
package access

import (
	"sort"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

// Permission открывает доступ к группе операций.
type Permission string

const (
	PermCreateOrders   Permission = "create_orders"
	PermManageClients  Permission = "manage_clients"
	PermViewOrders     Permission = "view_orders"
	PermManageOrders   Permission = "manage_orders"
	PermViewReports    Permission = "view_reports"
	PermManageServices Permission = "manage_services"
)

// PermissionSet хранит набор прав роли; не изменяется после создания.
type PermissionSet map[Permission]struct{}

// Has сообщает, входит ли право в набор.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// List возвращает права в отсортированном виде.
func (s PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func newSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

var rolePermissions = map[domain.Role]PermissionSet{
	domain.RoleManager: newSet(PermCreateOrders, PermManageClients),
	domain.RoleLabAssistant: newSet(PermCreateOrders, PermManageClients,
		PermViewOrders, PermManageOrders, PermViewReports),
	domain.RoleController: newSet(PermCreateOrders, PermManageClients,
		PermViewOrders, PermManageOrders, PermViewReports, PermManageServices),
}

// PermissionsFor возвращает права роли. Для неизвестной роли набор пуст.
// Возвращается копия, таблица не изменяется вызывающим кодом.
func PermissionsFor(role domain.Role) PermissionSet {
	src, ok := rolePermissions[role]
	if !ok {
		return PermissionSet{}
	}
	out := make(PermissionSet, len(src))
	for p := range src {
		out[p] = struct{}{}
	}
	return out
}
