package domain

// Role определяет набор прав пользователя.
type Role string

const (
	RoleManager      Role = "manager"
	RoleLabAssistant Role = "lab_assistant"
	RoleController   Role = "controller"
)

var roleLabels = map[Role]string{
	RoleManager:      "Менеджер по работе с клиентами",
	RoleLabAssistant: "Лаборант",
	RoleController:   "Контроллер",
}

// Roles возвращает все роли в фиксированном порядке.
func Roles() []Role {
	return []Role{RoleManager, RoleLabAssistant, RoleController}
}

// Valid сообщает, известна ли роль.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label возвращает отображаемое название роли.
func (r Role) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

// User — оператор системы. Создаётся начальными данными.
type User struct {
	ID       int64
	Username string
	Role     Role
	FullName string
	IsActive bool
}
