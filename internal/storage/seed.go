// Package storage содержит общие для хранилищ начальные данные.
package storage

import (
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

// DefaultPassword задан всем начальным пользователям.
const DefaultPassword = "123456"

// SeedUser — пользователь начальных данных вместе с хэшем пароля.
type SeedUser struct {
	domain.User
	PasswordHash string
}

// Seed описывает начальное наполнение пустого хранилища.
type Seed struct {
	Users    []SeedUser
	Services []domain.Service
}

// DefaultSeed возвращает трёх операторов (по одному на роль) и пять услуг.
func DefaultSeed() Seed {
	hash := access.HashPassword(DefaultPassword)
	user := func(username string, role domain.Role, fullName string) SeedUser {
		return SeedUser{
			User:         domain.User{Username: username, Role: role, FullName: fullName, IsActive: true},
			PasswordHash: hash,
		}
	}
	service := func(name, description string, price int64) domain.Service {
		return domain.Service{Name: name, Description: description, Price: decimal.NewFromInt(price), IsActive: true}
	}

	return Seed{
		Users: []SeedUser{
			user("manager1", domain.RoleManager, "Иванов Петр Сергеевич"),
			user("lab1", domain.RoleLabAssistant, "Сидорова Мария Ивановна"),
			user("controller1", domain.RoleController, "Петров Алексей Владимирович"),
		},
		Services: []domain.Service{
			service("Химический анализ состава", "Полный химический анализ материала", 15000),
			service("Механические испытания", "Испытания на прочность и упругость", 25000),
			service("Термические испытания", "Испытания при различных температурах", 18000),
			service("Радиографический контроль", "Контроль с помощью рентгеновского излучения", 32000),
			service("Ультразвуковой контроль", "Контроль ультразвуковым дефектоскопом", 28000),
		},
	}
}
