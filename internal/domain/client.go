package domain

import (
	"strings"
	"time"

	"github.com/vladislavdragonenkov/labqc/internal/validation"
)

// ClientType различает юридических и физических лиц.
type ClientType string

const (
	ClientTypeLegal      ClientType = "legal"
	ClientTypeIndividual ClientType = "individual"
)

// Valid сообщает, известен ли тип клиента.
func (t ClientType) Valid() bool {
	return t == ClientTypeLegal || t == ClientTypeIndividual
}

// Label возвращает отображаемое название типа клиента.
func (t ClientType) Label() string {
	switch t {
	case ClientTypeLegal:
		return "Юридическое лицо"
	case ClientTypeIndividual:
		return "Физическое лицо"
	default:
		return string(t)
	}
}

// Client — заказчик лабораторных испытаний. Заполняется только набор полей,
// соответствующий Type; поля другого набора при сохранении отбрасываются.
type Client struct {
	ID   int64
	Type ClientType

	// Юридическое лицо.
	CompanyName   string
	Address       string
	INN           string
	BankAccount   string
	BIK           string
	DirectorName  string
	ContactPerson string

	// Физическое лицо.
	FullName       string
	BirthDate      string
	PassportSeries string
	PassportNumber string

	Phone     string
	Email     string
	CreatedAt time.Time
}

// Normalized возвращает копию клиента с обрезанными пробелами и очищенным
// набором полей чужого типа.
func (c Client) Normalized() Client {
	out := Client{
		ID:        c.ID,
		Type:      c.Type,
		Phone:     strings.TrimSpace(c.Phone),
		Email:     strings.TrimSpace(c.Email),
		CreatedAt: c.CreatedAt,
	}
	switch c.Type {
	case ClientTypeLegal:
		out.CompanyName = strings.TrimSpace(c.CompanyName)
		out.Address = strings.TrimSpace(c.Address)
		out.INN = strings.TrimSpace(c.INN)
		out.BankAccount = strings.TrimSpace(c.BankAccount)
		out.BIK = strings.TrimSpace(c.BIK)
		out.DirectorName = strings.TrimSpace(c.DirectorName)
		out.ContactPerson = strings.TrimSpace(c.ContactPerson)
	case ClientTypeIndividual:
		out.FullName = strings.TrimSpace(c.FullName)
		out.BirthDate = strings.TrimSpace(c.BirthDate)
		out.PassportSeries = strings.TrimSpace(c.PassportSeries)
		out.PassportNumber = strings.TrimSpace(c.PassportNumber)
	}
	return out
}

// Validate проверяет клиента и возвращает первое нарушение.
func (c Client) Validate() error {
	if !c.Type.Valid() {
		return &validation.Error{Field: "client_type", Message: "client type is not specified"}
	}
	if err := validation.Phone(c.Phone); err != nil {
		return err
	}
	if err := validation.Email(c.Email); err != nil {
		return err
	}

	if c.Type == ClientTypeLegal {
		if err := validation.Required(c.CompanyName, "company_name"); err != nil {
			return &validation.Error{Field: "company_name", Message: "company name is required"}
		}
		if err := validation.INN(c.INN); err != nil {
			return err
		}
		if err := validation.BankAccount(c.BankAccount); err != nil {
			return err
		}
		return validation.BIK(c.BIK)
	}

	if err := validation.Required(c.FullName, "full_name"); err != nil {
		return &validation.Error{Field: "full_name", Message: "full name is required"}
	}
	if err := validation.Date(c.BirthDate); err != nil {
		return &validation.Error{Field: "birth_date", Message: validation.Message(err)}
	}
	return validation.Passport(c.PassportSeries, c.PassportNumber)
}

// DisplayName возвращает название компании или ФИО.
func (c Client) DisplayName() string {
	if c.Type == ClientTypeLegal {
		if c.CompanyName != "" {
			return c.CompanyName
		}
		return "Неизвестная компания"
	}
	if c.FullName != "" {
		return c.FullName
	}
	return "Неизвестный клиент"
}

// ContactInfo собирает телефон и почту в одну строку.
func (c Client) ContactInfo() string {
	parts := make([]string, 0, 2)
	if c.Phone != "" {
		parts = append(parts, "tel: "+c.Phone)
	}
	if c.Email != "" {
		parts = append(parts, "email: "+c.Email)
	}
	return strings.Join(parts, ", ")
}

// Fields возвращает только заполненные колонки клиента для вставки.
func (c Client) Fields() map[string]any {
	n := c.Normalized()
	fields := map[string]any{
		"client_type": string(n.Type),
		"phone":       n.Phone,
	}
	optional := map[string]string{
		"email":           n.Email,
		"company_name":    n.CompanyName,
		"address":         n.Address,
		"inn":             n.INN,
		"bank_account":    n.BankAccount,
		"bik":             n.BIK,
		"director_name":   n.DirectorName,
		"contact_person":  n.ContactPerson,
		"full_name":       n.FullName,
		"birth_date":      n.BirthDate,
		"passport_series": n.PassportSeries,
		"passport_number": n.PassportNumber,
	}
	for column, value := range optional {
		if value != "" {
			fields[column] = value
		}
	}
	return fields
}

// HasPassport сообщает, заполнена ли пара серия/номер.
func (c Client) HasPassport() bool {
	return c.PassportSeries != "" && c.PassportNumber != ""
}

// FormatPhone приводит 11-значный номер к виду +7 (XXX) XXX-XX-XX.
// Номера другой длины возвращаются без изменений.
func FormatPhone(phone string) string {
	digits := validation.NormalizePhone(phone)
	if len(digits) == 10 {
		digits = "7" + digits
	}
	if len(digits) != 11 {
		return phone
	}
	if digits[0] == '8' {
		digits = "7" + digits[1:]
	}
	return "+" + digits[:1] + " (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:9] + "-" + digits[9:]
}
