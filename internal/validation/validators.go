// Package validation содержит чистые проверки формата пользовательского ввода.
// Проверки не обращаются к хранилищу: уникальность ключей контролирует БД.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DateLayout задаёт формат дат во вводе.
const DateLayout = "2006-01-02"

var (
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneSeparator = strings.NewReplacer(" ", "", "\t", "", "-", "", "(", "", ")", "", "+", "")
)

// validate выполняет правила формата по тегам validator.
var validate = validator.New()

// Error описывает нарушение правила для конкретного поля.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fail(field, message string) error {
	return &Error{Field: field, Message: message}
}

// check прогоняет значение через тег и при нарушении возвращает ошибку поля.
func check(value, tag, field, message string) error {
	if err := validate.Var(value, tag); err != nil {
		return fail(field, message)
	}
	return nil
}

// Message возвращает текст ошибки валидации или пустую строку.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// digits проверяет строку из цифр допустимой длины. lenTag задаёт длину
// в синтаксисе validator, например "len=10|len=12".
func digits(value, lenTag, field, digitsMsg, lenMsg string) error {
	if err := check(value, "number", field, digitsMsg); err != nil {
		return err
	}
	return check(value, lenTag, field, lenMsg)
}

// INN проверяет ИНН: 10 цифр у организаций, 12 у ИП. Пустое значение допустимо,
// строка из одних пробелов нет.
func INN(inn string) error {
	if inn == "" {
		return nil
	}
	return digits(strings.TrimSpace(inn), "len=10|len=12", "inn",
		"INN must contain digits only", "INN must contain 10 or 12 digits")
}

// Passport проверяет пару серия/номер. Если одно из полей пустое, пара считается незаполненной.
func Passport(series, number string) error {
	if series == "" || number == "" {
		return nil
	}
	if err := check(strings.TrimSpace(series), "number,len=4", "passport_series", "passport series must contain 4 digits"); err != nil {
		return err
	}
	return check(strings.TrimSpace(number), "number,len=6", "passport_number", "passport number must contain 6 digits")
}

// Email проверяет адрес почты; поле необязательное.
func Email(email string) error {
	if email == "" {
		return nil
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return fail("email", "invalid email format")
	}
	return nil
}

// NormalizePhone удаляет пробелы, скобки, дефисы и плюс.
func NormalizePhone(phone string) string {
	return phoneSeparator.Replace(strings.TrimSpace(phone))
}

// Phone проверяет обязательный телефон: 10 или 11 цифр после удаления разделителей.
func Phone(phone string) error {
	if phone == "" {
		return fail("phone", "phone is required")
	}
	return digits(NormalizePhone(phone), "len=10|len=11", "phone",
		"phone must contain digits only", "phone must contain 10 or 11 digits")
}

// Date проверяет дату в формате ГГГГ-ММ-ДД без обрезки пробелов; пустое значение допустимо.
func Date(value string) error {
	if value == "" {
		return nil
	}
	return check(value, "datetime="+DateLayout, "date", "invalid date format, use YYYY-MM-DD")
}

// BankAccount проверяет расчётный счёт из 20 цифр.
func BankAccount(account string) error {
	if account == "" {
		return nil
	}
	return digits(strings.TrimSpace(account), "len=20", "bank_account",
		"bank account must contain digits only", "bank account must contain 20 digits")
}

// BIK проверяет банковский идентификационный код из 9 цифр.
func BIK(bik string) error {
	if bik == "" {
		return nil
	}
	return digits(strings.TrimSpace(bik), "len=9", "bik",
		"BIK must contain digits only", "BIK must contain 9 digits")
}

// Required проверяет, что поле заполнено не только пробелами.
func Required(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fail(name, "field '"+name+"' is required")
	}
	return nil
}

// VesselCode проверяет формат кода лабораторного сосуда.
func VesselCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fail("vessel_code", "vessel code is required")
	}
	return check(code, "min=3", "vessel_code", "vessel code must contain at least 3 characters")
}

// ServiceName проверяет название услуги каталога.
func ServiceName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fail("name", "service name is required")
	}
	return check(name, "min=3", "name", "service name must contain at least 3 characters")
}

// MinPasswordLength ограничивает длину нового пароля снизу.
const MinPasswordLength = 6

// PasswordStrength проверяет новый пароль: длина, заглавная буква и цифра.
func PasswordStrength(password string) error {
	if err := check(password, "min=6", "password", "password must contain at least 6 characters"); err != nil {
		return err
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	if !hasUpper {
		return fail("password", "password must contain at least one upper-case letter")
	}
	if !hasDigit {
		return fail("password", "password must contain at least one digit")
	}
	return nil
}
