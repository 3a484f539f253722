package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestINN(t *testing.T) {
	tests := []struct {
		name  string
		inn   string
		valid bool
	}{
		{name: "empty", inn: "", valid: true},
		{name: "ten digits", inn: "1234567890", valid: true},
		{name: "twelve digits", inn: "123456789012", valid: true},
		{name: "surrounding spaces", inn: " 1234567890 ", valid: true},
		{name: "eleven digits", inn: "12345678901", valid: false},
		{name: "nine digits", inn: "123456789", valid: false},
		{name: "letters", inn: "12345abcde", valid: false},
		{name: "inner space", inn: "12345 67890", valid: false},
		{name: "only spaces", inn: "   ", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := INN(tt.inn)
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
		})
	}
}

func TestINN_AnyOtherLengthIsInvalid(t *testing.T) {
	for n := 1; n <= 20; n++ {
		inn := strings.Repeat("7", n)
		err := INN(inn)
		if n == 10 || n == 12 {
			require.NoError(t, err, "length %d", n)
		} else {
			require.Error(t, err, "length %d", n)
		}
	}
}

func TestPassport(t *testing.T) {
	require.NoError(t, Passport("", ""))
	require.NoError(t, Passport("1234", ""))
	require.NoError(t, Passport("", "123456"))
	require.NoError(t, Passport("1234", "123456"))

	require.Error(t, Passport("1234", "   "))
	require.Error(t, Passport(" ", "123456"))

	err := Passport("123", "123456")
	var vErr *Error
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, "passport_series", vErr.Field)

	err = Passport("1234", "12345a")
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, "passport_number", vErr.Field)
}

func TestEmail(t *testing.T) {
	require.NoError(t, Email(""))
	require.NoError(t, Email("lab@example.com"))
	require.NoError(t, Email("first.last+qc@mail.example.ru"))
	require.Error(t, Email("lab@example"))
	require.Error(t, Email("lab.example.com"))
	require.Error(t, Email("lab@example.c"))
	require.Error(t, Email("   "))
	require.NoError(t, Email(" lab@example.com "))
}

func TestPhone(t *testing.T) {
	err := Phone("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")

	require.NoError(t, Phone("79123456789"))
	require.NoError(t, Phone("+7 (912) 345-67-89"))
	require.NoError(t, Phone("9123456789"))
	require.Error(t, Phone("912345678"))
	require.Error(t, Phone("+7 912 345 67 89 0"))
	require.Error(t, Phone("7912345678x"))
	require.ErrorContains(t, Phone("   "), "digits only")
}

func TestNormalizePhone(t *testing.T) {
	require.Equal(t, "79123456789", NormalizePhone(" +7 (912) 345-67-89 "))
}

func TestDate(t *testing.T) {
	require.NoError(t, Date(""))
	require.NoError(t, Date("2024-02-29"))
	require.Error(t, Date("2023-02-29"))
	require.Error(t, Date("01.02.2024"))
	require.Error(t, Date("   "))
	require.Error(t, Date(" 2024-01-01"))
	require.Error(t, Date("2024-01-01 "))
}

func TestBankAccountAndBIK(t *testing.T) {
	require.NoError(t, BankAccount(""))
	require.NoError(t, BankAccount(strings.Repeat("4", 20)))
	require.Error(t, BankAccount(strings.Repeat("4", 19)))
	require.Error(t, BankAccount(strings.Repeat("4", 19)+"x"))
	require.Error(t, BankAccount("   "))

	require.NoError(t, BIK(""))
	require.NoError(t, BIK("044525225"))
	require.Error(t, BIK("04452522"))
	require.Error(t, BIK("04452522a"))
	require.Error(t, BIK("  "))
}

func TestRequired(t *testing.T) {
	require.Error(t, Required("", "company_name"))
	require.Error(t, Required("   ", "company_name"))
	require.NoError(t, Required("Acme LLC", "company_name"))

	var vErr *Error
	require.True(t, errors.As(Required("", "full_name"), &vErr))
	require.Equal(t, "full_name", vErr.Field)
}

func TestVesselCode(t *testing.T) {
	require.ErrorContains(t, VesselCode(""), "required")
	require.ErrorContains(t, VesselCode("   "), "required")
	require.ErrorContains(t, VesselCode(" V1 "), "at least 3")
	require.NoError(t, VesselCode("VS000001"))
}

func TestServiceName(t *testing.T) {
	require.Error(t, ServiceName(""))
	require.Error(t, ServiceName("ab"))
	require.NoError(t, ServiceName("Ультразвуковой контроль"))
}

func TestPasswordStrength(t *testing.T) {
	require.ErrorContains(t, PasswordStrength("Ab1"), "6 characters")
	require.ErrorContains(t, PasswordStrength("abcdef1"), "upper-case")
	require.ErrorContains(t, PasswordStrength("Abcdefg"), "digit")
	require.NoError(t, PasswordStrength("Secret42"))
}

func TestMessage(t *testing.T) {
	require.Equal(t, "", Message(nil))
	require.Equal(t, "phone is required", Message(Phone("")))
}
