package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/validation"
)

func TestClientValidate(t *testing.T) {
	tests := []struct {
		name    string
		client  domain.Client
		wantMsg string
	}{
		{
			name:   "legal ok",
			client: domain.Client{Type: domain.ClientTypeLegal, CompanyName: "Acme LLC", INN: "1234567890", Phone: "+7 (912) 345-67-89"},
		},
		{
			name:   "individual ok",
			client: domain.Client{Type: domain.ClientTypeIndividual, FullName: "Иванов Иван", Phone: "9123456789", PassportSeries: "4510", PassportNumber: "123456", BirthDate: "1990-01-31"},
		},
		{
			name:    "type missing",
			client:  domain.Client{Phone: "79123456789"},
			wantMsg: "client type is not specified",
		},
		{
			name:    "phone missing",
			client:  domain.Client{Type: domain.ClientTypeLegal, CompanyName: "Acme"},
			wantMsg: "phone is required",
		},
		{
			name:    "bad email",
			client:  domain.Client{Type: domain.ClientTypeLegal, CompanyName: "Acme", Phone: "79123456789", Email: "acme@"},
			wantMsg: "invalid email format",
		},
		{
			name:    "company required",
			client:  domain.Client{Type: domain.ClientTypeLegal, Phone: "79123456789", CompanyName: "   "},
			wantMsg: "company name is required",
		},
		{
			name:    "bad inn",
			client:  domain.Client{Type: domain.ClientTypeLegal, CompanyName: "Acme", Phone: "79123456789", INN: "123"},
			wantMsg: "INN must contain 10 or 12 digits",
		},
		{
			name:    "bad bik",
			client:  domain.Client{Type: domain.ClientTypeLegal, CompanyName: "Acme", Phone: "79123456789", BIK: "12345"},
			wantMsg: "BIK must contain 9 digits",
		},
		{
			name:    "full name required",
			client:  domain.Client{Type: domain.ClientTypeIndividual, Phone: "79123456789"},
			wantMsg: "full name is required",
		},
		{
			name:    "bad birth date",
			client:  domain.Client{Type: domain.ClientTypeIndividual, FullName: "Иванов", Phone: "79123456789", BirthDate: "31.01.1990"},
			wantMsg: "invalid date format, use YYYY-MM-DD",
		},
		{
			name:    "bad passport",
			client:  domain.Client{Type: domain.ClientTypeIndividual, FullName: "Иванов", Phone: "79123456789", PassportSeries: "45", PassportNumber: "123456"},
			wantMsg: "passport series must contain 4 digits",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.client.Validate()
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, tt.wantMsg, validation.Message(err))
		})
	}
}

func TestClientNormalizedDropsForeignCluster(t *testing.T) {
	client := domain.Client{
		Type:           domain.ClientTypeLegal,
		CompanyName:    "  Acme LLC ",
		INN:            "1234567890",
		FullName:       "should be dropped",
		PassportSeries: "4510",
		Phone:          " 79123456789 ",
	}

	n := client.Normalized()
	require.Equal(t, "Acme LLC", n.CompanyName)
	require.Equal(t, "79123456789", n.Phone)
	require.Empty(t, n.FullName)
	require.Empty(t, n.PassportSeries)

	fields := client.Fields()
	require.Equal(t, "legal", fields["client_type"])
	require.Equal(t, "1234567890", fields["inn"])
	require.NotContains(t, fields, "full_name")
	require.NotContains(t, fields, "email")
}

func TestClientDisplay(t *testing.T) {
	require.Equal(t, "Неизвестная компания", domain.Client{Type: domain.ClientTypeLegal}.DisplayName())
	require.Equal(t, "Неизвестный клиент", domain.Client{Type: domain.ClientTypeIndividual}.DisplayName())
	require.Equal(t, "Acme", domain.Client{Type: domain.ClientTypeLegal, CompanyName: "Acme"}.DisplayName())

	c := domain.Client{Phone: "79123456789", Email: "a@b.ru"}
	require.Equal(t, "tel: 79123456789, email: a@b.ru", c.ContactInfo())
	require.Equal(t, "tel: 79123456789", domain.Client{Phone: "79123456789"}.ContactInfo())
}

func TestFormatPhone(t *testing.T) {
	require.Equal(t, "+7 (912) 345-67-89", domain.FormatPhone("89123456789"))
	require.Equal(t, "+7 (912) 345-67-89", domain.FormatPhone("9123456789"))
	require.Equal(t, "+7 (912) 345-67-89", domain.FormatPhone("+7 912 345-67-89"))
	require.Equal(t, "12345", domain.FormatPhone("12345"))
}

func TestServiceValidate(t *testing.T) {
	svc := domain.Service{Name: "Анализ воды", Price: price(t, "1500")}
	require.NoError(t, svc.Validate())
	require.Equal(t, "1500.00 руб.", svc.PriceDisplay())

	svc.Price = price(t, "0")
	require.Error(t, svc.Validate())

	svc = domain.Service{Name: "ab", Price: price(t, "1")}
	require.EqualError(t, svc.Validate(), "service name must contain at least 3 characters")
}

func TestRoleLabels(t *testing.T) {
	require.Len(t, domain.Roles(), 3)
	require.Equal(t, "Лаборант", domain.RoleLabAssistant.Label())
	require.False(t, domain.Role("admin").Valid())
	require.Equal(t, "admin", domain.Role("admin").Label())
}
