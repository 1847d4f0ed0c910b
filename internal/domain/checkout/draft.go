package checkout

import (
	"errors"
	"strings"

	"github.com/example/tg-storefront/internal/domain/order"
)

type CustomerType string

const (
	CustomerIndividual     CustomerType = "individual"
	CustomerCompany        CustomerType = "company"
	CustomerSoleProprietor CustomerType = "sole_proprietor"
)

// Valid reports whether t is one of the known customer types.
func (t CustomerType) Valid() bool {
	switch t {
	case CustomerIndividual, CustomerCompany, CustomerSoleProprietor:
		return true
	}
	return false
}

// NeedsOrganization is true for company and sole proprietor customers.
func (t CustomerType) NeedsOrganization() bool {
	return t == CustomerCompany || t == CustomerSoleProprietor
}

// Draft is the checkout form as the customer filled it in.
type Draft struct {
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	CustomerType CustomerType `json:"customer_type"`
	Organization string       `json:"organization"`
	Comment      string       `json:"comment"`
}

// Trimmed returns the draft with surrounding whitespace removed from every field.
func (d Draft) Trimmed() Draft {
	return Draft{
		Name:         strings.TrimSpace(d.Name),
		Phone:        strings.TrimSpace(d.Phone),
		CustomerType: CustomerType(strings.TrimSpace(string(d.CustomerType))),
		Organization: strings.TrimSpace(d.Organization),
		Comment:      strings.TrimSpace(d.Comment),
	}
}

type ErrorKind string

const (
	KindEmptyCart           ErrorKind = "empty_cart"
	KindMissingName         ErrorKind = "missing_name"
	KindMissingPhone        ErrorKind = "missing_phone"
	KindMissingCustomerType ErrorKind = "missing_customer_type"
	KindMissingOrganization ErrorKind = "missing_organization"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMissingName         = errors.New("customer name is required")
	ErrMissingPhone        = errors.New("customer phone is required")
	ErrMissingCustomerType = errors.New("customer type is required")
	ErrMissingOrganization = errors.New("organization name is required")
)

// messages are shown to the customer as is
var messages = map[ErrorKind]string{
	KindEmptyCart:           "Корзина пуста",
	KindMissingName:         "Введите имя",
	KindMissingPhone:        "Введите телефон",
	KindMissingCustomerType: "Выберите тип клиента",
	KindMissingOrganization: "Введите название организации",
}

var kindErrors = map[ErrorKind]error{
	KindEmptyCart:           ErrEmptyCart,
	KindMissingName:         ErrMissingName,
	KindMissingPhone:        ErrMissingPhone,
	KindMissingCustomerType: ErrMissingCustomerType,
	KindMissingOrganization: ErrMissingOrganization,
}

// ValidationError is a problem the customer can fix in the form. It matches
// its kind's sentinel with errors.Is.
type ValidationError struct {
	Kind ErrorKind
}

func (e *ValidationError) Error() string {
	return kindErrors[e.Kind].Error()
}

// Message is the customer-facing text for the error.
func (e *ValidationError) Message() string {
	return messages[e.Kind]
}

func (e *ValidationError) Unwrap() error {
	return kindErrors[e.Kind]
}

func invalid(kind ErrorKind) error {
	return &ValidationError{Kind: kind}
}

// Validate checks the draft against the cart lines in a fixed order and
// reports only the first problem. The draft is trimmed first.
func Validate(d Draft, items []order.LineItem) error {
	d = d.Trimmed()

	switch {
	case len(items) == 0:
		return invalid(KindEmptyCart)
	case d.Name == "":
		return invalid(KindMissingName)
	case d.Phone == "":
		return invalid(KindMissingPhone)
	case !d.CustomerType.Valid():
		return invalid(KindMissingCustomerType)
	case d.CustomerType.NeedsOrganization() && d.Organization == "":
		return invalid(KindMissingOrganization)
	}
	return nil
}

// BuildRequest turns a valid draft and the current cart lines into the
// order payload. An empty organization is sent as null.
func BuildRequest(d Draft, items []order.LineItem, telegramUserID int64) order.Request {
	d = d.Trimmed()

	var organization *string
	if d.Organization != "" {
		org := d.Organization
		organization = &org
	}

	lines := make([]order.LineItem, len(items))
	copy(lines, items)

	return order.Request{
		TelegramUserID:       telegramUserID,
		CustomerName:         d.Name,
		CustomerPhone:        d.Phone,
		CustomerOrganization: organization,
		CustomerType:         string(d.CustomerType),
		Comment:              d.Comment,
		Items:                lines,
	}
}
