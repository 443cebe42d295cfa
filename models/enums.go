package models

import (
	"encoding/json"
	"errors"
)

type InvoiceKind string

const (
	InvoiceKindPurchase InvoiceKind = "purchase"
	InvoiceKindExpense  InvoiceKind = "expense"
)

func (t InvoiceKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// convert input to enum type
func (t *InvoiceKind) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("invoice kind must be string")
	}
	switch str {
	case "purchase":
		*t = InvoiceKindPurchase
	case "expense":
		*t = InvoiceKindExpense
	default:
		return errors.New("invalid invoice kind")
	}
	return nil
}

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusCompleted InvoiceStatus = "completed"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (t InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *InvoiceStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("invoice status must be string")
	}
	switch str {
	case "draft":
		*t = InvoiceStatusDraft
	case "completed":
		*t = InvoiceStatusCompleted
	case "cancelled":
		*t = InvoiceStatusCancelled
	default:
		return errors.New("invalid invoice status")
	}
	return nil
}

// IsTerminal reports whether the status has no outgoing transitions.
func (t InvoiceStatus) IsTerminal() bool {
	return t == InvoiceStatusCompleted || t == InvoiceStatusCancelled
}

type TransactionType string

const (
	TransactionTypeIn  TransactionType = "in"
	TransactionTypeOut TransactionType = "out"
)

func (t TransactionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *TransactionType) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("transaction type must be string")
	}
	switch str {
	case "in":
		*t = TransactionTypeIn
	case "out":
		*t = TransactionTypeOut
	default:
		return errors.New("invalid transaction type")
	}
	return nil
}

type ProductUnit string

const (
	ProductUnitPiece ProductUnit = "pcs"
	ProductUnitKg    ProductUnit = "kg"
	ProductUnitGram  ProductUnit = "g"
	ProductUnitLiter ProductUnit = "l"
	ProductUnitMeter ProductUnit = "m"
)

func (t ProductUnit) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *ProductUnit) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("product unit must be string")
	}
	units := map[string]ProductUnit{
		"pcs": ProductUnitPiece,
		"kg":  ProductUnitKg,
		"g":   ProductUnitGram,
		"l":   ProductUnitLiter,
		"m":   ProductUnitMeter,
	}
	unit, ok := units[str]
	if !ok {
		return errors.New("invalid product unit")
	}
	*t = unit
	return nil
}

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleManager  UserRole = "manager"
	UserRoleEmployee UserRole = "employee"
)

func (t UserRole) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *UserRole) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("user role must be string")
	}
	switch str {
	case "admin":
		*t = UserRoleAdmin
	case "manager":
		*t = UserRoleManager
	case "employee":
		*t = UserRoleEmployee
	default:
		return errors.New("invalid user role")
	}
	return nil
}

// CanManageStock reports whether the role may mutate catalog and invoices.
func (t UserRole) CanManageStock() bool {
	return t == UserRoleAdmin || t == UserRoleManager
}

type NotificationType string

const (
	NotificationTypeLowStock NotificationType = "low_stock"
	NotificationTypeSystem   NotificationType = "system"
	NotificationTypeAlert    NotificationType = "alert"
)

func (t NotificationType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *NotificationType) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("notification type must be string")
	}
	switch str {
	case "low_stock":
		*t = NotificationTypeLowStock
	case "system":
		*t = NotificationTypeSystem
	case "alert":
		*t = NotificationTypeAlert
	default:
		return errors.New("invalid notification type")
	}
	return nil
}
