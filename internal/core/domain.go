package core

import (
	"strings"
	"time"
)

const (
	RoleEmployee       Role = "employee"
	RoleFinanceManager Role = "finance_manager"
)

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

const (
	CategoryTravel   Category = "travel"
	CategoryMeals    Category = "meals"
	CategorySupplies Category = "supplies"
	CategoryOther    Category = "other"
)

type (
	// Role is the authorization role of a principal. The closed set is
	// enforced at the boundary via ParseRole.
	Role string

	// Status is the lifecycle state of a claim. Pending is the sole
	// initial state; approved and rejected are terminal.
	Status string

	// Category is the spending category of a claim.
	Category string

	// Principal is the authenticated actor supplied by the upstream
	// authentication collaborator. The core trusts it and carries it
	// explicitly through every call.
	Principal struct {
		Username string
		Role     Role
	}

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single submitted claim. ID is assigned by the store;
	// Owner is set once at creation and never reassigned.
	Expense struct {
		ID          int64
		Owner       string
		Amount      Money
		Category    Category
		Date        Date
		Description string
		ReceiptRef  string // optional
		Status      Status
	}
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(s)) {
	case RoleEmployee:
		return RoleEmployee, nil
	case RoleFinanceManager:
		return RoleFinanceManager, nil
	}
	return "", ErrUnknownRole
}

func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	}
	return "", ErrUnknownStatus
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func ParseCategory(s string) (Category, error) {
	switch Category(strings.TrimSpace(s)) {
	case CategoryTravel:
		return CategoryTravel, nil
	case CategoryMeals:
		return CategoryMeals, nil
	case CategorySupplies:
		return CategorySupplies, nil
	case CategoryOther:
		return CategoryOther, nil
	}
	return "", ErrUnknownCategory
}

// Categories returns the closed category set, in presentation order.
func Categories() []Category {
	return []Category{CategoryTravel, CategoryMeals, CategorySupplies, CategoryOther}
}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// SameMonth reports whether d falls in the given calendar year+month.
func (d Date) SameMonth(year int, month time.Month) bool {
	y, m, _ := d.Date()
	return y == year && m == month
}

// Validate checks the Create preconditions on a claim. The store calls
// it before persisting; callers may use it for early form validation.
func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	return nil
}
