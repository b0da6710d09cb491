package models

const (
	RoleAdmin   = "ADMIN"
	RoleWaiter  = "WAITER"
	RoleKitchen = "KITCHEN"
	RoleCashier = "CASHIER"
)

// User is a staff account. PasswordHash never leaves the server.
type User struct {
	Base
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	Role         string `json:"user_role" validate:"required,oneof=ADMIN WAITER KITCHEN CASHIER"`
	PasswordHash string `json:"-"`
}
