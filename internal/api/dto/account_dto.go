package dto

import (
	"time"

	"github.com/elvificent/supportdesk/internal/domain"
)

// ManagerCreateRequest payload for provisioning a manager.
type ManagerCreateRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Category string `json:"category" validate:"required,oneof=MODEL_S MODEL_3 MODEL_X MODEL_Y CYBERTRUCK"`
}

// ManagerUpdateRequest payload.
type ManagerUpdateRequest struct {
	Category string `json:"category" validate:"required,oneof=MODEL_S MODEL_3 MODEL_X MODEL_Y CYBERTRUCK"`
}

// CustomerTierRequest payload for tier changes.
type CustomerTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=STANDARD PREMIUM VIP"`
}

// CustomerResponse is the wire shape of a customer.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCustomerResponse maps a domain customer.
func NewCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Tier:      string(c.Tier),
		CreatedAt: c.CreatedAt,
	}
}

// NewCustomerListResponse maps a slice of customers.
func NewCustomerListResponse(customers []domain.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, NewCustomerResponse(&customers[i]))
	}
	return out
}

// ManagerResponse is the wire shape of a manager.
type ManagerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// NewManagerResponse maps a domain manager.
func NewManagerResponse(m *domain.Manager) ManagerResponse {
	return ManagerResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Category:  string(m.Category),
		CreatedAt: m.CreatedAt,
	}
}

// NewManagerListResponse maps a slice of managers.
func NewManagerListResponse(managers []domain.Manager) []ManagerResponse {
	out := make([]ManagerResponse, 0, len(managers))
	for i := range managers {
		out = append(out, NewManagerResponse(&managers[i]))
	}
	return out
}

// UserResponse is the wire shape of an identity record. The password hash
// never leaves the service.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// NewUserListResponse maps a slice of users.
func NewUserListResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
