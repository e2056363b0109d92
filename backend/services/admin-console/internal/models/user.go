package models

// Role is the platform role of a user account.
type Role string

const (
	RoleCustomer   Role = "Customer"
	RoleBackoffice Role = "Backoffice"
)

// Roles lists assignable roles.
var Roles = []Role{RoleCustomer, RoleBackoffice}

// User mirrors the /users resource.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	NIC       string    `json:"nic"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// UserInput is the create/update payload of the user form.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	NIC      string `json:"nic,omitempty"`
	Role     Role   `json:"role"`
}

// Record returns the input as a field map for schema validation.
func (in UserInput) Record() map[string]any {
	return map[string]any{
		"username": in.Username,
		"email":    in.Email,
		"phone":    in.Phone,
		"nic":      in.NIC,
		"role":     string(in.Role),
	}
}

// RegisterInput is the self-registration form. ConfirmPassword never leaves the console.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	NIC             string `json:"nic"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	Role            Role   `json:"role"`
}

// Record returns the input as a field map for schema validation.
func (in RegisterInput) Record() map[string]any {
	return map[string]any{
		"username": in.Username,
		"email":    in.Email,
		"phone":    in.Phone,
		"nic":      in.NIC,
		"password": in.Password,
		"role":     string(in.Role),
	}
}

// AuthResult is the body of /auth/login and /auth/register.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
