package usercache

import (
	"strconv"
	"time"

	"evhub/backend/services/admin-console/internal/models"
)

// Record is a cached user row. ID is the local identifier; RemoteID is the
// backend identifier when the row came from the API.
type Record struct {
	ID        int64       `json:"localId"`
	RemoteID  string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	NIC       string      `json:"nic"`
	Role      models.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FromUser converts an API user into a record that has not been stored yet.
func FromUser(u models.User) Record {
	return Record{
		RemoteID: u.ID,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		NIC:      u.NIC,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// User converts the record back to the API shape.
func (r Record) User() models.User {
	id := r.RemoteID
	if id == "" {
		id = strconv.FormatInt(r.ID, 10)
	}
	return models.User{
		ID:        id,
		Username:  r.Username,
		Email:     r.Email,
		Phone:     r.Phone,
		NIC:       r.NIC,
		Role:      r.Role,
		IsActive:  r.IsActive,
		CreatedAt: models.NewTimestamp(r.CreatedAt),
		UpdatedAt: models.NewTimestamp(r.UpdatedAt),
	}
}

// Patch lists the fields to merge into a record. Nil fields are kept.
type Patch struct {
	RemoteID *string
	Username *string
	Email    *string
	Phone    *string
	NIC      *string
	Role     *models.Role
	IsActive *bool
}

func (p Patch) apply(r Record) Record {
	if p.RemoteID != nil {
		r.RemoteID = *p.RemoteID
	}
	if p.Username != nil {
		r.Username = *p.Username
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.NIC != nil {
		r.NIC = *p.NIC
	}
	if p.Role != nil {
		r.Role = *p.Role
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
	return r
}
