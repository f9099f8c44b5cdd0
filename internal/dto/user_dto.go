package dto

import "github.com/gramseva/admin-backend/internal/models"

type RegisterUserRequest struct {
	FirstName                     string      `json:"first_name"`
	LastName                      string      `json:"last_name"`
	Email                         string      `json:"email"`
	PhoneNumber                   string      `json:"phone_number"`
	Password                      string      `json:"password"`
	Role                          models.Role `json:"role"`
	IsActive                      *bool       `json:"is_active,omitempty"`
	IsVerified                    *bool       `json:"is_verified,omitempty"`
	ProfilePictureURL             string      `json:"profile_picture_url"`
	AssociatedAdministrativeUnits []string    `json:"associated_administrative_units"`
}

// UpdateUserRequest is the administrative update; every field optional,
// omitted fields untouched.
type UpdateUserRequest struct {
	FirstName                     *string      `json:"first_name,omitempty"`
	LastName                      *string      `json:"last_name,omitempty"`
	Email                         *string      `json:"email,omitempty"`
	PhoneNumber                   *string      `json:"phone_number,omitempty"`
	Password                      *string      `json:"password,omitempty"`
	Role                          *models.Role `json:"role,omitempty"`
	IsActive                      *bool        `json:"is_active,omitempty"`
	IsVerified                    *bool        `json:"is_verified,omitempty"`
	ProfilePictureURL             *string      `json:"profile_picture_url,omitempty"`
	AssociatedAdministrativeUnits *[]string    `json:"associated_administrative_units,omitempty"`
}

// UpdateProfileRequest is the self-service update; identity fields (email,
// role, status) are deliberately absent.
type UpdateProfileRequest struct {
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`
	PhoneNumber       *string `json:"phone_number,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

type SetStatusRequest struct {
	IsActive bool `json:"is_active"`
}

type SetRoleRequest struct {
	Role models.Role `json:"role"`
}
