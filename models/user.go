package models

// User is the single resource exposed by the API.
// Password is stored and returned as given; clients depend on it being echoed back.
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsActive bool   `json:"is_active"`
}

// Serialize projects the user into the field-name to value mapping sent over the wire.
func (u User) Serialize() map[string]any {
	return map[string]any{
		"id":        u.ID,
		"fullName":  u.FullName,
		"email":     u.Email,
		"password":  u.Password,
		"is_active": u.IsActive,
	}
}

// CreateUserRequest is the body of POST /user. Pointer fields let the
// validator tell an absent key apart from a zero value such as false or "".
type CreateUserRequest struct {
	FullName *string `json:"fullName" validate:"required"`
	Email    *string `json:"email" validate:"required"`
	Password *string `json:"password" validate:"required"`
	IsActive *bool   `json:"is_active" validate:"required"`
}

// ToUser builds a new, not yet persisted user. Call only after validation.
func (req CreateUserRequest) ToUser() User {
	return User{
		FullName: *req.FullName,
		Email:    *req.Email,
		Password: *req.Password,
		IsActive: *req.IsActive,
	}
}

// UpdateUserRequest is the body of PUT /user/{id}. A nil field is left untouched.
type UpdateUserRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
}

// Apply overwrites the fields of u that are present in the request.
func (req UpdateUserRequest) Apply(u *User) {
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Password != nil {
		u.Password = *req.Password
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
}
