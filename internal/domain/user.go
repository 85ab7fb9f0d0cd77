package domain

import "time"

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	FullName     string    `json:"full_name" dynamodbav:"full_name"`
	Email        string    `json:"email" dynamodbav:"email"`
	Phone        *string   `json:"phone_number" dynamodbav:"phone_number"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Role         string    `json:"role" dynamodbav:"role"`
	Enable       int       `json:"enable" dynamodbav:"enable"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type RegisterRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone_number"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone_number"`
}
