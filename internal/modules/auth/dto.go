package auth

type RegisterRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required,min=8"`
	Name     string `json:"name" binding:"required" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required,oneof=client provider"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
