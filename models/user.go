package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/utils"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     *string   `gorm:"size:100;unique" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('admin','manager','employee');default:'employee'" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email"`
	Password string   `json:"password" binding:"required"`
	Role     UserRole `json:"role" binding:"required"`
	IsActive *bool    `json:"is_active"`
}

type SigninInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginInfo struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	if err := utils.ValidateUnique[User](ctx, "username", input.Username, 0); err != nil {
		return nil, fmt.Errorf("%w: username %q", ErrUniquenessViolation, input.Username)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	user := User{
		Username: input.Username,
		Name:     input.Name,
		Password: string(hashed),
		Role:     input.Role,
		IsActive: &isActive,
	}
	if input.Email != "" {
		user.Email = &input.Email
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

// Signin checks credentials and issues a JWT carrying id, username,
// display name and role.
func Signin(ctx context.Context, input *SigninInput) (*LoginInfo, error) {

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", input.Username).First(&user).Error; err != nil {
		return nil, errors.New("username or password is incorrect")
	}
	if user.IsActive == nil || !*user.IsActive {
		return nil, errors.New("user account is inactive")
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, errors.New("username or password is incorrect")
	}

	token, err := utils.JwtGenerate(user.ID, user.Username, user.Name, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token: token,
		Name:  user.Name,
		Role:  string(user.Role),
	}, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// usersWithStockAccess lists the users who receive low-stock alerts.
func usersWithStockAccess(ctx context.Context) ([]*User, error) {
	db := config.GetDB()
	var users []*User
	err := db.WithContext(ctx).
		Where("role IN ? AND is_active = ?", []UserRole{UserRoleAdmin, UserRoleManager}, true).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
