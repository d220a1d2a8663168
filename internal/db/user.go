package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned when a username/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User 是可以登录图片管理接口的管理员账号。
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
}

// EnsureUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
// 返回值表示本次是否创建了新账号。
func EnsureUser(gdb *gorm.DB, username, password string) (bool, error) {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return false, nil
	}

	if gdb == nil {
		return false, errors.New("database not initialized")
	}

	var existing User
	err := gdb.Where("username = ?", trimmedUser).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	if err := gdb.Create(&User{Username: trimmedUser, Password: string(hashed)}).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate looks up username and verifies password against the stored hash.
func Authenticate(gdb *gorm.DB, username, password string) (*User, error) {
	var user User
	if err := gdb.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
