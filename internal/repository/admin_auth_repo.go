package repository

import (
	"strings"
)

type Admin struct {
	Name         string
	Email        string
	PasswordHash string
}

type AdminAuthRepository interface {
	GetByEmail(email string) (*Admin, error)
}

// configAdminRepository serves the single admin account supplied through
// configuration. Emails compare case-insensitively.
type configAdminRepository struct {
	admin Admin
}

func NewConfigAdminRepository(name, email, passwordHash string) AdminAuthRepository {
	return &configAdminRepository{admin: Admin{Name: name, Email: email, PasswordHash: passwordHash}}
}

func (r *configAdminRepository) GetByEmail(email string) (*Admin, error) {
	if r.admin.Email == "" || r.admin.PasswordHash == "" {
		return nil, nil
	}
	if !strings.EqualFold(strings.TrimSpace(email), r.admin.Email) {
		return nil, nil
	}
	admin := r.admin
	return &admin, nil
}
