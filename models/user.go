package models

import "gorm.io/gorm"

const (
	RoleMember = "Member"
	RoleAdmin  = "Admin"
)

type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:256;not null"`
	UserName     string `gorm:"size:256;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"size:32;not null"`
	AddressID    *uint
	Address      *Address `gorm:"constraint:OnDelete:SET NULL"`
	LoginTokens  []LoginToken
}
