package account

import (
	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	Name     string   `json:"name" sql:"type:VARCHAR(128) NOT NULL;unique_index:uni_name"`
	Nickname string   `json:"nickname"`
	Secret   string   `json:"-"`
	Role     string   `json:"role" sql:"type:VARCHAR(32) NOT NULL"`
}

func (u *User) TableName() string {
	return "users"
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Role     string   `json:"role"`
}

func (u *UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

type UserCreation struct {
	Name     string `json:"name" validate:"required"`
	Nickname string `json:"nickname"`
	Secret   string `json:"secret" validate:"required,gte=6"`
	Role     string `json:"role" validate:"required,oneof=editor admin"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret" validate:"required"`
	NewSecret      string `json:"newSecret" validate:"required,gte=6"`
}
