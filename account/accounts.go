package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"

	"orderhub/authority"
	"orderhub/bizerror"
	"orderhub/idgen"
	"orderhub/persistence"
	"orderhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc = CreateUser
	QueryUsersFunc = QueryUsers
	LoadPermsFunc  = LoadPerms
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// LoadPerms maps the persisted role of a user into session permissions.
func LoadPerms(userId types.ID) authority.Permissions {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Where(&User{ID: userId}).First(&user).Error; err != nil {
		return authority.Permissions{}
	}
	return authority.Permissions{user.Role}
}

func CreateUser(c *UserCreation, sec *session.Context) (*UserInfo, error) {
	if !sec.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname,
		Secret: HashSha256(c.Secret), Role: c.Role}
	if err := persistence.ActiveDataSourceManager.GormDB().Save(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Role: user.Role}, nil
}

func QueryUsers(sec *session.Context) (*[]UserInfo, error) {
	if !sec.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	var users []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB().Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, sec *session.Context) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: sec.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).Scan(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	return db.Model(&User{}).Where(&User{ID: sec.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Update(&User{Secret: HashSha256(u.NewSecret)}).Error
}

func QueryAccountNames(ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB()
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}

// BootstrapAdmin creates the builtin admin account on an empty users table.
// ADMIN_SECRET must be set for the first boot, later boots ignore it.
func BootstrapAdmin() error {
	db := persistence.ActiveDataSourceManager.GormDB()
	count := 0
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	secret := os.Getenv("ADMIN_SECRET")
	if secret == "" {
		return errors.New("environment variable ADMIN_SECRET is required to bootstrap the admin account")
	}
	admin := User{ID: idgen.NextID(userIdWorker), Name: "admin", Nickname: "Administrator",
		Secret: HashSha256(secret), Role: authority.RoleAdmin}
	return db.Save(&admin).Error
}
