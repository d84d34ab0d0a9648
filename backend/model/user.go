package model

import (
	"errors"

	"derma-detect/backend/common"

	"github.com/burugo/thing"
)

// Role constants
const (
	RoleCommonUser = 1
	RoleAdminUser  = 10
)

// Status constants
const (
	UserStatusEnabled  = 1
	UserStatusDisabled = 2
)

// User is an authenticated account owning zero or more image records.
// Password holds a bcrypt hash and is never serialized.
type User struct {
	thing.BaseModel
	Email       string `db:"email,index" json:"email"`
	Password    string `db:"password" json:"-"`
	DisplayName string `db:"display_name" json:"display_name"`
	Role        int    `db:"role" json:"role"`
	Status      int    `db:"status" json:"status"`
}

func (u *User) TableName() string {
	return "users"
}

var UserDB *thing.Thing[*User]

func UserInit() error {
	var err error
	UserDB, err = thing.Use[*User]()
	return err
}

func GetUserById(id int64) (*User, error) {
	if id == 0 {
		return nil, errors.New("user id is empty")
	}
	return UserDB.ByID(id)
}

func IsEmailAlreadyTaken(email string) bool {
	users, err := UserDB.Where("email = ?", email).Fetch(0, 1)
	return err == nil && len(users) > 0
}

func (user *User) Insert() error {
	if user.Password != "" {
		hashedPassword, err := common.Password2Hash(user.Password)
		if err != nil {
			return err
		}
		user.Password = hashedPassword
	}
	return UserDB.Save(user)
}

func (user *User) Update(updatePassword bool) error {
	if updatePassword {
		hashedPassword, err := common.Password2Hash(user.Password)
		if err != nil {
			return err
		}
		user.Password = hashedPassword
	}
	return UserDB.Save(user)
}

// ValidateAndFill checks the email/password pair and fills the struct from
// the matching enabled account. The error message never reveals which part
// failed.
func (user *User) ValidateAndFill() error {
	if user.Email == "" || user.Password == "" {
		return errors.New("email or password is empty")
	}
	users, err := UserDB.Where("email = ?", user.Email).Fetch(0, 1)
	if err != nil || len(users) == 0 {
		return errors.New("invalid email or password, or the account is disabled")
	}
	found := users[0]
	if !common.ValidatePasswordAndHash(user.Password, found.Password) || found.Status != UserStatusEnabled {
		return errors.New("invalid email or password, or the account is disabled")
	}
	*user = *found
	return nil
}

func (user *User) FillUserByEmail() error {
	if user.Email == "" {
		return errors.New("email is empty")
	}
	users, err := UserDB.Where("email = ?", user.Email).Fetch(0, 1)
	if err != nil || len(users) == 0 {
		return errors.New("user not found")
	}
	*user = *users[0]
	return nil
}
