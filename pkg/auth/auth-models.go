package auth

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"time"
)

var passwordRules = []validation.Rule{validation.Required, validation.Length(8, 64)}
var nicknameRules = []validation.Rule{validation.Required, validation.Length(2, 24)}

// User is the public shape of an account, stripped of credentials.
type User struct {
	Id        int64     `json:"userId"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"createdAt"`
}

type RegistrationData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

func (data RegistrationData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Email, validation.Required, is.Email),
		validation.Field(&data.Password, passwordRules...),
		validation.Field(&data.Nickname, nicknameRules...),
	)
}

type LoginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (data LoginData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Email, validation.Required, is.Email),
		validation.Field(&data.Password, passwordRules...),
	)
}

// SessionData carries a freshly signed bearer token along with its owner.
type SessionData struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
