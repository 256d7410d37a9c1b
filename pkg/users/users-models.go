package users

import (
	"strings"

	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"time"
)

var nicknameRules = []validation.Rule{validation.Required, validation.Length(2, 24)}

// Profile is the public shape of a user, as seen by other users.
type Profile struct {
	Id          int64       `json:"userId"`
	Nickname    string      `json:"nickname"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastLoginAt ntime.NTime `json:"lastLoginAt"`
}

type UpdateNicknameData struct {
	Nickname string `json:"nickname"`
}

func (data UpdateNicknameData) Validate() error {
	return validation.ValidateStruct(&data, validation.Field(&data.Nickname, nicknameRules...))
}

type UpdatePasswordData struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (data UpdatePasswordData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.CurrentPassword, validation.Required),
		validation.Field(&data.NewPassword, validation.Required, validation.Length(8, 64)),
	)
}

// NormaliseName lowers the case of a display name and strips all of its
// whitespace, enabling case and spacing insensitive artist lookups.
func NormaliseName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}
