package playlists

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var nameRules = []validation.Rule{
	validation.Required,
	validation.By(func(value interface{}) error {
		if name, ok := value.(string); ok && strings.TrimSpace(name) == "" {
			return validation.NewError("validation_blank_name", "name can't be blank")
		}
		return nil
	}),
	validation.Length(1, 100),
}

// PlaylistSummary annotates a playlist row with the counts and viewer state
// the UI renders in lists: track count, follower count and whether the
// requesting viewer follows it.
type PlaylistSummary struct {
	PlaylistId    int64     `json:"playlistId"`
	Name          string    `json:"name"`
	OwnerId       int64     `json:"ownerId"`
	OwnerNickname string    `json:"ownerNickname"`
	IsPublic      bool      `json:"isPublic"`
	Note          string    `json:"note"`
	TrackCount    int       `json:"trackCount"`
	FollowerCount int       `json:"followerCount"`
	IsFollowed    bool      `json:"isFollowed"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type PlaylistItemEntry struct {
	ItemId   int64     `json:"itemId"`
	SongId   int64     `json:"songId"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Album    string    `json:"album"`
	Position int       `json:"position"`
	Note     string    `json:"note"`
	AddedAt  time.Time `json:"addedAt"`
}

type PlaylistDetail struct {
	PlaylistSummary
	Items []PlaylistItemEntry `json:"items"`
}

type NewPlaylistData struct {
	Name     string `json:"name"`
	IsPublic *bool  `json:"isPublic"`
	Note     string `json:"note"`
}

func (data NewPlaylistData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Name, nameRules...),
		validation.Field(&data.Note, validation.Length(0, 500)),
	)
}

// Public reports the playlist's visibility, which defaults to public when the
// request omits the flag.
func (data NewPlaylistData) Public() bool {
	return data.IsPublic == nil || *data.IsPublic
}

type UpdatePlaylistData struct {
	Name     string  `json:"name"`
	IsPublic *bool   `json:"isPublic"`
	Note     *string `json:"note"`
}

func (data UpdatePlaylistData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Name, nameRules...),
		validation.Field(&data.Note, validation.Length(0, 500)),
	)
}

type NewItemData struct {
	SongId int64  `json:"songId"`
	Note   string `json:"note"`
}

func (data NewItemData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.SongId, validation.Required),
		validation.Field(&data.Note, validation.Length(0, 500)),
	)
}

type ToggleFollowResponse struct {
	Followed bool `json:"followed"`
}
