package follows

import (
	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TargetType discriminates what a follow edge points at.
type TargetType string

const (
	TargetUser     TargetType = "user"
	TargetArtist   TargetType = "artist"
	TargetPlaylist TargetType = "playlist"
)

// resolvableTargets excludes playlists, which are followed by id through their
// own route rather than resolved from a typed name.
var resolvableTargets = []interface{}{TargetUser, TargetArtist}
var allTargets = []interface{}{TargetUser, TargetArtist, TargetPlaylist}

type FollowData struct {
	TargetInput string     `json:"targetInput"`
	TargetType  TargetType `json:"targetType"`
}

func (data FollowData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.TargetInput, validation.Required),
		validation.Field(&data.TargetType, validation.Required, validation.In(resolvableTargets...)),
	)
}

type UnfollowData struct {
	FollowingId int64      `json:"followingId"`
	TargetType  TargetType `json:"targetType"`
}

func (data UnfollowData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.FollowingId, validation.Required),
		validation.Field(&data.TargetType, validation.Required, validation.In(allTargets...)),
	)
}

// FollowEntry annotates an edge with the followed target's display name;
// OwnerId is populated for playlists only, so the UI can route to the owner.
type FollowEntry struct {
	FollowingId int64       `json:"followingId"`
	TargetType  TargetType  `json:"targetType"`
	TargetName  string      `json:"targetName"`
	OwnerId     *int64      `json:"ownerId,omitempty"`
	CreatedAt   ntime.NTime `json:"createdAt"`
}

type FollowListResponse struct {
	Count   int           `json:"count"`
	Follows []FollowEntry `json:"follows"`
}

type TargetMatch struct {
	Id   int64      `json:"id"`
	Name string     `json:"name"`
	Type TargetType `json:"type"`
}

type Candidate struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type RecommendationData struct {
	Users   []Candidate `json:"users"`
	Artists []Candidate `json:"artists"`
}
