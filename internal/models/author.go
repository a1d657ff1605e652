// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package models

import "time"

// Author is a persisted author row.
//
// UniqueID and Nickname are the first entries of their history lists, or
// placeholders when the export has no history for the author.
type Author struct {
	ID        string   `json:"id"`
	UniqueID  string   `json:"unique_id"`
	UniqueIDs []string `json:"unique_ids"`
	Nickname  string   `json:"nickname"`
	Nicknames []string `json:"nicknames"`

	FollowerCount *int64 `json:"follower_count,omitempty"`
	// HeartCount routinely exceeds 2^53 and must stay a 64-bit integer end to end.
	HeartCount *int64  `json:"heart_count,omitempty,string"`
	VideoCount *int64  `json:"video_count,omitempty"`
	Signature  *string `json:"signature,omitempty"`
	AvatarPath *string `json:"avatar_path,omitempty"`

	IsPrivate   bool `json:"is_private"`
	IsFollowing bool `json:"is_following"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceholderUniqueID is the handle given to an author without history.
func PlaceholderUniqueID(authorID string) string {
	return "user_" + authorID
}

// PlaceholderNickname is the display name given to an author without history.
func PlaceholderNickname(authorID string) string {
	return "User " + authorID
}

// NewPlaceholderAuthor returns an author known only by id.
func NewPlaceholderAuthor(authorID string, following bool) *Author {
	return &Author{
		ID:          authorID,
		UniqueID:    PlaceholderUniqueID(authorID),
		UniqueIDs:   []string{},
		Nickname:    PlaceholderNickname(authorID),
		Nicknames:   []string{},
		IsFollowing: following,
	}
}
