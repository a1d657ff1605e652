// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package models

import "time"

// Video is a persisted video row. ID equals the export video id.
//
// IsLiked, IsFavorite and IsFollowing are independent; a video can be liked
// and belong to a followed author at the same time. IsHidden is owned by the
// viewer and is never written by ingestion.
type Video struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Description *string   `json:"description,omitempty"`
	CreateTime  time.Time `json:"create_time"`
	DiggCount   *int64    `json:"digg_count,omitempty"`
	PlayCount   *int64    `json:"play_count,omitempty"`
	AudioID     *string   `json:"audio_id,omitempty"`
	Size        *string   `json:"size,omitempty"`

	// VideoPath and CoverPath are relative to the export root.
	VideoPath string  `json:"video_path"`
	CoverPath *string `json:"cover_path,omitempty"`

	IsLiked     bool `json:"is_liked"`
	IsFavorite  bool `json:"is_favorite"`
	IsFollowing bool `json:"is_following"`
	IsHidden    bool `json:"is_hidden"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Classification holds the three category flags of a video.
type Classification struct {
	Liked     bool
	Favorite  bool
	Following bool
}

// Merge returns the OR of c and other. A flag that is set in either stays set.
func (c Classification) Merge(other Classification) Classification {
	return Classification{
		Liked:     c.Liked || other.Liked,
		Favorite:  c.Favorite || other.Favorite,
		Following: c.Following || other.Following,
	}
}

// Classification returns the video's current flags.
func (v *Video) Classification() Classification {
	return Classification{Liked: v.IsLiked, Favorite: v.IsFavorite, Following: v.IsFollowing}
}

// SetClassification overwrites the video's flags.
func (v *Video) SetClassification(c Classification) {
	v.IsLiked = c.Liked
	v.IsFavorite = c.Favorite
	v.IsFollowing = c.Following
}
