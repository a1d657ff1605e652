// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package export

import "sort"

// VideoRecord is one entry of db_videos.js, keyed by video id.
type VideoRecord struct {
	AuthorID   string `json:"authorId" validate:"required"`
	CreateTime Count  `json:"createTime" validate:"gte=0"`
	DiggCount  *Count `json:"diggCount,omitempty" validate:"omitempty,gte=0"`
	PlayCount  *Count `json:"playCount,omitempty" validate:"omitempty,gte=0"`
	AudioID    *Text  `json:"audioId,omitempty"`
	Size       *Text  `json:"size,omitempty"`
}

// AuthorRecord is one entry of db_authors.js, keyed by author id.
// History lists are most recent first.
type AuthorRecord struct {
	UniqueIDs      []string `json:"uniqueIds,omitempty"`
	Nicknames      []string `json:"nicknames,omitempty"`
	FollowerCount  *Count   `json:"followerCount,omitempty" validate:"omitempty,gte=0"`
	HeartCount     *Count   `json:"heartCount,omitempty" validate:"omitempty,gte=0"`
	VideoCount     *Count   `json:"videoCount,omitempty" validate:"omitempty,gte=0"`
	Signature      *string  `json:"signature,omitempty"`
	PrivateAccount *bool    `json:"privateAccount,omitempty"`
}

// CurrentUniqueID returns the most recent handle, or "".
func (a *AuthorRecord) CurrentUniqueID() string {
	return firstNonEmpty(a.UniqueIDs)
}

// CurrentNickname returns the most recent display name, or "".
func (a *AuthorRecord) CurrentNickname() string {
	return firstNonEmpty(a.Nicknames)
}

func firstNonEmpty(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// Owner identifies the account the export was taken from.
type Owner struct {
	UID      string `json:"uid"`
	ID       string `json:"id"`
	UniqueID string `json:"uniqueId"`
	Nickname string `json:"nickname"`
}

type likesFile struct {
	SchemaVersion Text  `json:"schemaVersion"`
	User          Owner `json:"user"`
	Likes         *struct {
		Downloaded []string `json:"downloaded"`
	} `json:"likes" validate:"required"`
}

type bookmarkedFile struct {
	Downloaded []string `json:"downloaded"`
}

type followingFile struct {
	Started []string `json:"started"`
}

// IDSet is a set of export ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from a list, ignoring duplicates.
func NewIDSet(ids []string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
