// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

// Package export reads myfaveTT export bundles.
//
// A bundle keeps its metadata in data/.appdata as JavaScript files that
// assign a String.raw template literal holding JSON, plus one plain JSON file
// (facts.json). Media lives under data/Likes, data/Favorites and
// data/Following/<authorId>, each with videos/ and covers/ subdirectories.
//
// Reader decodes the metadata into a Snapshot. Resolver finds media files on
// disk for a given id and classification.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"

	"github.com/tomtom215/favefeed/internal/models"
	"github.com/tomtom215/favefeed/internal/validation"
)

// Snapshot is one decoded read of an export bundle. It is never mutated
// after Read returns.
type Snapshot struct {
	Root    string
	Owner   Owner
	Videos  map[string]VideoRecord
	Authors map[string]AuthorRecord
	Texts   map[string]string

	Liked     IDSet
	Favorites IDSet
	Following IDSet

	// Facts is kept verbatim.
	Facts json.RawMessage
}

// VideoIDs returns all video ids in lexical order.
func (s *Snapshot) VideoIDs() []string {
	return sortedKeys(s.Videos)
}

// AuthorIDs returns all author ids in lexical order.
func (s *Snapshot) AuthorIDs() []string {
	return sortedKeys(s.Authors)
}

// Description returns the text for a video, or nil when there is none.
func (s *Snapshot) Description(videoID string) *string {
	text, ok := s.Texts[videoID]
	if !ok || text == "" {
		return nil
	}
	return &text
}

// Classify returns the flags of a video from the snapshot's category lists.
func (s *Snapshot) Classify(videoID, authorID string) models.Classification {
	return models.Classification{
		Liked:     s.Liked.Has(videoID),
		Favorite:  s.Favorites.Has(videoID),
		Following: s.Following.Has(authorID),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reader decodes the metadata files of one export bundle.
type Reader struct {
	root string
}

// NewReader creates a reader for the bundle at root.
func NewReader(root string) *Reader {
	return &Reader{root: filepath.Clean(root)}
}

// Root returns the bundle root.
func (r *Reader) Root() string {
	return r.root
}

// Read decodes every metadata file. A missing file is returned as the
// underlying *fs.PathError; decoding and shape failures are *ParseError.
func (r *Reader) Read(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Root: r.root}

	var likes likesFile
	var bookmarked bookmarkedFile
	var following followingFile

	steps := []struct {
		name string
		into any
	}{
		{VideosFile, &snap.Videos},
		{AuthorsFile, &snap.Authors},
		{TextsFile, &snap.Texts},
		{LikesFile, &likes},
		{BookmarkedFile, &bookmarked},
		{FollowingFile, &following},
		{FactsFile, &snap.Facts},
	}

	dir := AppDataPath(r.root)
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(filepath.Join(dir, step.name))
		if err != nil {
			return nil, fmt.Errorf("read export file: %w", err)
		}
		if err := decode(step.name, content, step.into); err != nil {
			return nil, err
		}
	}

	if err := validateSnapshot(snap, &likes); err != nil {
		return nil, err
	}

	snap.Owner = likes.User
	snap.Liked = NewIDSet(likes.Likes.Downloaded)
	snap.Favorites = NewIDSet(bookmarked.Downloaded)
	snap.Following = NewIDSet(following.Started)

	if snap.Videos == nil {
		snap.Videos = map[string]VideoRecord{}
	}
	if snap.Authors == nil {
		snap.Authors = map[string]AuthorRecord{}
	}
	if snap.Texts == nil {
		snap.Texts = map[string]string{}
	}

	return snap, nil
}

// validateSnapshot checks every decoded record against its schema.
func validateSnapshot(snap *Snapshot, likes *likesFile) error {
	if err := validation.ValidateStruct(likes); err != nil {
		return &ParseError{File: LikesFile, Err: fmt.Errorf("%w: %w", ErrSchema, err)}
	}

	for _, id := range snap.VideoIDs() {
		rec := snap.Videos[id]
		if err := validation.ValidateStruct(&rec); err != nil {
			return &ParseError{File: VideosFile, Record: id, Err: fmt.Errorf("%w: %w", ErrSchema, err)}
		}
	}

	for _, id := range snap.AuthorIDs() {
		rec := snap.Authors[id]
		if err := validation.ValidateStruct(&rec); err != nil {
			return &ParseError{File: AuthorsFile, Record: id, Err: fmt.Errorf("%w: %w", ErrSchema, err)}
		}
	}

	return nil
}
