// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package testinfra

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
)

// VideoFixture is the db_videos.js entry of one video.
type VideoFixture struct {
	AuthorID   string `json:"authorId"`
	CreateTime int64  `json:"createTime"`
	DiggCount  *int64 `json:"diggCount,omitempty"`
	PlayCount  *int64 `json:"playCount,omitempty"`
	AudioID    string `json:"audioId,omitempty"`
	Size       string `json:"size,omitempty"`
}

// AuthorFixture is the db_authors.js entry of one author.
type AuthorFixture struct {
	UniqueIDs      []string `json:"uniqueIds,omitempty"`
	Nicknames      []string `json:"nicknames,omitempty"`
	FollowerCount  *int64   `json:"followerCount,omitempty"`
	HeartCount     *int64   `json:"heartCount,omitempty"`
	VideoCount     *int64   `json:"videoCount,omitempty"`
	Signature      string   `json:"signature,omitempty"`
	PrivateAccount *bool    `json:"privateAccount,omitempty"`
}

// Bundle is an export bundle rooted in a test temp directory.
type Bundle struct {
	Root string

	t         testing.TB
	videos    map[string]VideoFixture
	authors   map[string]AuthorFixture
	texts     map[string]string
	liked     []string
	bookmarks []string
	following []string
	owner     string
}

// BundleOption configures a Bundle.
type BundleOption func(*Bundle)

// WithOwner sets the handle recorded in db_likes.js.
func WithOwner(uniqueID string) BundleOption {
	return func(b *Bundle) {
		b.owner = uniqueID
	}
}

// WithRoot places the bundle in an existing directory instead of a new
// temp directory.
func WithRoot(root string) BundleOption {
	return func(b *Bundle) {
		b.Root = root
	}
}

// NewBundle creates an empty bundle with its directory skeleton.
func NewBundle(t testing.TB, opts ...BundleOption) *Bundle {
	t.Helper()

	b := &Bundle{
		t:       t,
		videos:  map[string]VideoFixture{},
		authors: map[string]AuthorFixture{},
		texts:   map[string]string{},
		owner:   "archivist",
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.Root == "" {
		b.Root = t.TempDir()
	}

	for _, dir := range []string{
		filepath.Join(b.Root, "data", ".appdata"),
		filepath.Join(b.Root, "data", "Likes", "videos"),
		filepath.Join(b.Root, "data", "Favorites", "videos"),
		filepath.Join(b.Root, "data", "Following", "Avatars"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create bundle dir: %v", err)
		}
	}
	return b
}

// AddVideo records a video entry.
func (b *Bundle) AddVideo(id string, v VideoFixture) *Bundle {
	b.videos[id] = v
	return b
}

// RemoveVideo drops a video entry.
func (b *Bundle) RemoveVideo(id string) *Bundle {
	delete(b.videos, id)
	return b
}

// AddAuthor records an author entry.
func (b *Bundle) AddAuthor(id string, a AuthorFixture) *Bundle {
	b.authors[id] = a
	return b
}

// SetText records a video description.
func (b *Bundle) SetText(videoID, text string) *Bundle {
	b.texts[videoID] = text
	return b
}

// Like marks videos as downloaded likes.
func (b *Bundle) Like(ids ...string) *Bundle {
	b.liked = append(b.liked, ids...)
	return b
}

// Bookmark marks videos as downloaded favorites.
func (b *Bundle) Bookmark(ids ...string) *Bundle {
	b.bookmarks = append(b.bookmarks, ids...)
	return b
}

// Follow marks authors as followed.
func (b *Bundle) Follow(authorIDs ...string) *Bundle {
	b.following = append(b.following, authorIDs...)
	return b
}

// Write serializes every metadata file. It can be called again after
// further changes.
func (b *Bundle) Write() *Bundle {
	b.t.Helper()

	likes := map[string]any{
		"schemaVersion": 3,
		"user": map[string]string{
			"uid":      "1",
			"id":       "1",
			"uniqueId": b.owner,
			"nickname": b.owner,
		},
		"likes": map[string]any{
			"downloadStatus": map[string]any{},
			"officialList":   b.liked,
			"downloaded":     nonNil(b.liked),
			"total":          len(b.liked),
			"numDisappeared": 0,
		},
	}
	bookmarked := map[string]any{
		"officialList":   b.bookmarks,
		"downloaded":     nonNil(b.bookmarks),
		"total":          len(b.bookmarks),
		"numDisappeared": 0,
	}
	following := map[string]any{
		"officialAuthorList": b.following,
		"started":            nonNil(b.following),
		"notInterested":      []string{},
	}

	b.WriteRaw("db_videos.js", wrap("videos", b.marshal(b.videos)))
	b.WriteRaw("db_authors.js", wrap("authors", b.marshal(b.authors)))
	b.WriteRaw("db_texts.js", wrap("texts", b.marshal(b.texts)))
	b.WriteRaw("db_likes.js", wrap("likes", b.marshal(likes)))
	b.WriteRaw("db_bookmarked.js", wrap("bookmarked", b.marshal(bookmarked)))
	b.WriteRaw("db_following.js", wrap("following", b.marshal(following)))
	b.WriteRaw("facts.json", b.marshal(map[string]any{"exportedBy": "myfaveTT", "version": "4.2"}))
	return b
}

// WriteRaw writes content verbatim to data/.appdata/<name>.
func (b *Bundle) WriteRaw(name string, content []byte) {
	b.t.Helper()
	if err := os.WriteFile(filepath.Join(b.Root, "data", ".appdata", name), content, 0o644); err != nil {
		b.t.Fatalf("write %s: %v", name, err)
	}
}

// Touch creates an empty media file at data/<parts...> and returns its
// absolute path.
func (b *Bundle) Touch(parts ...string) string {
	b.t.Helper()
	return b.WriteMedia([]byte{}, parts...)
}

// WriteMedia writes a media file at data/<parts...> and returns its
// absolute path.
func (b *Bundle) WriteMedia(content []byte, parts ...string) string {
	b.t.Helper()
	path := filepath.Join(append([]string{b.Root, "data"}, parts...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		b.t.Fatalf("create media dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		b.t.Fatalf("write media: %v", err)
	}
	return path
}

func (b *Bundle) marshal(v any) []byte {
	b.t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		b.t.Fatalf("marshal fixture: %v", err)
	}
	return data
}

// wrap renders payload the way the export tool writes its .js files.
func wrap(name string, payload []byte) []byte {
	return []byte(fmt.Sprintf("window.db_%s = String.raw`%s`;\n", name, payload))
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}
