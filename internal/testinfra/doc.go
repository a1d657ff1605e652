// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

// Package testinfra builds export bundles on disk for tests.
//
// A Bundle mirrors the layout written by the export tool: metadata files as
// String.raw assignments in data/.appdata and media files under the category
// directories.
//
//	func TestSomething(t *testing.T) {
//	    b := testinfra.NewBundle(t)
//	    b.AddAuthor("a1", testinfra.AuthorFixture{UniqueIDs: []string{"alice"}})
//	    b.AddVideo("v1", testinfra.VideoFixture{AuthorID: "a1", CreateTime: 1700000000})
//	    b.Like("v1")
//	    b.Touch("Likes", "videos", "v1.mp4")
//	    b.Write()
//
//	    snap, err := export.NewReader(b.Root).Read(ctx)
//	    // ...
//	}
package testinfra
