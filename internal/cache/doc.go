// Package cache keeps the comic index on disk.
//
// # Overview
//
// Store is the single owner of the cache file. The file is JSON:
//
//	{"last_updated": "2026-10-18 09:30:00.000000", "comics": [{"id": 3000, "href": "/3000/", "title": "..."}, ...]}
//
// The timestamp is naive UTC and each comic carries exactly id, href and
// title, so the file can be shared with other xkcd-cli installs using the
// same cache directory. RFC 3339 timestamps are accepted on read.
//
// Comics keep the archive order, newest first. The index is fresh while it
// is younger than the TTL (24 hours unless configured).
//
// # Get
//
//   - fresh and allowed: returned without network access
//   - stale, missing or corrupt: exactly one archive fetch, then saved
//   - fetch failed but a readable stale copy exists: stale copy returned
//     with a warning logged
//   - allowCache false: always one fetch
//
// # Writes
//
// Save writes a temp file in the cache directory and renames it over the
// old one, so readers never see a partial file. There is no locking; two
// refreshes at the same time both succeed and the last rename wins.
package cache
