// Package xkcd provides an HTTP client for xkcd.com.
//
// # Overview
//
// The client reads three kinds of resources:
//
//   - GET /archive/: HTML page listing every comic; anchors under
//     #middleContainer carry the number in their href ("/207/") and the
//     title as their text
//   - GET /N/info.0.json and GET /info.0.json: JSON metadata of one comic or
//     of the latest one (num, title, safe_title, img, alt, ...)
//   - the image URL taken from the metadata's img field
//
// The archive page does not carry image URLs, so entries parsed from it only
// have an id and a title. Metadata is fetched separately once a comic has
// been chosen.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Set an Accept header matching the resource
//   - Include User-Agent: xkcdterm/0.1
//   - Time out after 10 seconds for metadata and 30 seconds otherwise
//
// # Error Handling
//
// Every network, HTTP status and decoding failure is returned as a
// *comic.FetchError carrying the URL and, for HTTP failures, the status
// code. The only exception is a 404 on single-comic metadata, which is
// reported as comic.ErrNotFound. There are no retries.
//
// # URL Construction
//
// NewClient accepts a base URL with or without scheme; "https://" is
// assumed when it is missing. Relative and protocol-relative image URLs are
// resolved against it, which keeps the client usable against an
// httptest.Server in tests.
package xkcd
