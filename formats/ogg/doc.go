// SPDX-License-Identifier: EPL-2.0

// Package ogg reads and writes Ogg pages (RFC 3533).
//
// Only a single logical bitstream is handled. The Writer emits one page per
// packet, splitting packets that do not fit the 255 entry lacing table
// across continuation pages. The Reader verifies capture patterns and page
// checksums and reassembles packets that span pages.
package ogg
