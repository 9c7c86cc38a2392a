// Package ogg packages Opus audio packets into an Ogg container.
//
// The writer produces the standard Opus-in-Ogg layout: an OpusHead
// identification header on a beginning-of-stream page, an OpusTags comment
// header on the second page, one data page per audio packet, and a final
// empty end-of-stream page. Granule positions are derived from each
// packet's TOC byte so standard players can seek and report duration.
//
// The reader side walks an existing stream page by page, verifying the
// capture pattern and page checksums, and is used for post-capture
// validation of recorded files.
package ogg
