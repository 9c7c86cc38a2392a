// Package rawdump implements a lossless intermediate capture format for
// Opus packets: a bare sequence of length-prefixed records, each carrying
// one packet payload and its arrival timestamp in wall-clock milliseconds.
//
// The Writer serializes all writes for one track through a single drain
// goroutine, so records land in enqueue order as whole, contiguous
// buffers no matter how bursty the producer is. The Reader walks a dump
// back sequentially, and Validate performs the cheap post-capture
// truncation check on a finished file.
package rawdump
