// Package native estimates the native resolution of upscaled frames.
//
// A run scans a range of candidate heights: every sampled frame is descaled
// to each candidate, scaled back up and compared with the original. The
// per-frame error curves are averaged and the sharpest drops in error
// ("ratio peaks") mark likely native heights. Between height scans the
// aspect ratio is refined by minimizing the error over a window of widths at
// the best height. A final height scan at the refined aspect ratio produces
// the reported Result.
//
// Evaluations are issued to an Oracle with bounded concurrency; the error
// curve is assembled by candidate index so completion order never matters.
package native
