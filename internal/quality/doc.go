// Package quality models the multi-component quality descriptor attached to
// every pipeline item and the vocabulary used to name, detect, and constrain it.
//
// Key pieces:
//   - Slot and Component: a closed set of descriptor slots (resolution, source,
//     codec, color range, audio), each with an ordered vocabulary of known
//     components. The zero Component is the "unknown" sentinel.
//   - Descriptor: a fixed-field record holding one Component per slot.
//   - Parse: strict vocabulary lookup for configured quality expressions such as
//     "1080p webdl 10bit truehd".
//   - Detect: best-effort detection from free text such as release titles.
//   - Requirement: a parsed predicate ("720p+ hdtv|webdl !cam") that answers
//     whether a descriptor satisfies it.
//
// Descriptors are plain values; copy them freely. Requirements are immutable
// once built and safe to share between goroutines.
package quality
