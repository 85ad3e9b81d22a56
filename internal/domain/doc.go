// Package domain holds the value types and errors shared by the artview
// core. It has no dependencies on the filesystem, transport or logging.
//
//   - [Animation]: one decoded and rendered frame sequence, ready to play
package domain
