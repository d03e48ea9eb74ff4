package app

import "io"

// SetEntropy replaces the room code randomness source
func SetEntropy(h *TableHub, r io.Reader) {
	h.entropy = r
}
