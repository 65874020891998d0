package render

import "errors"

var (
	// ErrInputMismatch is a caller contract violation: parallel input lists
	// disagree in length, or an animation was requested with a non-positive
	// duration. Rejected before any work is done.
	ErrInputMismatch = errors.New("input mismatch")

	// ErrNoRenderableScenes means zero scenes survived asset validation.
	// No artifact is produced.
	ErrNoRenderableScenes = errors.New("no renderable scenes")

	// ErrBGMUnavailable marks a missing or undecodable background-music
	// asset. Recoverable: the program is exported with narration only.
	ErrBGMUnavailable = errors.New("bgm unavailable")

	// ErrEncodeFailed marks a fatal encode-stage failure. No partial file
	// is left at the output path.
	ErrEncodeFailed = errors.New("encode failed")
)
