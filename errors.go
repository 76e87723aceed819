package main

import "github.com/Southclaws/fault/ftag"

// Error kinds attached to errors leaving the core. The CLI maps these
// to exit codes; see main.go.
const (
	// ErrMappingFormat marks a drum mapping that yields no usable rows.
	ErrMappingFormat = ftag.Kind("mapping_format")
	// ErrMalformedMidi marks input that is not a decodable SMF container.
	ErrMalformedMidi = ftag.Kind("malformed_midi")
	// ErrInvalidPolicy marks out-of-range or unparseable conversion options.
	ErrInvalidPolicy = ftag.Kind("invalid_policy")
)
