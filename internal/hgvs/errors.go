package hgvs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedVariantKind is returned for MNV, delins, structural and
	// no-change input. No partial output accompanies it.
	ErrUnsupportedVariantKind = errors.New("unsupported variant kind")

	// ErrSequenceLookup is returned when the reference window around an
	// indel cannot be fetched.
	ErrSequenceLookup = errors.New("sequence lookup failed")

	// ErrProteinBoundary marks protein coordinates that fall outside the
	// translatable part of a transcript. It is reported, never returned by Compute.
	ErrProteinBoundary = errors.New("protein boundary anomaly")
)

// UnsupportedVariantError carries the variant that could not be described.
type UnsupportedVariantError struct {
	Variant Variant
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrUnsupportedVariantKind, e.Variant, e.Variant.Kind)
}

func (e *UnsupportedVariantError) Unwrap() error {
	return ErrUnsupportedVariantKind
}

// SequenceLookupError carries the window that could not be fetched.
type SequenceLookupError struct {
	Chrom      string
	Start, End int64
	Err        error
}

func (e *SequenceLookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s:%d-%d: empty sequence", ErrSequenceLookup, e.Chrom, e.Start, e.End)
	}
	return fmt.Sprintf("%s: %s:%d-%d: %v", ErrSequenceLookup, e.Chrom, e.Start, e.End, e.Err)
}

func (e *SequenceLookupError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSequenceLookup}
	}
	return []error{ErrSequenceLookup, e.Err}
}

// ProteinBoundaryError describes why a protein description was omitted.
type ProteinBoundaryError struct {
	TranscriptID  string
	Position      int // 1-based residue, 0 when unknown
	ProteinLength int
	Reason        string
}

func (e *ProteinBoundaryError) Error() string {
	return fmt.Sprintf("%s: %s residue %d of %d: %s", ErrProteinBoundary, e.TranscriptID, e.Position, e.ProteinLength, e.Reason)
}

func (e *ProteinBoundaryError) Unwrap() error {
	return ErrProteinBoundary
}
