// Package vcf reads variants from VCF files and plain variant lists.
package vcf

// VariantParser is the interface for readers that yield variants.
// Both the VCF parser and the list parser implement it.
type VariantParser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}
