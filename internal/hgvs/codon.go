package hgvs

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Standard genetic code: DNA codon to amino acid (single letter).
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// Vertebrate mitochondrial code differences from the standard table.
var mitoCodons = map[string]byte{
	"AGA": '*', "AGG": '*', "ATA": 'M', "TGA": 'W',
}

// translateCodon translates a DNA codon to its amino acid.
// Returns 'X' for unknown or incomplete codons and '*' for stop codons.
func translateCodon(codon string, mito bool) byte {
	if len(codon) != 3 {
		return 'X'
	}
	if mito {
		if aa, ok := mitoCodons[codon]; ok {
			return aa
		}
	}
	if aa, ok := codonTable[codon]; ok {
		return aa
	}
	return 'X'
}

// isMitochondrial reports whether a chromosome uses the mitochondrial code.
func isMitochondrial(chrom string) bool {
	switch chrom {
	case "MT", "M", "chrM", "chrMT":
		return true
	}
	return false
}

// reverseComplement returns the reverse complement of a DNA sequence.
func reverseComplement(seq string) string {
	n := len(seq)
	var buf [64]byte
	var result []byte
	if n <= len(buf) {
		result = buf[:n]
	} else {
		result = make([]byte, n)
	}
	for i := 0; i < n; i++ {
		result[i] = complement(seq[n-1-i])
	}
	return string(result)
}

func complement(base byte) byte {
	switch base {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'G':
		return 'C'
	case 'C':
		return 'G'
	default:
		return 'N'
	}
}

var aminoAcidNames = map[byte]string{
	'A': "ALA", 'C': "CYS", 'D': "ASP", 'E': "GLU",
	'F': "PHE", 'G': "GLY", 'H': "HIS", 'I': "ILE",
	'K': "LYS", 'L': "LEU", 'M': "MET", 'N': "ASN",
	'P': "PRO", 'Q': "GLN", 'R': "ARG", 'S': "SER",
	'T': "THR", 'V': "VAL", 'W': "TRP", 'Y': "TYR",
	'U': "SEC", 'O': "PYL", '*': "TER", 'X': "XAA",
}

// aminoAcidThree maps single-letter codes to three-letter codes (Gly, Ter).
// Read-only after init.
var aminoAcidThree = func() map[byte]string {
	title := cases.Title(language.Und)
	m := make(map[byte]string, len(aminoAcidNames))
	for code, name := range aminoAcidNames {
		m[code] = title.String(name)
	}
	return m
}()

// aaThree converts a single-letter amino acid code to its three-letter code.
// Returns "Xaa" for unknown amino acids.
func aaThree(aa byte) string {
	if three, ok := aminoAcidThree[aa]; ok {
		return three
	}
	return "Xaa"
}
