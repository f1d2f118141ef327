package hgvs

import (
	"strconv"
	"strings"
)

// MaxResiduesDisplayed is the longest inserted residue run rendered
// literally in a protein description.
const MaxResiduesDisplayed = 10

// BuildingComponents holds everything needed to render a transcript-level
// description. Coordinates are already in transcript orientation and the
// alleles already complemented for minus strand transcripts.
type BuildingComponents struct {
	GeneID       string
	TranscriptID string
	ProteinID    string
	Coding       bool // c. when true, n. otherwise
	Start, End   CdnaCoord
	Ref, Alt     string
	Mutation     MutationKind
}

// FormatTranscript renders "ENST00000311936(KRAS):c.34G>A".
func FormatTranscript(bc BuildingComponents) string {
	var b strings.Builder
	b.WriteString(bc.TranscriptID)
	if bc.GeneID != "" {
		b.WriteByte('(')
		b.WriteString(bc.GeneID)
		b.WriteByte(')')
	}
	if bc.Coding {
		b.WriteString(":c.")
	} else {
		b.WriteString(":n.")
	}
	b.WriteString(bc.Start.String())
	if bc.End != bc.Start {
		b.WriteByte('_')
		b.WriteString(bc.End.String())
	}
	switch bc.Mutation {
	case Substitution:
		b.WriteString(bc.Ref)
		b.WriteByte('>')
		b.WriteString(bc.Alt)
	case Deletion:
		b.WriteString("del")
		b.WriteString(alleleText(bc.Ref))
	default:
		b.WriteString(bc.Mutation.Symbol())
		b.WriteString(alleleText(bc.Alt))
	}
	return b.String()
}

// alleleText renders alleles longer than MaxAlleleLength by their length.
func alleleText(a string) string {
	if len(a) > MaxAlleleLength {
		return strconv.Itoa(len(a))
	}
	return a
}

// FormatProtein renders a protein change against a protein identifier.
func FormatProtein(proteinID string, pc *ProteinChange) string {
	return proteinID + ":p." + proteinBody(pc)
}

func proteinBody(pc *ProteinChange) string {
	var b strings.Builder
	residue := func(aa byte, pos int) {
		b.WriteString(aaThree(aa))
		b.WriteString(strconv.Itoa(pos))
	}
	span := func() {
		residue(pc.RefStart, pc.Start)
		if pc.End > 0 {
			b.WriteByte('_')
			residue(pc.RefEnd, pc.End)
		}
	}
	alt := byte('X')
	if pc.Alt != "" {
		alt = pc.Alt[0]
	}

	switch pc.Kind {
	case ProteinSilent:
		residue(pc.RefStart, pc.Start)
		b.WriteByte('=')
	case ProteinMissense:
		residue(pc.RefStart, pc.Start)
		b.WriteString(aaThree(alt))
	case ProteinNonsense:
		residue(pc.RefStart, pc.Start)
		b.WriteString("Ter")
	case ProteinStartLoss:
		b.WriteString("Met1?")
	case ProteinNoProtein:
		b.WriteByte('0')
	case ProteinExtension:
		residue('*', pc.Start)
		b.WriteString(aaThree(alt))
		b.WriteString("ext*")
		b.WriteString(terOffset(pc.TerOffset))
	case ProteinFrameshift:
		residue(pc.RefStart, pc.Start)
		b.WriteString(aaThree(alt))
		b.WriteString("fsTer")
		b.WriteString(terOffset(pc.TerOffset))
	case ProteinInframeDeletion:
		span()
		b.WriteString("del")
	case ProteinInframeDuplication:
		span()
		b.WriteString("dup")
	case ProteinInframeInsertion:
		span()
		b.WriteString("ins")
		b.WriteString(insertedResidues(pc.Alt, false))
	case ProteinInframeDelins:
		span()
		b.WriteString("delins")
		b.WriteString(insertedResidues(pc.Alt, true))
	default:
		b.WriteByte('?')
	}
	return b.String()
}

func terOffset(n int) string {
	if n <= 0 {
		return "?"
	}
	return strconv.Itoa(n)
}

// insertedResidues renders an inserted run, Ter included. Long runs are
// given by their length: ins23, ins*63, delins(23).
func insertedResidues(alt string, delins bool) string {
	stop := strings.IndexByte(alt, '*')
	if len(alt) > MaxResiduesDisplayed {
		n := len(alt)
		if stop >= 0 {
			n = stop + 1
		}
		switch {
		case delins:
			return "(" + strconv.Itoa(n) + ")"
		case stop >= 0:
			return "*" + strconv.Itoa(n)
		default:
			return strconv.Itoa(n)
		}
	}
	if stop >= 0 {
		alt = alt[:stop+1]
	}
	var b strings.Builder
	for i := 0; i < len(alt); i++ {
		b.WriteString(aaThree(alt[i]))
	}
	return b.String()
}
