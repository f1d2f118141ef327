package hgvs

// MutationKind is the transcript-level edit type.
type MutationKind int

const (
	MutationUnknown MutationKind = iota
	Substitution
	Deletion
	Insertion
	Duplication
	Delins
)

// Symbol returns the HGVS edit keyword.
func (k MutationKind) Symbol() string {
	switch k {
	case Substitution:
		return ">"
	case Deletion:
		return "del"
	case Insertion:
		return "ins"
	case Duplication:
		return "dup"
	case Delins:
		return "delins"
	}
	return ""
}

func (k MutationKind) String() string {
	switch k {
	case Substitution:
		return "substitution"
	case Deletion:
		return "deletion"
	case Insertion:
		return "insertion"
	case Duplication:
		return "duplication"
	case Delins:
		return "delins"
	}
	return "unknown"
}

// classifyMutation is the transcript-level decision table.
func classifyMutation(v Variant, dup bool) (MutationKind, error) {
	switch v.Kind {
	case KindSNV:
		return Substitution, nil
	case KindInsertion:
		if dup {
			return Duplication, nil
		}
		return Insertion, nil
	case KindDeletion:
		return Deletion, nil
	}
	return MutationUnknown, &UnsupportedVariantError{Variant: v}
}

// ProteinKind is the protein-level consequence. Each value renders with
// exactly one HGVS pattern.
type ProteinKind int

const (
	ProteinUnknown ProteinKind = iota
	ProteinSilent              // p.Gly12= / p.Ter190=
	ProteinMissense            // p.Gly12Asp
	ProteinNonsense            // p.Gly12Ter
	ProteinStartLoss           // p.Met1?
	ProteinNoProtein           // p.0
	ProteinExtension           // p.Ter190Glnext*17 / ext*?
	ProteinFrameshift          // p.Arg97ProfsTer23 / fsTer?
	ProteinInframeDeletion     // p.Lys34_Met35del
	ProteinInframeInsertion    // p.Lys2_Gly3insGlnSer
	ProteinInframeDuplication  // p.Ala3dup
	ProteinInframeDelins       // p.Cys28_Lys29delinsTrp
)

func (k ProteinKind) String() string {
	switch k {
	case ProteinSilent:
		return "silent"
	case ProteinMissense:
		return "missense"
	case ProteinNonsense:
		return "nonsense"
	case ProteinStartLoss:
		return "start_loss"
	case ProteinNoProtein:
		return "no_protein"
	case ProteinExtension:
		return "extension"
	case ProteinFrameshift:
		return "frameshift"
	case ProteinInframeDeletion:
		return "inframe_deletion"
	case ProteinInframeInsertion:
		return "inframe_insertion"
	case ProteinInframeDuplication:
		return "inframe_duplication"
	case ProteinInframeDelins:
		return "inframe_delins"
	}
	return "unknown"
}

// Frame records whether an edit preserves the reading frame. It depends
// only on the allele length difference.
type Frame int

const (
	InFrame Frame = iota
	Frameshift
)

func (f Frame) String() string {
	if f == Frameshift {
		return "frameshift"
	}
	return "in_frame"
}

// frameOf applies the frame law to an edit.
func frameOf(v Variant) Frame {
	if (len(v.Alt)-len(v.Ref))%3 != 0 {
		return Frameshift
	}
	return InFrame
}

// classifySubstitution is the decision table for single residue changes.
// ref is '*' when the edited codon is the terminator.
func classifySubstitution(ref, alt byte, position int, confirmedStart bool) ProteinKind {
	switch {
	case ref == alt:
		return ProteinSilent
	case ref == '*':
		return ProteinExtension
	case position == 1 && ref == 'M' && confirmedStart:
		return ProteinStartLoss
	case alt == '*':
		return ProteinNonsense
	default:
		return ProteinMissense
	}
}

// classifyInframe is the decision table for in-frame indels once the
// changed residue runs are known.
func classifyInframe(refRun, altRun string, dup bool) ProteinKind {
	switch {
	case refRun == "" && altRun == "":
		return ProteinSilent
	case refRun == "" && dup:
		return ProteinInframeDuplication
	case refRun == "":
		return ProteinInframeInsertion
	case altRun == "":
		return ProteinInframeDeletion
	default:
		return ProteinInframeDelins
	}
}
