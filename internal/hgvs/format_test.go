package hgvs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTranscript(t *testing.T) {
	base := BuildingComponents{GeneID: "KRAS", TranscriptID: "ENST00000311936", Coding: true}
	with := func(f func(*BuildingComponents)) BuildingComponents {
		bc := base
		f(&bc)
		return bc
	}

	tests := []struct {
		name string
		bc   BuildingComponents
		want string
	}{
		{
			name: "substitution",
			bc: with(func(bc *BuildingComponents) {
				bc.Start, bc.End = cds(35), cds(35)
				bc.Ref, bc.Alt, bc.Mutation = "G", "A", Substitution
			}),
			want: "ENST00000311936(KRAS):c.35G>A",
		},
		{
			name: "no gene",
			bc: with(func(bc *BuildingComponents) {
				bc.GeneID = ""
				bc.Start, bc.End = cds(35), cds(35)
				bc.Ref, bc.Alt, bc.Mutation = "G", "A", Substitution
			}),
			want: "ENST00000311936:c.35G>A",
		},
		{
			name: "deletion range",
			bc: with(func(bc *BuildingComponents) {
				bc.Start, bc.End = cds(100), cds(102)
				bc.Ref, bc.Mutation = "ATG", Deletion
			}),
			want: "ENST00000311936(KRAS):c.100_102delATG",
		},
		{
			name: "long deletion collapses to length",
			bc: with(func(bc *BuildingComponents) {
				bc.Start, bc.End = cds(100), cds(109)
				bc.Ref, bc.Mutation = "ATGCCCGGTT", Deletion
			}),
			want: "ENST00000311936(KRAS):c.100_109del10",
		},
		{
			name: "four bases stay literal",
			bc: with(func(bc *BuildingComponents) {
				bc.Start, bc.End = cds(10), cds(11)
				bc.Alt, bc.Mutation = "ACGT", Insertion
			}),
			want: "ENST00000311936(KRAS):c.10_11insACGT",
		},
		{
			name: "single base dup",
			bc: with(func(bc *BuildingComponents) {
				bc.Start, bc.End = cds(76), cds(76)
				bc.Alt, bc.Mutation = "A", Duplication
			}),
			want: "ENST00000311936(KRAS):c.76dupA",
		},
		{
			name: "intronic and utr coordinates",
			bc: with(func(bc *BuildingComponents) {
				bc.Start = CdnaCoord{ReferencePosition: 88, Offset: 1, Landmark: StartCodon}
				bc.End = CdnaCoord{ReferencePosition: 89, Offset: -2, Landmark: StartCodon}
				bc.Ref, bc.Mutation = "GTAAGTAAAAAAAAAAAAAAAAAG", Deletion
			}),
			want: "ENST00000311936(KRAS):c.88+1_89-2del24",
		},
		{
			name: "three prime utr",
			bc: with(func(bc *BuildingComponents) {
				bc.Start = CdnaCoord{ReferencePosition: 6, Landmark: StopCodon}
				bc.End = bc.Start
				bc.Ref, bc.Alt, bc.Mutation = "C", "T", Substitution
			}),
			want: "ENST00000311936(KRAS):c.*6C>T",
		},
		{
			name: "non-coding",
			bc: with(func(bc *BuildingComponents) {
				bc.Coding = false
				bc.Start = CdnaCoord{ReferencePosition: 55, Landmark: TranscriptStart}
				bc.End = bc.Start
				bc.Ref, bc.Alt, bc.Mutation = "G", "A", Substitution
			}),
			want: "ENST00000311936(KRAS):n.55G>A",
		},
		{
			name: "delins",
			bc: with(func(bc *BuildingComponents) {
				bc.Start, bc.End = cds(10), cds(12)
				bc.Ref, bc.Alt, bc.Mutation = "ACG", "TT", Delins
			}),
			want: "ENST00000311936(KRAS):c.10_12delinsTT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTranscript(tt.bc))
		})
	}
}

func TestFormatProtein(t *testing.T) {
	tests := []struct {
		name string
		pc   ProteinChange
		want string
	}{
		{"missense", ProteinChange{Kind: ProteinMissense, Start: 12, RefStart: 'G', Alt: "D"}, "p.Gly12Asp"},
		{"silent", ProteinChange{Kind: ProteinSilent, Start: 12, RefStart: 'G'}, "p.Gly12="},
		{"stop retained", ProteinChange{Kind: ProteinSilent, Start: 190, RefStart: '*'}, "p.Ter190="},
		{"nonsense", ProteinChange{Kind: ProteinNonsense, Start: 12, RefStart: 'G', Alt: "*"}, "p.Gly12Ter"},
		{"start loss", ProteinChange{Kind: ProteinStartLoss, Start: 1, RefStart: 'M'}, "p.Met1?"},
		{"no protein", ProteinChange{Kind: ProteinNoProtein}, "p.0"},
		{"extension known", ProteinChange{Kind: ProteinExtension, Start: 190, RefStart: '*', Alt: "Q", TerOffset: 17}, "p.Ter190Glnext*17"},
		{"extension unknown", ProteinChange{Kind: ProteinExtension, Start: 190, RefStart: '*', Alt: "Q"}, "p.Ter190Glnext*?"},
		{"frameshift known", ProteinChange{Kind: ProteinFrameshift, Start: 97, RefStart: 'R', Alt: "P", TerOffset: 23}, "p.Arg97ProfsTer23"},
		{"frameshift unknown", ProteinChange{Kind: ProteinFrameshift, Start: 97, RefStart: 'R', Alt: "P"}, "p.Arg97ProfsTer?"},
		{"single deletion", ProteinChange{Kind: ProteinInframeDeletion, Start: 34, RefStart: 'M'}, "p.Met34del"},
		{"range deletion", ProteinChange{Kind: ProteinInframeDeletion, Start: 34, End: 35, RefStart: 'K', RefEnd: 'M'}, "p.Lys34_Met35del"},
		{"single dup", ProteinChange{Kind: ProteinInframeDuplication, Start: 3, RefStart: 'A'}, "p.Ala3dup"},
		{"range dup", ProteinChange{Kind: ProteinInframeDuplication, Start: 3, End: 5, RefStart: 'A', RefEnd: 'S'}, "p.Ala3_Ser5dup"},
		{"insertion", ProteinChange{Kind: ProteinInframeInsertion, Start: 2, End: 3, RefStart: 'K', RefEnd: 'G', Alt: "QSK"}, "p.Lys2_Gly3insGlnSerLys"},
		{"insertion with stop", ProteinChange{Kind: ProteinInframeInsertion, Start: 3, End: 4, RefStart: 'M', RefEnd: 'H', Alt: "G*"}, "p.Met3_His4insGlyTer"},
		{"long insertion", ProteinChange{Kind: ProteinInframeInsertion, Start: 78, End: 79, RefStart: 'R', RefEnd: 'G', Alt: "AAAAAAAAAAAAAAAAAAAAAAA"}, "p.Arg78_Gly79ins23"},
		{"long insertion with stop", ProteinChange{Kind: ProteinInframeInsertion, Start: 746, End: 747, RefStart: 'Q', RefEnd: 'K', Alt: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA*"}, "p.Gln746_Lys747ins*63"},
		{"delins", ProteinChange{Kind: ProteinInframeDelins, Start: 28, End: 29, RefStart: 'C', RefEnd: 'K', Alt: "W"}, "p.Cys28_Lys29delinsTrp"},
		{"single delins with stop", ProteinChange{Kind: ProteinInframeDelins, Start: 28, RefStart: 'C', Alt: "WG*"}, "p.Cys28delinsTrpGlyTer"},
		{"long delins", ProteinChange{Kind: ProteinInframeDelins, Start: 28, End: 29, RefStart: 'C', RefEnd: 'K', Alt: "WWWWWWWWWWWW"}, "p.Cys28_Lys29delins(12)"},
		{"unknown residue", ProteinChange{Kind: ProteinMissense, Start: 1, RefStart: 'X', Alt: "Z"}, "p.Xaa1Xaa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := tt.pc
			assert.Equal(t, "ENSP00000308495:"+tt.want, FormatProtein("ENSP00000308495", &pc))
		})
	}
}

func TestAminoAcidThreeLetter(t *testing.T) {
	assert.Equal(t, "Gly", aaThree('G'))
	assert.Equal(t, "Ter", aaThree('*'))
	assert.Equal(t, "Sec", aaThree('U'))
	assert.Equal(t, "Pyl", aaThree('O'))
	assert.Equal(t, "Xaa", aaThree('X'))
	assert.Equal(t, "Xaa", aaThree('Z'))
	for code, name := range aminoAcidThree {
		assert.Len(t, name, 3, "code %c", code)
	}
}
