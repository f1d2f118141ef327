package hgvs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVariantKind(t *testing.T) {
	tests := []struct {
		ref, alt string
		want     Kind
		end      int64
	}{
		{"C", "T", KindSNV, 100},
		{"", "A", KindInsertion, 99},
		{"-", "AT", KindInsertion, 99},
		{"ATG", "", KindDeletion, 102},
		{"ATG", ".", KindDeletion, 102},
		{"AT", "GC", KindMNV, 101},
		{"A", "ATAC", KindDelins, 100},
		{"AT", "G", KindDelins, 101},
		{"A", "<DEL>", KindStructural, 100},
		{"A", "A[2:100[", KindStructural, 100},
		{"A", "*", KindStructural, 100},
		{"A", "A", KindUnknown, 100},
		{"A", "R", KindUnknown, 100},
	}
	for _, tt := range tests {
		t.Run(tt.ref+">"+tt.alt, func(t *testing.T) {
			v := NewVariant("1", 100, tt.ref, tt.alt)
			assert.Equal(t, tt.want, v.Kind)
			assert.Equal(t, tt.end, v.End)
		})
	}
}

func TestNewVariantUppercases(t *testing.T) {
	v := NewVariant("1", 10, "c", "t")
	assert.Equal(t, "C", v.Ref)
	assert.Equal(t, "T", v.Alt)
	assert.Equal(t, KindSNV, v.Kind)
}

func TestKindSupported(t *testing.T) {
	assert.True(t, KindSNV.Supported())
	assert.True(t, KindInsertion.Supported())
	assert.True(t, KindDeletion.Supported())
	assert.False(t, KindMNV.Supported())
	assert.False(t, KindDelins.Supported())
	assert.False(t, KindStructural.Supported())
	assert.False(t, KindUnknown.Supported())
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("12:25245350:C:T")
	require.NoError(t, err)
	assert.Equal(t, Variant{Chrom: "12", Start: 25245350, End: 25245350, Ref: "C", Alt: "T", Kind: KindSNV}, v)

	v, err = ParseVariant(" chr1:100:-:GA ")
	require.NoError(t, err)
	assert.Equal(t, "chr1", v.Chrom)
	assert.Equal(t, KindInsertion, v.Kind)
	assert.Equal(t, int64(99), v.End)

	v, err = ParseVariant("X:5:ACG:")
	require.NoError(t, err)
	assert.Equal(t, KindDeletion, v.Kind)

	for _, bad := range []string{"", "1:100:C", "1:abc:C:T", "1:0:C:T", "1 100 C T"} {
		_, err := ParseVariant(bad)
		assert.Error(t, err, bad)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Variant
		want Variant
	}{
		{
			name: "anchored insertion",
			in:   NewVariant("1", 100, "A", "ATAC"),
			want: Variant{Chrom: "1", Start: 101, End: 100, Ref: "", Alt: "TAC", Kind: KindInsertion},
		},
		{
			name: "anchored deletion",
			in:   NewVariant("1", 100, "AATG", "A"),
			want: Variant{Chrom: "1", Start: 101, End: 103, Ref: "ATG", Alt: "", Kind: KindDeletion},
		},
		{
			name: "shared suffix",
			in:   NewVariant("1", 100, "CAT", "GAT"),
			want: Variant{Chrom: "1", Start: 100, End: 100, Ref: "C", Alt: "G", Kind: KindSNV},
		},
		{
			name: "suffix before prefix",
			in:   NewVariant("1", 100, "AA", "A"),
			want: Variant{Chrom: "1", Start: 100, End: 100, Ref: "A", Alt: "", Kind: KindDeletion},
		},
		{
			name: "real delins stays",
			in:   NewVariant("1", 100, "AT", "G"),
			want: Variant{Chrom: "1", Start: 100, End: 101, Ref: "AT", Alt: "G", Kind: KindDelins},
		},
		{
			name: "structural untouched",
			in:   NewVariant("1", 100, "A", "<DUP>"),
			want: Variant{Chrom: "1", Start: 100, End: 100, Ref: "A", Alt: "<DUP>", Kind: KindStructural},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			assert.Equal(t, tt.want, tt.in.Normalize())
			assert.Equal(t, in, tt.in, "input must not change")
		})
	}
}

func TestVariantSpanAndString(t *testing.T) {
	ins := NewVariant("1", 101, "", "TAC")
	lo, hi := ins.Span()
	assert.Equal(t, int64(100), lo)
	assert.Equal(t, int64(101), hi)
	assert.Equal(t, "1:101:-:TAC", ins.String())

	del := NewVariant("1", 101, "ATG", "")
	lo, hi = del.Span()
	assert.Equal(t, int64(101), lo)
	assert.Equal(t, int64(103), hi)
	assert.Equal(t, "1:101:ATG:-", del.String())
}
