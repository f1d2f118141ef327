package hgvs

import (
	"strings"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// ProteinChange is the predicted protein-level consequence of an edit.
// Every decision needed to render it has been made; formatting is pure
// concatenation over these fields.
type ProteinChange struct {
	Kind  ProteinKind
	Frame Frame
	// Start and End are 1-based residue positions; End is 0 for a single
	// residue. For insertions they are the two flanking residues.
	Start, End int
	// RefStart and RefEnd are the residues at Start and End, '*' for the terminator.
	RefStart, RefEnd byte
	// Alt holds the substituted or inserted residues; a trailing '*' is a
	// stop inside the inserted run.
	Alt string
	// TerOffset is the distance to the new terminator for frameshifts and
	// extensions, 0 when no terminator was found.
	TerOffset int
	// AltSequence is the predicted protein from the first codon up to and
	// including its terminator.
	AltSequence string
}

// cdnaEdit replaces cDNA bases [from, to) (0-based, transcript
// orientation) with ins. Insertions have from == to.
type cdnaEdit struct {
	from, to int
	ins      string
}

func (e cdnaEdit) apply(seq string) string {
	return seq[:e.from] + e.ins + seq[e.to:]
}

func (e cdnaEdit) delta() int {
	return len(e.ins) - (e.to - e.from)
}

// predictor translates edited cDNA of one transcript.
type predictor struct {
	t      *cache.Transcript
	mito   bool
	ref    string // reference protein as stored, leading X included
	refP   string // ref plus '*' unless the 3' end is unconfirmed
	lead   int    // 1 when an X stands for an incomplete first codon
	frame  int    // 0-based cDNA index of the first complete codon
	length int    // reference protein length
}

func newPredictor(t *cache.Transcript, chrom string) *predictor {
	p := &predictor{
		t:      t,
		mito:   isMitochondrial(chrom) || isMitochondrial(t.Chrom),
		ref:    t.ProteinSequence,
		frame:  t.CDNACodingStart - 1,
		length: len(t.ProteinSequence),
	}
	if t.HasUnconfirmedStart() {
		phase := t.FirstCodonPhase()
		p.frame += phase
		if phase > 0 && strings.HasPrefix(p.ref, "X") {
			p.lead = 1
		}
	}
	p.refP = p.ref
	if !t.HasUnconfirmedEnd() {
		p.refP += "*"
	}
	return p
}

// codonIndex returns the 0-based residue index of the codon holding a cDNA index.
func (p *predictor) codonIndex(cdnaIdx int) int {
	return p.lead + (cdnaIdx-p.frame)/3
}

// translate returns the residues encoded from the first complete codon up
// to and including the first stop, and whether a stop was reached.
func (p *predictor) translate(cdna string) (string, bool) {
	var b strings.Builder
	b.Grow(len(p.refP) + 1)
	if p.lead > 0 {
		b.WriteByte('X')
	}
	k := p.lead
	for i := p.frame; i+3 <= len(cdna); i += 3 {
		aa := translateCodon(cdna[i:i+3], p.mito)
		// A stop where the reference has selenocysteine is read through.
		if aa == '*' && k < p.length && p.ref[k] == 'U' {
			aa = 'U'
		}
		b.WriteByte(aa)
		if aa == '*' {
			return b.String(), true
		}
		k++
	}
	return b.String(), false
}

func (p *predictor) anomaly(position int, reason string) *ProteinBoundaryError {
	return &ProteinBoundaryError{
		TranscriptID:  p.t.ID,
		Position:      position,
		ProteinLength: p.length,
		Reason:        reason,
	}
}

// edit builds the cDNA edit for a justified variant. ok is false when the
// variant is not contained in the coding part of a single exon.
func (p *predictor) edit(v Variant) (cdnaEdit, bool) {
	t := p.t
	lo, hi := v.Span()
	ex := t.FindExon(lo)
	if ex == nil || ex != t.FindExon(hi) {
		return cdnaEdit{}, false
	}
	c1, c2 := t.CDNAPosition(lo), t.CDNAPosition(hi)
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if c1 < t.CDNACodingStart || c2 > t.CDNACodingEnd {
		return cdnaEdit{}, false
	}

	alt := v.Alt
	if t.IsReverseStrand() {
		alt = reverseComplement(alt)
	}
	switch v.Kind {
	case KindInsertion:
		return cdnaEdit{from: c1, to: c1, ins: alt}, true
	default:
		return cdnaEdit{from: c1 - 1, to: c2, ins: alt}, true
	}
}

// predict computes the protein consequence of a justified variant. It
// returns nil without error when no protein description applies.
func (p *predictor) predict(v Variant, mk MutationKind) (*ProteinChange, error) {
	t := p.t
	if !t.IsProteinCoding() || p.length == 0 || len(t.CDNASequence) < t.CDNACodingEnd {
		return nil, nil
	}
	e, ok := p.edit(v)
	if !ok {
		return nil, nil
	}

	cdna := t.CDNASequence
	if v.Kind != KindInsertion {
		ref := v.Ref
		if t.IsReverseStrand() {
			ref = reverseComplement(ref)
		}
		if cdna[e.from:e.to] != ref {
			return nil, p.anomaly(0, "reference allele does not match transcript sequence")
		}
	}

	if e.from < p.frame {
		return nil, p.anomaly(1, "edit inside incomplete first codon")
	}
	k := p.codonIndex(e.from)
	if k > p.length {
		return nil, p.anomaly(k+1, "edit beyond protein terminator")
	}
	if t.HasUnconfirmedEnd() {
		complete := (t.CDNACodingEnd - p.frame) / 3
		if (e.from-p.frame)/3 >= complete || k >= p.length {
			return nil, p.anomaly(k+1, "edit inside incomplete last codon")
		}
	}

	altP, hasStop := p.translate(e.apply(cdna))
	if fd := firstDiff(p.refP, altP); fd >= 0 && fd < k {
		return nil, p.anomaly(fd+1, "reference protein differs from translated cDNA")
	}

	var pc *ProteinChange
	var err error
	switch {
	case mk == Substitution:
		pc, err = p.substitution(k, altP, hasStop)
	case (e.delta()%3+3)%3 != 0:
		pc, err = p.frameshift(altP, hasStop)
	default:
		pc, err = p.inframe(e, k, mk, altP, hasStop)
	}
	if pc != nil {
		pc.Frame = frameOf(v)
		pc.AltSequence = altP
	}
	return pc, err
}

func (p *predictor) confirmedStart() bool {
	return !p.t.HasUnconfirmedStart()
}

func (p *predictor) substitution(k int, altP string, hasStop bool) (*ProteinChange, error) {
	if k >= len(altP) || k >= len(p.refP) {
		return nil, p.anomaly(k+1, "codon not translated")
	}
	ref, alt := p.refP[k], altP[k]
	pc := &ProteinChange{
		Kind:     classifySubstitution(ref, alt, k+1, p.confirmedStart()),
		Start:    k + 1,
		RefStart: ref,
		Alt:      string(alt),
	}
	if pc.Kind == ProteinExtension && hasStop {
		pc.TerOffset = len(altP) - 1 - p.length
	}
	return pc, nil
}

func (p *predictor) frameshift(altP string, hasStop bool) (*ProteinChange, error) {
	i := 0
	for i < len(altP) && i < len(p.refP) && altP[i] == p.refP[i] {
		i++
	}
	switch {
	case i == len(altP) && hasStop:
		// the terminator came back at the same codon
		return &ProteinChange{Kind: ProteinSilent, Start: len(altP), RefStart: '*'}, nil
	case i == len(altP):
		return nil, p.anomaly(i+1, "no terminator in available sequence")
	case i == len(p.refP):
		return nil, p.anomaly(i+1, "alternate protein runs past incomplete reference")
	}

	fd := i
	ref, alt := p.refP[fd], altP[fd]
	pc := &ProteinChange{Start: fd + 1, RefStart: ref, Alt: string(alt)}
	switch {
	case ref == '*':
		pc.Kind = ProteinExtension
		if hasStop {
			pc.TerOffset = len(altP) - 1 - p.length
		}
	case fd == 0 && ref == 'M' && p.confirmedStart():
		pc.Kind = ProteinStartLoss
	case alt == '*':
		pc.Kind = ProteinNonsense
	default:
		pc.Kind = ProteinFrameshift
		if hasStop {
			pc.TerOffset = len(altP) - 1 - fd + 1
		}
	}
	return pc, nil
}

func (p *predictor) inframe(e cdnaEdit, k int, mk MutationKind, altP string, hasStop bool) (*ProteinChange, error) {
	refP := p.refP
	pre := commonPrefix(refP, altP)
	if pre == len(refP) && pre == len(altP) {
		if k >= len(refP) {
			return nil, p.anomaly(k+1, "codon not translated")
		}
		return &ProteinChange{Kind: ProteinSilent, Start: k + 1, RefStart: refP[k]}, nil
	}
	suf := commonSuffix(refP, altP, pre)
	refRun, altRun := refP[pre:len(refP)-suf], altP[pre:len(altP)-suf]

	if strings.IndexByte(refRun, '*') >= 0 {
		if pre != p.length || pre >= len(altP) {
			return nil, p.anomaly(pre+1, "terminator deleted with upstream residues")
		}
		pc := &ProteinChange{Kind: ProteinExtension, Start: pre + 1, RefStart: '*', Alt: altP[pre : pre+1]}
		if hasStop {
			pc.TerOffset = len(altP) - 1 - p.length
		}
		return pc, nil
	}

	startEdit := pre == 0 && refP[0] == 'M' && p.confirmedStart()

	if hasStop && len(altP) < len(refP)+e.delta()/3 {
		// premature terminator
		if startEdit {
			return &ProteinChange{Kind: ProteinStartLoss, Start: 1, RefStart: 'M'}, nil
		}
		if altP[pre] == '*' {
			return &ProteinChange{Kind: ProteinNonsense, Start: pre + 1, RefStart: refP[pre]}, nil
		}
		res := altP[pre:]
		if mk == Insertion || mk == Duplication {
			if pre == 0 {
				return nil, p.anomaly(1, "insertion before first residue")
			}
			return &ProteinChange{
				Kind: ProteinInframeInsertion, Start: pre, End: pre + 1,
				RefStart: refP[pre-1], RefEnd: refP[pre], Alt: res,
			}, nil
		}
		last := min(p.codonIndex(e.to-1), p.length-1)
		pc := &ProteinChange{Kind: ProteinInframeDelins, Start: pre + 1, RefStart: refP[pre], Alt: res}
		if last > pre {
			pc.End, pc.RefEnd = last+1, refP[last]
		}
		return pc, nil
	}

	dup := refRun == "" && pre >= len(altRun) && refP[pre-len(altRun):pre] == altRun
	kind := classifyInframe(refRun, altRun, dup)

	if startEdit {
		if kind != ProteinInframeDeletion || len(refRun) == 1 {
			return &ProteinChange{Kind: ProteinStartLoss, Start: 1, RefStart: 'M'}, nil
		}
		// translation restarts at the next downstream Met
		next := strings.IndexByte(p.ref[len(refRun):], 'M')
		if next < 0 {
			return &ProteinChange{Kind: ProteinNoProtein}, nil
		}
		next += len(refRun)
		return &ProteinChange{
			Kind: ProteinInframeDeletion, Start: 2, End: next + 1,
			RefStart: refP[1], RefEnd: 'M',
		}, nil
	}

	pc := &ProteinChange{Kind: kind}
	switch kind {
	case ProteinSilent:
		pc.Start, pc.RefStart = k+1, refP[k]
	case ProteinInframeDuplication:
		n := len(altRun)
		pc.Start, pc.RefStart = pre-n+1, refP[pre-n]
		if n > 1 {
			pc.End, pc.RefEnd = pre, refP[pre-1]
		}
	case ProteinInframeInsertion:
		if pre == 0 {
			return nil, p.anomaly(1, "insertion before first residue")
		}
		pc.Start, pc.End = pre, pre+1
		pc.RefStart, pc.RefEnd = refP[pre-1], refP[pre]
		pc.Alt = altRun
	case ProteinInframeDeletion, ProteinInframeDelins:
		pc.Start, pc.RefStart = pre+1, refP[pre]
		if n := len(refRun); n > 1 {
			pc.End, pc.RefEnd = pre+n, refP[pre+n-1]
		}
		pc.Alt = altRun
	}
	return pc, nil
}

// firstDiff returns the first index where a and b differ within their
// common length, or -1.
func firstDiff(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// commonSuffix returns the shared suffix length of a and b, not reaching
// into the first pre bases of either.
func commonSuffix(a, b string, pre int) int {
	s := 0
	for s < len(a)-pre && s < len(b)-pre && a[len(a)-1-s] == b[len(b)-1-s] {
		s++
	}
	return s
}
