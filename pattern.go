package trigseq

// ChannelPattern is the two-bar hit recording ring for one channel.
// HitBar1 accumulates the bar currently in progress; HitBar2 holds the most
// recently completed bar, populated only by ShiftForNewBar at a bar boundary.
type ChannelPattern struct {
	HitBar1   [MaxTicksPerBar]bool
	HitBar2   [MaxTicksPerBar]bool
	CountBar1 int
	CountBar2 int
}

// Reset clears both bars, as happens on construction, a reset edge, or a
// structural parameter change.
func (p *ChannelPattern) Reset() {
	*p = ChannelPattern{}
}

// RecordHit marks tick as hit in the in-progress bar. It is idempotent: a
// second call for the same tick does not inflate the hit count.
func (p *ChannelPattern) RecordHit(tick int) {
	if !p.HitBar1[tick] {
		p.HitBar1[tick] = true
		p.CountBar1++
	}
}

// Similarity returns the Jaccard-index similarity, as a percentage, between
// the two recorded bars: 100 * |A∩B| / |A∪B|, defined as 100 when both bars
// are empty.
func (p *ChannelPattern) Similarity() int {
	return jaccardPercent(&p.HitBar1, &p.HitBar2)
}

// ShiftForNewBar rotates the in-progress bar into the completed-bar slot and
// clears the in-progress slot for the bar about to start.
func (p *ChannelPattern) ShiftForNewBar() {
	p.HitBar2 = p.HitBar1
	p.CountBar2 = p.CountBar1
	p.HitBar1 = [MaxTicksPerBar]bool{}
	p.CountBar1 = 0
}

// LearnedPattern is the immutable snapshot taken at the Learning->Locked
// transition. It is a distinct owned value from ChannelPattern rather than
// an alias into the recording ring, so the lock's immutability contract
// cannot be violated by continued recording.
type LearnedPattern struct {
	Hit   [MaxTicksPerBar]bool
	Count int
}

func snapshotLearned(recording *ChannelPattern) LearnedPattern {
	return LearnedPattern{Hit: recording.HitBar1, Count: recording.CountBar1}
}

// detectPatternChange compares a learned snapshot's bar to the incoming
// recording's in-progress bar and reports the similarity between them along
// with whether they have diverged enough to force a re-learn: similarity
// below 90%. An empty-union comparison yields a 100% similarity, so it never
// reports a change.
func detectPatternChange(learned *LearnedPattern, incoming *ChannelPattern) (changed bool, similarity int) {
	similarity = jaccardPercent(&learned.Hit, &incoming.HitBar1)
	return similarity < similarityLockThreshold, similarity
}

func jaccardPercent(a, b *[MaxTicksPerBar]bool) int {
	inter, union := 0, 0
	for i := range a {
		ai, bi := a[i], b[i]
		if ai || bi {
			union++
			if ai && bi {
				inter++
			}
		}
	}
	if union == 0 {
		return 100
	}
	return 100 * inter / union
}
