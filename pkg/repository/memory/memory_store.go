package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/webmasterarbez/elaoms/pkg/domain/interfaces"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
	"github.com/webmasterarbez/elaoms/pkg/domain/types"
)

type entry struct {
	id        model.MemoryID
	seq       uint64
	owner     model.CallerID
	content   string
	tier      types.SalienceTier
	salience  float64
	decay     float64
	tags      []string
	sector    types.Sector
	metadata  map[string]any
	tokens    map[string]struct{}
	createdAt time.Time
}

func (e *entry) intent() *model.MemoryWriteIntent {
	return &model.MemoryWriteIntent{
		Content:    e.content,
		Owner:      e.owner,
		Tier:       e.tier,
		Salience:   e.salience,
		DecayRate:  e.decay,
		Tags:       slices.Clone(e.tags),
		SectorHint: e.sector,
		Metadata:   maps.Clone(e.metadata),
	}
}

func (e *entry) hit(score float64) *model.MemoryHit {
	return &model.MemoryHit{
		ID:       e.id,
		Content:  e.content,
		Score:    score,
		Sector:   e.sector,
		Salience: e.salience,
		Metadata: maps.Clone(e.metadata),
	}
}

func (m *Memory) checkAvailable() error {
	if m.unavailable.Load() {
		return goerr.Wrap(interfaces.ErrUpstreamUnavailable, "in-process memory engine is marked unavailable")
	}
	return nil
}

// Add stores one memory for intent.Owner
func (m *Memory) Add(ctx context.Context, intent *model.MemoryWriteIntent) (model.MemoryID, error) {
	if err := intent.Validate(); err != nil {
		return "", goerr.Wrap(interfaces.ErrValidationRejected, "invalid memory", goerr.V("cause", err.Error()))
	}
	if err := ctx.Err(); err != nil {
		return "", goerr.Wrap(interfaces.ErrUpstreamUnavailable, "context done", goerr.V("cause", err.Error()))
	}
	if err := m.checkAvailable(); err != nil {
		return "", err
	}

	sector := intent.SectorHint
	if sector == "" {
		sector = types.SectorSemantic
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	e := &entry{
		id:        model.NewMemoryID(),
		seq:       m.seq,
		owner:     intent.Owner,
		content:   intent.Content,
		tier:      intent.Tier,
		salience:  intent.Salience,
		decay:     intent.DecayRate,
		tags:      slices.Clone(intent.Tags),
		sector:    sector,
		metadata:  maps.Clone(intent.Metadata),
		createdAt: m.now().UTC(),
	}
	e.tokens = tokenize(e.content)
	for _, tag := range e.tags {
		for tok := range tokenize(tag) {
			e.tokens[tok] = struct{}{}
		}
	}
	if field, ok := e.metadata[model.MetaField].(string); ok {
		for tok := range tokenize(field) {
			e.tokens[tok] = struct{}{}
		}
	}

	m.entries[intent.Owner] = append(m.entries[intent.Owner], e)
	return e.id, nil
}

// Query ranks the owner's memories by keyword overlap with text, then by
// recency. Memories without any overlap are still
// returned after the overlapping ones.
func (m *Memory) Query(ctx context.Context, text string, owner model.CallerID, limit int) ([]*model.MemoryHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(interfaces.ErrUpstreamUnavailable, "context done", goerr.V("cause", err.Error()))
	}
	if err := m.checkAvailable(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	query := tokenize(text)

	type scored struct {
		entry *entry
		score float64
	}

	bucket := m.entries[owner]
	candidates := make([]scored, 0, len(bucket))
	for _, e := range bucket {
		candidates = append(candidates, scored{entry: e, score: overlap(query, e.tokens)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.entry.seq != b.entry.seq {
			return a.entry.seq > b.entry.seq
		}
		return a.entry.salience > b.entry.salience
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}

	result := make([]*model.MemoryHit, limit)
	for i := 0; i < limit; i++ {
		result[i] = candidates[i].entry.hit(candidates[i].score)
	}
	return result, nil
}

// Summary renders an OpenMemory style summary line for owner, or "" when
// nothing is stored.
func (m *Memory) Summary(ctx context.Context, owner model.CallerID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", goerr.Wrap(interfaces.ErrUpstreamUnavailable, "context done", goerr.V("cause", err.Error()))
	}
	if err := m.checkAvailable(); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket := m.entries[owner]
	if len(bucket) == 0 {
		return "", nil
	}

	var total float64
	sectors := make(map[types.Sector][]*entry)
	for _, e := range bucket {
		total += e.salience
		sectors[e.sector] = append(sectors[e.sector], e)
	}

	var topSector types.Sector
	for sector, list := range sectors {
		if len(list) > len(sectors[topSector]) ||
			(len(list) == len(sectors[topSector]) && sector < topSector) {
			topSector = sector
		}
	}

	// Most salient memory of the dominant sector, newest on ties
	var top *entry
	var sectorSal float64
	for _, e := range sectors[topSector] {
		sectorSal += e.salience
		if top == nil || e.salience > top.salience || (e.salience == top.salience && e.seq > top.seq) {
			top = e
		}
	}

	line := fmt.Sprintf("%d memories, %d patterns | %s | avg_sal=%.2f",
		len(bucket), len(sectors), activityLevel(len(bucket)), total/float64(len(bucket)))
	line += fmt.Sprintf(" | top: %s(%d, sal=%.2f): %q",
		topSector, len(sectors[topSector]), sectorSal/float64(len(sectors[topSector])), top.content)

	return line, nil
}

func activityLevel(count int) string {
	switch {
	case count >= 20:
		return "high"
	case count >= 5:
		return "medium"
	default:
		return "low"
	}
}

func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(f) < 2 {
			continue
		}
		tokens[f] = struct{}{}
	}
	return tokens
}

func overlap(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	var n int
	for tok := range query {
		if _, ok := doc[tok]; ok {
			n++
		}
	}
	return float64(n) / float64(len(query))
}
