package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/webmasterarbez/elaoms/pkg/domain/interfaces"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
	"github.com/webmasterarbez/elaoms/pkg/domain/types"
	"github.com/webmasterarbez/elaoms/pkg/repository/memory"
)

const caller = model.CallerID("+15551234567")

func add(t *testing.T, repo *memory.Memory, content string, tier types.SalienceTier, sector types.Sector, meta map[string]any) model.MemoryID {
	t.Helper()
	id, err := repo.Add(context.Background(), &model.MemoryWriteIntent{
		Content:    content,
		Owner:      caller,
		Tier:       tier,
		Salience:   tier.Value(),
		DecayRate:  model.PermanentDecay,
		SectorHint: sector,
		Metadata:   meta,
	})
	gt.NoError(t, err).Required()
	return id
}

func TestAdd(t *testing.T) {
	t.Run("assigns id and keeps intent", func(t *testing.T) {
		repo := memory.New()
		id := add(t, repo, "User's name is Stefan", types.SalienceHigh, types.SectorSemantic,
			map[string]any{model.MetaField: "first_name"})
		gt.String(t, string(id)).NotEqual("")

		stored := repo.Memories(caller)
		gt.Array(t, stored).Length(1).Required()
		gt.Value(t, stored[0].Salience).Equal(0.9)
		gt.Value(t, stored[0].DecayRate).Equal(0.0)
		gt.Value(t, stored[0].Metadata[model.MetaField]).Equal(any("first_name"))
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		repo := memory.New()
		_, err := repo.Add(context.Background(), &model.MemoryWriteIntent{Content: "", Owner: caller})
		gt.Bool(t, errors.Is(err, interfaces.ErrValidationRejected)).True()
		gt.Array(t, repo.Memories(caller)).Length(0)
	})

	t.Run("salience out of range is rejected", func(t *testing.T) {
		repo := memory.New()
		_, err := repo.Add(context.Background(), &model.MemoryWriteIntent{Content: "x", Owner: caller, Salience: 1.5})
		gt.Bool(t, errors.Is(err, interfaces.ErrValidationRejected)).True()
	})

	t.Run("owners are isolated", func(t *testing.T) {
		repo := memory.New()
		add(t, repo, "asked about billing", types.SalienceMedium, types.SectorEpisodic, nil)

		hits, err := repo.Query(context.Background(), "billing", "+15559999999", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(0)
	})
}

func TestQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("keyword overlap ranks first", func(t *testing.T) {
		repo := memory.New()
		add(t, repo, "User's name is Stefan", types.SalienceHigh, types.SectorSemantic,
			map[string]any{model.MetaField: "first_name"})
		add(t, repo, "Caller asked about billing for the annual plan", types.SalienceMedium, types.SectorEpisodic, nil)

		hits, err := repo.Query(ctx, "billing question", caller, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(2).Required()
		gt.String(t, hits[0].Content).Contains("billing")
		gt.Value(t, hits[0].Sector).Equal(types.SectorEpisodic)
		gt.Bool(t, hits[0].Score > hits[1].Score).True()
	})

	t.Run("metadata field participates in matching", func(t *testing.T) {
		repo := memory.New()
		add(t, repo, "Caller asked about billing", types.SalienceHigh, types.SectorEpisodic, nil)
		add(t, repo, "Stefan", types.SalienceLow, types.SectorSemantic,
			map[string]any{model.MetaField: "first_name"})

		hits, err := repo.Query(ctx, "user name first_name", caller, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1).Required()
		gt.Value(t, hits[0].MetaString(model.MetaField)).Equal("first_name")
	})

	t.Run("ties fall back to recency", func(t *testing.T) {
		repo := memory.New()
		add(t, repo, "older high", types.SalienceHigh, types.SectorSemantic, nil)
		add(t, repo, "middle low", types.SalienceLow, types.SectorSemantic, nil)
		add(t, repo, "newer medium", types.SalienceMedium, types.SectorSemantic, nil)

		hits, err := repo.Query(ctx, "unrelated", caller, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(3).Required()
		gt.Value(t, hits[0].Content).Equal("newer medium")
		gt.Value(t, hits[1].Content).Equal("middle low")
		gt.Value(t, hits[2].Content).Equal("older high")
	})

	t.Run("high salience facts do not bury a newer episode", func(t *testing.T) {
		repo := memory.New()
		for _, fact := range []string{"likes gardening", "lives in Ohio", "has two dogs", "works nights", "prefers email", "plays chess"} {
			add(t, repo, fact, types.SalienceHigh, types.SectorSemantic, nil)
		}
		add(t, repo, "Caller asked about the refund", types.SalienceMedium, types.SectorEpisodic, nil)

		hits, err := repo.Query(ctx, "recent interaction", caller, 5)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(5).Required()
		gt.Value(t, hits[0].Content).Equal("Caller asked about the refund")
	})

	t.Run("limit below one returns a single hit", func(t *testing.T) {
		repo := memory.New()
		add(t, repo, "first", types.SalienceLow, types.SectorSemantic, nil)
		add(t, repo, "second", types.SalienceLow, types.SectorSemantic, nil)

		hits, err := repo.Query(ctx, "anything", caller, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1)
	})

	t.Run("returned hits are copies", func(t *testing.T) {
		repo := memory.New()
		add(t, repo, "asked about billing", types.SalienceMedium, types.SectorEpisodic,
			map[string]any{model.MetaKind: "call_summary"})

		hits, err := repo.Query(ctx, "billing", caller, 1)
		gt.NoError(t, err).Required()
		hits[0].Metadata[model.MetaKind] = "tampered"

		again, err := repo.Query(ctx, "billing", caller, 1)
		gt.NoError(t, err).Required()
		gt.Value(t, again[0].MetaString(model.MetaKind)).Equal("call_summary")
	})
}

func TestSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown owner has empty summary", func(t *testing.T) {
		repo := memory.New()
		summary, err := repo.Summary(ctx, caller)
		gt.NoError(t, err).Required()
		gt.Value(t, summary).Equal("")
	})

	t.Run("renders summary line", func(t *testing.T) {
		repo := memory.New()
		add(t, repo, "User's name is Stefan", types.SalienceHigh, types.SectorSemantic, nil)
		add(t, repo, "User is interested in gardening", types.SalienceMedium, types.SectorSemantic, nil)
		add(t, repo, "asked about billing", types.SalienceMedium, types.SectorEpisodic, nil)

		summary, err := repo.Summary(ctx, caller)
		gt.NoError(t, err).Required()
		gt.Bool(t, strings.HasPrefix(summary, "3 memories, 2 patterns | low | avg_sal=0.77")).True()
		gt.String(t, summary).Contains(`top: semantic(2, sal=0.80): "User's name is Stefan"`)
	})
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	repo.SetUnavailable(true)

	_, err := repo.Add(ctx, &model.MemoryWriteIntent{Content: "x", Owner: caller, Salience: 0.3})
	gt.Bool(t, errors.Is(err, interfaces.ErrUpstreamUnavailable)).True()

	_, err = repo.Query(ctx, "x", caller, 1)
	gt.Bool(t, errors.Is(err, interfaces.ErrUpstreamUnavailable)).True()

	_, err = repo.Summary(ctx, caller)
	gt.Bool(t, errors.Is(err, interfaces.ErrUpstreamUnavailable)).True()

	repo.SetUnavailable(false)
	_, err = repo.Add(ctx, &model.MemoryWriteIntent{Content: "x", Owner: caller, Salience: 0.3})
	gt.NoError(t, err)
}
