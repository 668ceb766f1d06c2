package capacity

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/narvanalabs/grid-explorer/internal/models"
)

// **Feature: grid-explorer, Property 4: Ingestion Sequencing**
// *For any* sequence of node ingestions, the held collection SHALL be the
// one carried by the highest sequence number applied, and every lower
// sequence arriving afterwards SHALL be rejected.
// **Validates: Requirements 5.2, 5.3**
func TestPropertyIngestionSequencing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("highest applied sequence wins", prop.ForAll(
		func(seqs []uint64) bool {
			store := newTestStore()

			var maxSeq uint64
			var winner string
			for _, seq := range seqs {
				id := "n" + strconv.FormatUint(seq, 10)
				_, err := store.IngestNodes(seq, []models.NodeRecord{{NodeID: id, FarmID: "1"}})
				switch {
				case seq >= maxSeq:
					if err != nil {
						t.Logf("seq %d >= %d rejected: %v", seq, maxSeq, err)
						return false
					}
					maxSeq, winner = seq, id
				default:
					if !errors.Is(err, ErrStaleIngestion) {
						t.Logf("seq %d < %d accepted", seq, maxSeq)
						return false
					}
				}
			}

			held, loaded := store.Nodes()
			if len(seqs) == 0 {
				return !loaded
			}
			return loaded && len(held) == 1 && held[0].NodeID == winner
		},
		gen.SliceOf(gen.UInt64Range(0, 50)),
	))

	properties.Property("NextSequence stays ahead of applied sequences", prop.ForAll(
		func(seqs []uint64) bool {
			store := newTestStore()
			var maxSeq uint64
			for _, seq := range seqs {
				store.IngestFarms(seq, nil)
				if seq > maxSeq {
					maxSeq = seq
				}
			}
			return store.NextSequence() > maxSeq
		},
		gen.SliceOf(gen.UInt64Range(0, 1000)),
	))

	properties.TestingRun(t)
}
