package master

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

type op struct {
	kind      string
	alias     string
	endBeat   int
	tickDelta int
}

var aliases = []string{"a", "b", "c"}
var kinds = []string{"queue", "queue", "start", "reset", "tick", "tick", "wipe"}

func genOp() gopter.Gen {
	return gen.IntRange(0, len(kinds)-1).FlatMap(func(ki interface{}) gopter.Gen {
		kind := kinds[ki.(int)]
		return gen.IntRange(0, len(aliases)-1).FlatMap(func(ai interface{}) gopter.Gen {
			alias := aliases[ai.(int)]
			return gen.IntRange(0, 5).FlatMap(func(eb interface{}) gopter.Gen {
				endBeat := eb.(int)
				return gen.IntRange(0, 3).Map(func(td int) op {
					return op{kind: kind, alias: alias, endBeat: endBeat, tickDelta: td}
				})
			}, nil)
		}, nil)
	}, nil)
}

// TestAliasPartitionProperty checks that for any sequence of control
// operations, every alias belongs to at most one of active, inactive —
// never both at once.
func TestAliasPartitionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("alias is never in both active and inactive", prop.ForAll(
		func(ops []op) bool {
			m := New[string](WithLongest, Longest)

			for _, o := range ops {
				switch o.kind {
				case "queue":
					m.Queue(o.alias, nil, decimal.NewFromInt(int64(o.endBeat)), false)
				case "start":
					m.StartCheck()
				case "reset":
					m.ResetCheck()
				case "tick":
					m.Tick(decimal.NewFromInt(int64(o.tickDelta)))
				case "wipe":
					m.ForceWipe()
				}

				for alias := range m.active {
					if _, ok := m.inactive[alias]; ok {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOfN(40, genOp()),
	))

	properties.TestingRun(t)
}
