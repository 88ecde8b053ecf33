// Package builtin registers the environments shipped with gym2048.
// Import it for its side effects:
//
//	import _ "github.com/vovakirdan/gym2048/internal/env/builtin"
package builtin

import (
	"github.com/vovakirdan/gym2048/internal/env"
	"github.com/vovakirdan/gym2048/internal/registry"
)

func init() {
	registry.Register(env.ID, "2048 on a 4x4 board, reward 1 on reaching 2048", func(seed uint64) env.Environment {
		return env.New(seed)
	})
	registry.Register(env.AccumulatingID, "2048 with reward accumulated and paid out at episode end", func(seed uint64) env.Environment {
		return env.NewAccumulating(seed)
	})
}
