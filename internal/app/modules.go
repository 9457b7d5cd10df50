package app

import (
	"io"

	"github.com/vk/gridbench/internal/registry"
	"github.com/vk/gridbench/modules/http_client"
	"github.com/vk/gridbench/modules/print"
	"github.com/vk/gridbench/modules/raycast"
	"github.com/vk/gridbench/modules/socketio"
	"github.com/vk/gridbench/modules/stream"
)

// coreModules is the definitive list of all benchmarks that are compiled
// into the gridbench binary. The print benchmark writes to outW.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&print.Module{Out: outW},
		&stream.Module{},
		&raycast.Module{},
		&http_client.Module{},
		&socketio.Module{},
	}
}
