package doctor

import (
	"context"
	"errors"

	"github.com/musher-dev/mcpterm/internal/eventstream"
	"github.com/musher-dev/mcpterm/internal/mcp"
)

// Probe connects to server, waits for the initialize handshake to complete
// and disconnects again. It returns the server's initialize result or the
// reason the attempt failed.
func Probe(ctx context.Context, server mcp.ServerDescriptor, opts ...mcp.Option) (mcp.SessionInitialized, error) {
	events := eventstream.New[mcp.Event]()
	defer events.Close()

	client := mcp.NewClient(func(ev mcp.Event) { events.Push(ev) }, opts...)
	defer client.Close()

	gen := client.Connect(server)

	for {
		ev, err := events.Next(ctx)
		if err != nil {
			return mcp.SessionInitialized{}, err
		}

		if ev.AttemptGeneration() != gen {
			continue
		}

		switch ev := ev.(type) {
		case mcp.SessionInitialized:
			return ev, nil
		case mcp.ConnectFailed:
			if ev.Err == nil {
				return mcp.SessionInitialized{}, errors.New("connect failed")
			}

			return mcp.SessionInitialized{}, ev.Err
		case mcp.Disconnected:
			return mcp.SessionInitialized{}, errors.New(ev.Reason)
		}
	}
}
