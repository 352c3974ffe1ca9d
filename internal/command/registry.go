package command

import "sync"

var (
	mu       sync.RWMutex
	registry = map[string]Command{}
)

// Register adds a command to the global registry, wrapped in the given
// middlewares. Called from package init or from main for commands that need
// runtime dependencies injected.
func Register(cmd Command, mws ...Middleware) {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	mu.Lock()
	defer mu.Unlock()
	registry[cmd.Name()] = cmd
}

func Get(name string) (Command, bool) {
	mu.RLock()
	defer mu.RUnlock()
	cmd, ok := registry[name]
	return cmd, ok
}

func All() []Command {
	mu.RLock()
	defer mu.RUnlock()
	list := make([]Command, 0, len(registry))
	for _, cmd := range registry {
		list = append(list, cmd)
	}
	return list
}
