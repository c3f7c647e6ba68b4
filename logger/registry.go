package logger

import (
	"sync"
)

// Component names of the loggers the client registers at startup.
const (
	ComponentTransport      = "transport"
	ComponentPackageManager = "packagemanager"
	ComponentFormsDocs      = "formsdocs"
)

var components = struct {
	mu     sync.RWMutex
	byName map[string]*Logger
}{byName: make(map[string]*Logger)}

// Register stores the logger used by the named component.
func Register(name string, l *Logger) {
	components.mu.Lock()
	defer components.mu.Unlock()
	components.byName[name] = l
}

// RegisterComponents registers base tagged with each component name, so
// later lookups through Get inherit base's level, format and output.
func RegisterComponents(base *Logger, names ...string) {
	for _, name := range names {
		Register(name, base.WithComponent(name))
	}
}

// Get returns the logger registered for name. Unknown names get the global
// logger tagged with the component.
func Get(name string) *Logger {
	components.mu.RLock()
	l, ok := components.byName[name]
	components.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}
