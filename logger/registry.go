package logger

import "sync"

// named holds component loggers handed out by Get.
var named sync.Map

// Register stores l under name, replacing any previous entry.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered under name. Unknown names get the global
// logger tagged with the component name, cached for later calls.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	l, _ := named.LoadOrStore(name, GetGlobalLogger().WithComponent(name))
	return l.(*Logger)
}
