package logger

import "sync"

// LoggerInstance defines the interface for logging backends.
type LoggerInstance interface {
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger dispatches log calls to every configured backend.
type Logger struct {
	mu        sync.RWMutex
	instances []LoggerInstance
}

var singleton = &Logger{}

// Init replaces the global backends. Before Init is called every log call is
// dropped, which keeps library packages quiet in tests.
func Init(instances ...LoggerInstance) {
	singleton.mu.Lock()
	singleton.instances = instances
	singleton.mu.Unlock()
}

// Add appends a backend to the global logger.
func Add(instance LoggerInstance) {
	singleton.mu.Lock()
	singleton.instances = append(singleton.instances, instance)
	singleton.mu.Unlock()
}

func each(fn func(LoggerInstance)) {
	singleton.mu.RLock()
	instances := singleton.instances
	singleton.mu.RUnlock()
	for _, instance := range instances {
		fn(instance)
	}
}

// Debug writes a message at DEBUG level to all configured backends.
func Debug(message string, keyvals ...any) {
	each(func(l LoggerInstance) { l.Debug(message, keyvals...) })
}

// Info writes a message at INFO level to all configured backends.
func Info(message string, keyvals ...any) {
	each(func(l LoggerInstance) { l.Info(message, keyvals...) })
}

// Warn writes a message at WARN level to all configured backends.
func Warn(message string, keyvals ...any) {
	each(func(l LoggerInstance) { l.Warn(message, keyvals...) })
}

// Error writes a message at ERROR level to all configured backends.
func Error(message string, keyvals ...any) {
	each(func(l LoggerInstance) { l.Error(message, keyvals...) })
}

// Fatal writes a message at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) {
	each(func(l LoggerInstance) { l.Fatal(message, keyvals...) })
}
