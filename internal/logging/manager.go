package logging

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Компоненты движка, у каждого свой файл логов
const (
	ComponentWorld      = "world"
	ComponentAPI        = "api"
	ComponentSimulation = "simulation"
)

// LoggerManager раздаёт логгеры компонентов с общим каталогом и уровнем консоли
type LoggerManager struct {
	mu           sync.RWMutex
	loggers      map[string]*Logger
	logDir       string
	consoleLevel LogLevel
}

// NewLoggerManager создаёт менеджер, складывающий файлы логов в dir
func NewLoggerManager(dir string) *LoggerManager {
	return &LoggerManager{
		loggers:      make(map[string]*Logger),
		logDir:       dir,
		consoleLevel: INFO,
	}
}

// SetConsoleLevel задаёт уровень консоли для всех логгеров, включая будущие.
// В файл по-прежнему пишется всё начиная с TRACE.
func (lm *LoggerManager) SetConsoleLevel(level LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.consoleLevel = level
	for _, logger := range lm.loggers {
		logger.SetLevels(level, TRACE)
	}
}

// GetLogger возвращает логгер компонента, создавая файл при первом запросе
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	logger, exists := lm.loggers[component]
	lm.mu.RUnlock()
	if exists {
		return logger, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}

	logger, err := NewLoggerInDir(component, lm.logDir)
	if err != nil {
		return nil, fmt.Errorf("logger for %s: %w", component, err)
	}
	logger.SetLevels(lm.consoleLevel, TRACE)

	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер или консольный логгер, если файл создать не удалось
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err != nil {
		lm.mu.RLock()
		level := lm.consoleLevel
		lm.mu.RUnlock()

		Default().Warn("⚠️ %v, компонент %s пишет только в консоль", err, component)
		return &Logger{
			component:       component,
			consoleLogger:   Default().consoleLogger,
			minConsoleLevel: level,
			minFileLevel:    ERROR + 1,
		}
	}
	return logger
}

// CloseAll закрывает файлы всех логгеров
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close logger %s: %w", component, err))
		}
	}

	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// ListComponents возвращает имена компонентов в алфавитном порядке
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel меняет уровни одного компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.RLock()
	logger, exists := lm.loggers[component]
	lm.mu.RUnlock()

	if !exists {
		return fmt.Errorf("logger for component %s not found", component)
	}

	logger.SetLevels(consoleLevel, fileLevel)
	return nil
}
