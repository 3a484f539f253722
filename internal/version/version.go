// Package version хранит сведения о сборке, заданные через -ldflags.
package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Version возвращает номер версии сборки.
func Version() string { return version }

// String форматирует сведения о сборке для labqc version.
func String() string {
	return fmt.Sprintf("labqc %s (commit %s, built %s)", version, commit, date)
}
