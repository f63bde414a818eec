package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GetVersion возвращает версию сборки, проставленную через -ldflags.
func GetVersion() string { return version }

// GetCommit возвращает хеш коммита сборки.
func GetCommit() string { return commit }

// GetDate возвращает дату сборки.
func GetDate() string { return date }

// String возвращает строку с полной информацией о сборке.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
