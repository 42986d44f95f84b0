package version

import "fmt"

// Заполняются при сборке через -ldflags:
//
//	-X .../internal/version.version=v1.2.3
//	-X .../internal/version.commit=<sha>
//	-X .../internal/version.date=<iso8601>
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build — информация о сборке сервиса.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// Info возвращает информацию о текущей сборке.
func Info() Build {
	return Build{Version: version, Commit: commit, Date: date}
}

// Short возвращает только версию, без коммита и даты.
func Short() string { return version }

// String форматирует информацию о сборке одной строкой для логов.
func String() string {
	return fmt.Sprintf("storefront %s (commit %s, built %s)", version, commit, date)
}
