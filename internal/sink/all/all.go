// Package all registers every sink backend with the factory. Commands
// blank-import it so the selected kind is decided by config alone.
package all

import (
	_ "csvanon/internal/sink/mssql"
	_ "csvanon/internal/sink/postgres"
	_ "csvanon/internal/sink/sqlite"
)
