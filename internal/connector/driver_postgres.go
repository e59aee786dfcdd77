//go:build !nopostgres

package connector

import _ "github.com/jackc/pgx/v5/stdlib"
