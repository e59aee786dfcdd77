//go:build nomysql

package connector

import "github.com/vitebski/project-snapshot/pkg/models"

// Builds tagged nomysql carry no MySQL driver; Connect reports the backend
// as unavailable before the DSN is ever used.
func mysqlDSN(params models.NetworkParams) string {
	return ""
}
