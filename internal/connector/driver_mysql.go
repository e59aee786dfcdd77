//go:build !nomysql

package connector

import (
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/vitebski/project-snapshot/pkg/models"
)

func mysqlDSN(params models.NetworkParams) string {
	cfg := mysql.NewConfig()
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(params.Host, params.Port)
	cfg.DBName = params.Database
	return cfg.FormatDSN()
}
