package connector

import _ "github.com/mattn/go-sqlite3"
