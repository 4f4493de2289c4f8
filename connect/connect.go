// Package connect opens a db.DB for one of the supported PostgreSQL
// drivers.
package connect

import (
	"database/sql"
	"errors"
	"sort"

	"github.com/gopsql/db"
	"github.com/gopsql/gopg"
	"github.com/gopsql/pgx"
	"github.com/gopsql/pq"
	"github.com/gopsql/standard"
	_ "github.com/lib/pq"
)

var ErrUnknownDriver = errors.New("unknown database driver")

var drivers = map[string]func(string) (db.DB, error){
	"pq": func(url string) (db.DB, error) {
		conn, err := pq.Open(url)
		if err != nil {
			return nil, err
		}
		return conn, nil
	},
	"pgx": func(url string) (db.DB, error) {
		conn, err := pgx.Open(url)
		if err != nil {
			return nil, err
		}
		return conn, nil
	},
	"gopg": func(url string) (db.DB, error) {
		conn, err := gopg.Open(url)
		if err != nil {
			return nil, err
		}
		return conn, nil
	},
	"standard": func(url string) (db.DB, error) {
		c, err := sql.Open("postgres", url)
		if err != nil {
			return nil, err
		}
		if err := c.Ping(); err != nil {
			c.Close()
			return nil, err
		}
		return standard.NewDB("postgres", c), nil
	},
}

// Drivers returns the names accepted by Open, sorted.
func Drivers() (out []string) {
	for name := range drivers {
		out = append(out, name)
	}
	sort.Strings(out)
	return
}

// Open connects to url with the named driver: "pq" (lib/pq), "pgx"
// (jackc/pgx), "gopg" (go-pg) or "standard" (database/sql with lib/pq).
func Open(driver, url string) (db.DB, error) {
	open, ok := drivers[driver]
	if !ok {
		return nil, ErrUnknownDriver
	}
	return open(url)
}

// MustOpen is like Open but panics if the connection cannot be opened.
func MustOpen(driver, url string) db.DB {
	conn, err := Open(driver, url)
	if err != nil {
		panic(err)
	}
	return conn
}
