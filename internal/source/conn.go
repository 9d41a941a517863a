package source

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Connection strings take the form user:password@host:port~database. The
// password runs to the last @, so it may itself contain one; the port is
// optional and defaults to 3306.
var connPattern = regexp.MustCompile(`^([^:]*):(.*)@([^~]*)~([^~]*)$`)

// ConnSpec is a parsed database connection string.
type ConnSpec struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
}

// ParseConnString parses a user:password@host:port~database string.
func ParseConnString(raw string) (*ConnSpec, error) {
	m := connPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, &ConnectionError{
			Target: redact(raw),
			Err:    errors.New("connection string must be user:password@host:port~database"),
		}
	}
	spec := &ConnSpec{User: m[1], Password: m[2], Host: m[3], Port: 3306, Database: m[4]}
	if host, port, ok := strings.Cut(m[3], ":"); ok {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return nil, &ConnectionError{Target: redact(raw), Err: fmt.Errorf("invalid port %q", port)}
		}
		spec.Host, spec.Port = host, n
	}
	if spec.Host == "" {
		return nil, &ConnectionError{Target: redact(raw), Err: errors.New("missing host")}
	}
	if spec.Database == "" {
		return nil, &ConnectionError{Target: redact(raw), Err: errors.New("missing database name")}
	}
	return spec, nil
}

// DSN renders the spec in the form the MySQL driver expects.
func (s *ConnSpec) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", s.Host, s.Port)
	cfg.DBName = s.Database
	return cfg.FormatDSN()
}

// Redacted renders the spec without its password, for logs and errors.
func (s *ConnSpec) Redacted() string {
	return fmt.Sprintf("%s@%s:%d~%s", s.User, s.Host, s.Port, s.Database)
}

// redact masks everything after the first colon of a raw connection string,
// where the password would start.
func redact(raw string) string {
	if i := strings.Index(raw, ":"); i >= 0 {
		if at := strings.LastIndex(raw, "@"); at > i {
			return raw[:i] + ":***" + raw[at:]
		}
		return raw[:i] + ":***"
	}
	return raw
}
