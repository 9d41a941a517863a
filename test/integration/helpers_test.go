//go:build integration

package integration

import (
	"fmt"
	"os"
	"testing"
)

func mysqlConnString(t *testing.T) string {
	t.Helper()
	host := envOrDefault("SQLDRIFT_TEST_MYSQL_HOST", "localhost")
	port := envOrDefault("SQLDRIFT_TEST_MYSQL_PORT", "3306")
	db := envOrDefault("SQLDRIFT_TEST_MYSQL_DATABASE", "sqldrift_test")
	user := envOrDefault("SQLDRIFT_TEST_MYSQL_USER", "root")
	pass := envOrDefault("SQLDRIFT_TEST_MYSQL_PASSWORD", "root")
	return fmt.Sprintf("%s:%s@%s:%s~%s", user, pass, host, port, db)
}

func mysqlDSN(t *testing.T) string {
	t.Helper()
	host := envOrDefault("SQLDRIFT_TEST_MYSQL_HOST", "localhost")
	port := envOrDefault("SQLDRIFT_TEST_MYSQL_PORT", "3306")
	db := envOrDefault("SQLDRIFT_TEST_MYSQL_DATABASE", "sqldrift_test")
	user := envOrDefault("SQLDRIFT_TEST_MYSQL_USER", "root")
	pass := envOrDefault("SQLDRIFT_TEST_MYSQL_PASSWORD", "root")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, pass, host, port, db)
}

func skipIfNoMySQL(t *testing.T) {
	t.Helper()
	if os.Getenv("SQLDRIFT_TEST_MYSQL_HOST") == "" && os.Getenv("SQLDRIFT_TEST_MYSQL_PORT") == "" {
		t.Skip("skipping: SQLDRIFT_TEST_MYSQL_HOST/PORT not set")
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
