// Package testutil starts shared Redis, Postgres and MongoDB containers for
// integration tests. Each container is started once per test binary.
package testutil
