package database

import "testing"

func TestDSN(t *testing.T) {
	got := dsn("salon", "s3cret", "127.0.0.1", "3306", "booking")
	want := "salon:s3cret@tcp(127.0.0.1:3306)/booking?charset=utf8mb4&parseTime=true&loc=UTC"
	if got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}

func TestDSNNoPassword(t *testing.T) {
	got := dsn("salon", "", "db", "3306", "booking")
	want := "salon@tcp(db:3306)/booking?charset=utf8mb4&parseTime=true&loc=UTC"
	if got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
