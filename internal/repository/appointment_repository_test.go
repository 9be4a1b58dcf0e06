package repository

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsSerializationFailure(t *testing.T) {
	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
	lockWait := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	dupKey := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", deadlock, true},
		{"lock wait timeout", lockWait, true},
		{"wrapped deadlock", fmt.Errorf("commit: %w", deadlock), true},
		{"duplicate key", dupKey, false},
		{"no rows", sql.ErrNoRows, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := IsSerializationFailure(tc.err); got != tc.want {
			t.Errorf("%s: IsSerializationFailure = %v, want %v", tc.name, got, tc.want)
		}
	}
}
