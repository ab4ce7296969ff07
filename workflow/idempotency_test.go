package workflow

import (
	"errors"
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	dup := &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"}
	if !isDuplicateKeyErr(dup) {
		t.Fatal("expected 1062 to be a duplicate key error")
	}
	if !isDuplicateKeyErr(fmt.Errorf("create failed: %w", dup)) {
		t.Fatal("expected wrapped 1062 to be a duplicate key error")
	}
	if isDuplicateKeyErr(&mysqlDriver.MySQLError{Number: 1213}) {
		t.Fatal("deadlock error should not be a duplicate key error")
	}
	if isDuplicateKeyErr(errors.New("some other error")) {
		t.Fatal("generic error should not be a duplicate key error")
	}
	if isDuplicateKeyErr(nil) {
		t.Fatal("nil should not be a duplicate key error")
	}
}
