package repositories

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"

	"vyruchaiBack/internal/models"
)

func TestIsDuplicateKeyOn(t *testing.T) {
	phoneErr := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '+77001234567' for key 'users.phone'"}
	emailErr := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.kz' for key 'users.email'"}

	if !isDuplicateKeyOn(phoneErr, "phone") {
		t.Fatal("expected phone key violation to be detected")
	}
	if isDuplicateKeyOn(emailErr, "phone") {
		t.Fatal("email key violation must not match phone")
	}
	if isDuplicateKeyOn(errors.New("connection reset"), "phone") {
		t.Fatal("non-mysql error must not match")
	}
	if isDuplicateKeyOn(&mysql.MySQLError{Number: 1452, Message: "for key 'users.phone'"}, "phone") {
		t.Fatal("foreign key error must not count as duplicate")
	}
}

func TestDuplicateUserErrorDistinguishesKeys(t *testing.T) {
	phoneErr := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '+77001234567' for key 'users.phone'"}
	if got := duplicateUserError(phoneErr); got != models.ErrDuplicatePhone {
		t.Fatalf("expected ErrDuplicatePhone, got %v", got)
	}

	emailErr := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.kz' for key 'users.email'"}
	if got := duplicateUserError(emailErr); got != models.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", got)
	}
}
