package main

import (
	"strings"
	"testing"
)

func TestReadUsers(t *testing.T) {
	input := "username,email,password\nalice, alice@example.com ,secret-one\nbob,bob@example.com,secret-two\n"

	rows, err := readUsers(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Line != 2 || rows[0].Username != "alice" || rows[0].Email != "alice@example.com" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Line != 3 || rows[1].Password != "secret-two" {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestReadUsers_NoHeader(t *testing.T) {
	rows, err := readUsers(strings.NewReader("carol,carol@example.com,secret-three\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 1 || rows[0].Line != 1 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestReadUsers_WrongColumnCount(t *testing.T) {
	if _, err := readUsers(strings.NewReader("dave,dave@example.com\n")); err == nil {
		t.Fatalf("expected column count error")
	}
}
