package main

import "testing"

func TestIndentJSON(t *testing.T) {
	got := indentJSON([]byte(`{"id":"acc-1","balance":1}`))
	want := "{\n  \"id\": \"acc-1\",\n  \"balance\": 1\n}"
	if got != want {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestIndentJSONPassesThroughInvalid(t *testing.T) {
	if got := indentJSON([]byte("not json")); got != "not json" {
		t.Fatalf("expected passthrough, got %s", got)
	}
}

func TestNewRootCmdWiresAccountCommands(t *testing.T) {
	root := newRootCmd()

	account, _, err := root.Find([]string{"account"})
	if err != nil {
		t.Fatalf("account command missing: %v", err)
	}

	for _, name := range []string{"create", "get", "list", "credit", "debit"} {
		if _, _, err := account.Find([]string{name}); err != nil {
			t.Errorf("account %s command missing: %v", name, err)
		}
	}
}
