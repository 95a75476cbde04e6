package domain

import (
	"testing"

	"github.com/google/uuid"
)

// FuzzParseAccountID checks that parsing never panics and that every
// accepted input round-trips through String.
func FuzzParseAccountID(f *testing.F) {
	f.Add("")
	f.Add("not-a-uuid")
	f.Add(uuid.Nil.String())
	f.Add(uuid.NewString())
	f.Add("00000000-0000-0000-0000-00000000000g")

	f.Fuzz(func(t *testing.T, raw string) {
		accountID, err := ParseAccountID(raw)
		if err != nil {
			return
		}
		if accountID.IsNil() {
			t.Fatalf("accepted nil uuid from %q", raw)
		}
		reparsed, err := ParseAccountID(accountID.String())
		if err != nil {
			t.Fatalf("canonical form %q failed to reparse: %v", accountID, err)
		}
		if reparsed != accountID {
			t.Fatalf("round trip changed id: %v != %v", reparsed, accountID)
		}
	})
}
