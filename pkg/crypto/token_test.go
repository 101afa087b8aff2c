package crypto

import (
	"testing"
)

func TestGenerateHashedToken(t *testing.T) {
	pair, err := GenerateHashedToken()
	if err != nil {
		t.Fatalf("GenerateHashedToken() error = %v", err)
	}
	if pair.Token == "" {
		t.Fatal("Token is empty")
	}
	if pair.Hash == "" {
		t.Fatal("Hash is empty")
	}
	if pair.Token == pair.Hash {
		t.Fatal("Token and Hash must differ")
	}
	if HashToken(pair.Token) != pair.Hash {
		t.Error("Hash does not match HashToken(Token)")
	}
}

func TestGenerateHashedToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		pair, err := GenerateHashedToken()
		if err != nil {
			t.Fatalf("GenerateHashedToken() error = %v", err)
		}
		if seen[pair.Token] {
			t.Fatalf("duplicate token generated: %s", pair.Token)
		}
		seen[pair.Token] = true
	}
}

func TestVerifyToken(t *testing.T) {
	pair, err := GenerateHashedToken()
	if err != nil {
		t.Fatalf("GenerateHashedToken() error = %v", err)
	}

	tests := []struct {
		name    string
		token   string
		hash    string
		want    bool
		wantErr bool
	}{
		{name: "matching pair", token: pair.Token, hash: pair.Hash, want: true},
		{name: "wrong token", token: "not-the-token", hash: pair.Hash, want: false},
		{name: "wrong hash", token: pair.Token, hash: HashToken("other"), want: false},
		{name: "empty token", token: "", hash: pair.Hash, wantErr: true},
		{name: "empty hash", token: pair.Token, hash: "", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			valid, err := VerifyToken(test.token, test.hash)
			if (err != nil) != test.wantErr {
				t.Fatalf("VerifyToken() error = %v, wantErr %v", err, test.wantErr)
			}
			if !test.wantErr && valid != test.want {
				t.Errorf("VerifyToken() = %v, want %v", valid, test.want)
			}
		})
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Error("HashToken is not deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Error("HashToken collided on different inputs")
	}
}
