package fiattoken

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func validAuthorization() Authorization {
	return Authorization{
		From:        "0x1234567890123456789012345678901234567890",
		To:          "0x9876543210987654321098765432109876543210",
		Value:       "1000000",
		ValidAfter:  "0",
		ValidBefore: "9999999999",
		Nonce:       "0x" + strings.Repeat("00", 31) + "01",
	}
}

func TestAuthorizationParse(t *testing.T) {
	t.Run("Valid wire form parses", func(t *testing.T) {
		parsed, err := validAuthorization().Parse()
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if parsed.Value.String() != "1000000" {
			t.Errorf("value = %s", parsed.Value)
		}
		if parsed.Nonce[31] != 1 {
			t.Error("nonce should decode to its byte form")
		}
	})

	t.Run("Malformed fields are invalid_payload", func(t *testing.T) {
		mutate := []func(*Authorization){
			func(a *Authorization) { a.From = "not-an-address" },
			func(a *Authorization) { a.To = "0x123" },
			func(a *Authorization) { a.Value = "1.5" },
			func(a *Authorization) { a.Value = "-1" },
			func(a *Authorization) { a.ValidAfter = "later" },
			func(a *Authorization) { a.ValidBefore = "" },
			func(a *Authorization) { a.Nonce = "0x01" },
			func(a *Authorization) { a.Nonce = "nonce" },
		}
		for i, m := range mutate {
			a := validAuthorization()
			m(&a)
			_, err := a.Parse()
			if ErrorCode(err) != ErrCodeInvalidPayload {
				t.Errorf("case %d: expected invalid_payload, got %v", i, err)
			}
		}
	})
}

func TestCancellationParse(t *testing.T) {
	c := Cancellation{
		Authorizer: "0x1234567890123456789012345678901234567890",
		Nonce:      "0x" + strings.Repeat("ab", 32),
	}
	authorizer, nonce, err := c.Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if authorizer.Hex() != "0x1234567890123456789012345678901234567890" {
		t.Errorf("authorizer = %s", authorizer.Hex())
	}
	if nonce[0] != 0xab {
		t.Error("nonce should decode to its byte form")
	}

	c.Authorizer = "bogus"
	if _, _, err := c.Parse(); ErrorCode(err) != ErrCodeInvalidPayload {
		t.Errorf("expected invalid_payload, got %v", err)
	}
}

func TestParseSignature(t *testing.T) {
	t.Run("Splits r s v", func(t *testing.T) {
		sig := "0x" + strings.Repeat("11", 32) + strings.Repeat("22", 32) + "1b"
		v, r, s, err := ParseSignature(sig)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if v != 27 || r[0] != 0x11 || s[0] != 0x22 {
			t.Errorf("components: v=%d r[0]=%x s[0]=%x", v, r[0], s[0])
		}
	})

	t.Run("Normalizes raw recovery ids", func(t *testing.T) {
		sig := "0x" + strings.Repeat("11", 64) + "01"
		v, _, _, err := ParseSignature(sig)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if v != 28 {
			t.Errorf("v = %d, want 28", v)
		}
	})

	t.Run("Rejects wrong lengths", func(t *testing.T) {
		if _, _, _, err := ParseSignature("0x1122"); ErrorCode(err) != ErrCodeInvalidPayload {
			t.Errorf("expected invalid_payload, got %v", err)
		}
	})
}

func TestValidateAuthorization(t *testing.T) {
	if err := ValidateAuthorization(validAuthorization()); err != nil {
		t.Errorf("valid authorization should pass: %v", err)
	}

	a := validAuthorization()
	a.Nonce = ""
	if err := ValidateAuthorization(a); err == nil {
		t.Error("missing nonce should fail")
	}
}

func TestAuthorizationError(t *testing.T) {
	err := NewAuthorizationError(ErrCodeAlreadyUsed, "authorization is used or canceled", nil)

	if err.Error() != "authorization_already_used: authorization is used or canceled" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if ErrorCode(err) != ErrCodeAlreadyUsed {
		t.Error("ErrorCode should surface the code")
	}
	wrapped := fmt.Errorf("submission failed: %w", err)
	if ErrorCode(wrapped) != ErrCodeAlreadyUsed {
		t.Error("ErrorCode should unwrap")
	}
	if !errors.Is(wrapped, NewAuthorizationError(ErrCodeAlreadyUsed, "other text", nil)) {
		t.Error("errors.Is should match on code")
	}
	if ErrorCode(errors.New("plain")) != "" {
		t.Error("plain errors carry no code")
	}
}
