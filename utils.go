package fiattoken

import "fmt"

// ValidateAuthorization performs basic presence validation on a wire-form
// authorization before the stricter Parse step.
func ValidateAuthorization(a Authorization) error {
	if a.From == "" {
		return fmt.Errorf("authorization from is required")
	}
	if a.To == "" {
		return fmt.Errorf("authorization to is required")
	}
	if a.Value == "" {
		return fmt.Errorf("authorization value is required")
	}
	if a.ValidAfter == "" {
		return fmt.Errorf("authorization validAfter is required")
	}
	if a.ValidBefore == "" {
		return fmt.Errorf("authorization validBefore is required")
	}
	if a.Nonce == "" {
		return fmt.Errorf("authorization nonce is required")
	}
	return nil
}

// ValidateCancellation performs basic presence validation on a wire-form
// cancellation.
func ValidateCancellation(c Cancellation) error {
	if c.Authorizer == "" {
		return fmt.Errorf("cancellation authorizer is required")
	}
	if c.Nonce == "" {
		return fmt.Errorf("cancellation nonce is required")
	}
	return nil
}
