package validator

import "testing"

type sampleRequest struct {
	Username string `json:"username" validate:"required"`
	OTPCode  string `json:"otp_code" validate:"required,len=6,numeric"`
	Gender   string `json:"gender" validate:"required,oneof=M F O"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func TestFormatValidationErrorsUsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(sampleRequest{OTPCode: "12a", Gender: "X", Email: "nope"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	got := v.FormatValidationErrors(err)
	want := map[string]string{
		"username": "username is required",
		"otp_code": "otp_code must be exactly 6 characters",
		"gender":   "gender must be one of: M, F, O",
		"email":    "email must be a valid email address",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s: got %q, want %q", field, got[field], msg)
		}
	}
}

func TestValidatePasses(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(sampleRequest{Username: "a", OTPCode: "123456", Gender: "F"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
