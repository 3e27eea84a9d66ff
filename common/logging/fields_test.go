package logging

import (
	"errors"
	"testing"
)

func TestService(t *testing.T) {
	attr := Service("netsentry")
	if attr.Key != FieldService {
		t.Errorf("expected key %q, got %q", FieldService, attr.Key)
	}
	if attr.Value.String() != "netsentry" {
		t.Errorf("expected value %q, got %q", "netsentry", attr.Value.String())
	}
}

func TestTenantID(t *testing.T) {
	attr := TenantID("tenant-123")
	if attr.Key != FieldTenantID {
		t.Errorf("expected key %q, got %q", FieldTenantID, attr.Key)
	}
	if attr.Value.String() != "tenant-123" {
		t.Errorf("expected value %q, got %q", "tenant-123", attr.Value.String())
	}
}

func TestCredentialID(t *testing.T) {
	attr := CredentialID("cred-9")
	if attr.Key != FieldCredentialID {
		t.Errorf("expected key %q, got %q", FieldCredentialID, attr.Key)
	}
	if attr.Value.String() != "cred-9" {
		t.Errorf("expected value %q, got %q", "cred-9", attr.Value.String())
	}
}

func TestIP(t *testing.T) {
	attr := IP("203.0.113.7")
	if attr.Key != FieldIP {
		t.Errorf("expected key %q, got %q", FieldIP, attr.Key)
	}
	if attr.Value.String() != "203.0.113.7" {
		t.Errorf("expected value %q, got %q", "203.0.113.7", attr.Value.String())
	}
}

func TestStatus(t *testing.T) {
	attr := Status(403)
	if attr.Key != FieldStatus {
		t.Errorf("expected key %q, got %q", FieldStatus, attr.Key)
	}
	if attr.Value.Int64() != 403 {
		t.Errorf("expected value 403, got %d", attr.Value.Int64())
	}
}

func TestDuration(t *testing.T) {
	attr := Duration(42)
	if attr.Key != FieldDuration {
		t.Errorf("expected key %q, got %q", FieldDuration, attr.Key)
	}
	if attr.Value.Int64() != 42 {
		t.Errorf("expected value 42, got %d", attr.Value.Int64())
	}
}

func TestError(t *testing.T) {
	attr := Error(errors.New("boom"))
	if attr.Key != FieldError {
		t.Errorf("expected key %q, got %q", FieldError, attr.Key)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("expected value %q, got %q", "boom", attr.Value.String())
	}
}

func TestSeverity(t *testing.T) {
	attr := Severity("high")
	if attr.Key != FieldSeverity {
		t.Errorf("expected key %q, got %q", FieldSeverity, attr.Key)
	}
	if attr.Value.String() != "high" {
		t.Errorf("expected value %q, got %q", "high", attr.Value.String())
	}
}
