package extract

import "testing"

func TestBuildSignature_ZeroParameters(t *testing.T) {
	got := buildSignature("getBalance", "()")
	if got != "getBalance()" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildSignature_OneParameter(t *testing.T) {
	got := buildSignature("setBalance", "(int b)")
	if got != "setBalance()" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildSignature_MultipleParametersReflectArity(t *testing.T) {
	got := buildSignature("setPosition", "(int x, int y)")
	if got != "setPosition(,)" {
		t.Fatalf("a 2-parameter method must register one placeholder comma, got %q", got)
	}
}

func TestBuildSignature_StripsNamespaceFromName(t *testing.T) {
	got := buildSignature("Account::withdraw", "(int amount, string memo)")
	if got != "withdraw(,)" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildSignature_EmptyParamsTextIsZeroArity(t *testing.T) {
	got := buildSignature("run", "")
	if got != "run()" {
		t.Fatalf("got %q", got)
	}
}
