package auth

import "testing"

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"Alice@X.com":        "alice@x.com",
		"  bob@example.org ": "bob@example.org",
		"ÉLODIE@Exemple.FR":  "élodie@exemple.fr",
		"":                   "",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
