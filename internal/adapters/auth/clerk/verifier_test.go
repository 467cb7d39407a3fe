package clerk

import "testing"

func TestFrontendAPIFromKey(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "test key", key: "pk_test_ZXhhbXBsZS5jbGVyay5hY2NvdW50cy5kZXYk", want: "example.clerk.accounts.dev"},
		{name: "live key", key: "pk_live_cHJ1ZWJhLmNsZXJrLmFjY291bnRzLmRldiQ", want: "prueba.clerk.accounts.dev"},
		{name: "empty", key: "", wantErr: true},
		{name: "missing prefix", key: "sk_test_ZXhhbXBsZS5jbGVyay5hY2NvdW50cy5kZXYk", wantErr: true},
		{name: "garbage payload", key: "pk_test_!!!", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := frontendAPIFromKey(tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("esperaba error, obtuve %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("error inesperado: %v", err)
			}
			if got != tc.want {
				t.Fatalf("dominio = %q, esperaba %q", got, tc.want)
			}
		})
	}
}
