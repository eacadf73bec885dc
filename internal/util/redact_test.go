package util_test

import (
	"testing"

	"github.com/shpitdev/connections-enricher/internal/util"
)

func TestRedactSecrets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "waiting for .nav-item--mynetwork", want: "waiting for .nav-item--mynetwork"},
		{name: "bearer", in: "auth failed: Bearer abc.def.ghi", want: "auth failed: Bearer <redacted>"},
		{name: "password kv", in: "login password=hunter2 rejected", want: "login <redacted_kv> rejected"},
		{name: "json password", in: `{"password": "hunter 2"}`, want: `{<redacted_kv>}`},
		{name: "cookie", in: "set li_at=AQEDAR; path=/", want: "set <redacted_kv>; path=/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := util.RedactSecrets(tt.in); got != tt.want {
				t.Fatalf("RedactSecrets(%q)=%q want=%q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedactValue(t *testing.T) {
	if got := util.RedactValue("typed hunter2 into #password", "hunter2"); got != "typed <redacted> into #password" {
		t.Fatalf("unexpected %q", got)
	}
	if got := util.RedactValue("unchanged", ""); got != "unchanged" {
		t.Fatalf("unexpected %q", got)
	}
}
