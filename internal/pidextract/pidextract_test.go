package pidextract

import "testing"

func TestFromFilename(t *testing.T) {
	cases := []struct {
		path    string
		wantPID int32
		wantOK  bool
	}{
		{"trace.12345", 12345, true},
		{"/var/log/traces/trace.12345", 12345, true},
		{"my.trace.file.99", 99, true},
		{"noextension", 0, false},
		{"trace.", 0, false},
		{"trace.abc", 0, false},
		{"trace.-7", -7, true},
	}

	for _, c := range cases {
		pid, ok := FromFilename(c.path)
		if ok != c.wantOK || pid != c.wantPID {
			t.Errorf("FromFilename(%q) = (%v, %v), want (%v, %v)", c.path, pid, ok, c.wantPID, c.wantOK)
		}
	}
}

func TestOrZero(t *testing.T) {
	if got := OrZero("trace.42"); got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
	if got := OrZero("noextension"); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}
