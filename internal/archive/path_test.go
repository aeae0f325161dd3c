package archive

import "testing"

func TestValidatePath(t *testing.T) {
	cases := []struct {
		path string
		ok   bool
	}{
		{"a/b/c.txt", true},
		{"a", true},
		{"", false},
		{"/etc/passwd", false},
		{"a/../../etc/passwd", false},
		{"../escape", false},
		{"a/./b", false},
		{"a//b", false},
		{"a/b/..", false},
		{"a/b/../c", false},
	}
	for _, c := range cases {
		err := validatePath(c.path)
		if c.ok && err != nil {
			t.Errorf("validatePath(%q): unexpected error %v", c.path, err)
		}
		if !c.ok && err == nil {
			t.Errorf("validatePath(%q): expected error, got nil", c.path)
		}
	}
}
