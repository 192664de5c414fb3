package sense

import (
	"testing"
)

func TestFeatureEnabled(t *testing.T) {
	defer func(argv []string) { main_argv = argv }(main_argv)

	tests := []struct {
		env  string
		argv []string
		want bool
	}{
		{"", []string{"prog"}, false},
		{"1", []string{"prog"}, true},
		{"off", []string{"prog", "-jsonlog"}, true},
		{"", []string{"prog", "-jsonlog"}, true},
		{"", []string{"prog", "--jsonlog=false"}, false},
		{"", []string{"prog", "-jsonlog", "no"}, false},
		{"", []string{"prog", "-jsonlog", "-verbosity", "4"}, true},
		{"", []string{"prog", "jsonlog"}, false},
	}
	for i, test := range tests {
		t.Setenv("SENSE_TEST_JSONLOG", test.env)
		main_argv = test.argv
		if got := FeatureEnabled("SENSE_TEST_JSONLOG", "jsonlog"); got != test.want {
			t.Errorf("test %d (env=%q argv=%q): have %v, want %v", i, test.env, test.argv, got, test.want)
		}
	}
}

func TestEnvUint(t *testing.T) {
	t.Setenv("SENSE_TEST_THREADS", "0x10")
	if got := EnvUint("SENSE_TEST_THREADS", 3); got != 16 {
		t.Fatalf("have %d, want 16", got)
	}
	t.Setenv("SENSE_TEST_THREADS", "lots")
	if got := EnvUint("SENSE_TEST_THREADS", 3); got != 3 {
		t.Fatalf("have %d, want default 3", got)
	}
	if got := EnvOr("SENSE_TEST_UNSET_VARIABLE", "x"); got != "x" {
		t.Fatalf("have %q, want x", got)
	}
}
