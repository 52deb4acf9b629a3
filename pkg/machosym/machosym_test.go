package machosym

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListMissingFile(t *testing.T) {
	if _, err := List("testdata/does-not-exist", ""); err == nil {
		t.Fatal("List succeeded on a missing file")
	}
}

func TestSwiftSymbolPattern(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"_$s4test3fooyySiF", true},
		{"$s4test3fooyySiF", true},
		{"$S4test3fooyySiF", true},
		{"_main", false},
		{"_OBJC_CLASS_$_Simple", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := swiftSymbolPattern.MatchString(tt.symbol); got != tt.want {
			t.Errorf("pattern match %q = %v; want %v", tt.symbol, got, tt.want)
		}
	}
}

func TestFilterByModule(t *testing.T) {
	symbols := []string{
		"_$s4test3fooyySiF",
		"$s4test6SimpleVABycfC",
		"$s5Other3baryySiF",
		"$ss11somethingSSyF",
	}

	got := Filter(symbols, []string{"test"})
	want := []string{"_$s4test3fooyySiF", "$s4test6SimpleVABycfC"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}

	swift := Filter(symbols, []string{"Swift"})
	if diff := cmp.Diff([]string{"$ss11somethingSSyF"}, swift); diff != "" {
		t.Errorf("Swift filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterEmptyKeepsAll(t *testing.T) {
	symbols := []string{"$s4test3fooyySiF", "$s5Other3baryySiF"}
	if diff := cmp.Diff(symbols, Filter(symbols, nil)); diff != "" {
		t.Errorf("empty filter mismatch (-want +got):\n%s", diff)
	}
}
