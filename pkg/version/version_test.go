/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package version

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Version
		wantErr bool
	}{
		{"major only", "6", Version{Major: 6, Precision: 1}, false},
		{"major minor", "1.2", Version{Major: 1, Minor: 2, Precision: 2}, false},
		{"full", "1.2.3", Version{Major: 1, Minor: 2, Patch: 3, Precision: 3}, false},
		{"v prefix", "v1.2.3", Version{Major: 1, Minor: 2, Patch: 3, Precision: 3}, false},
		{"kernel suffix", "6.8.0-41-generic", Version{Major: 6, Minor: 8, Patch: 0, Precision: 3, Suffix: "-41-generic"}, false},
		{"build metadata", "1.2.3+debian", Version{Major: 1, Minor: 2, Patch: 3, Precision: 3, Suffix: "+debian"}, false},
		{"empty", "", Version{}, true},
		{"too many parts", "1.2.3.4", Version{}, true},
		{"non numeric", "1.x.3", Version{}, true},
		{"negative", "1.-2", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %+v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.4", "1.2.3", 1},
		{"1.2.3", "1.3.0", -1},
		{"2", "1.9.9", 1},
		{"1.2", "1.2.9", 0}, // precision-limited comparison
		{"1.2", "1.3.0", -1},
		{"6.8.0-41-generic", "6.8.0-35-generic", 0}, // suffixes never compare
	}

	for _, tt := range tests {
		a, b := MustParse(tt.a), MustParse(tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAtLeast(t *testing.T) {
	if !MustParse("6.8").AtLeast(MustParse("6.1")) {
		t.Error("6.8 should satisfy at least 6.1")
	}
	if MustParse("5.15").AtLeast(MustParse("6.1")) {
		t.Error("5.15 should not satisfy at least 6.1")
	}
	if !MustParse("1.2.9").AtLeast(MustParse("1.2")) {
		t.Error("1.2.9 should satisfy at least 1.2")
	}
}

func TestString(t *testing.T) {
	for _, s := range []string{"6", "1.2", "1.2.3"} {
		if got := MustParse(s).String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{"1.2.3", "v6.8.0-41-generic", "", "1..2", "1.2.3.4"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		v, err := Parse(s)
		if err != nil {
			return
		}
		if v.Precision < 1 || v.Precision > 3 {
			t.Errorf("Parse(%q) produced invalid precision %d", s, v.Precision)
		}
		if v.Compare(v) != 0 {
			t.Errorf("Parse(%q) not equal to itself", s)
		}
	})
}
