/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package quantity

import "testing"

func TestParseValid(t *testing.T) {
	cases := []string{"0", "1", "100", "1.5", "2Gi", "2Mi", "1Ki", "500m", "1k", "1K", "2G", "4T", "3P", "1E"}
	for _, c := range cases {
		if _, err := Parse(c); err != nil {
			t.Errorf("Parse(%q) returned unexpected error: %v", c, err)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{"", "abc", "-1", "-1Gi", "1Xi", "1.2.3", "Gi"}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) expected an error, got none", c)
		} else if _, ok := err.(*InvalidQuantityError); !ok {
			t.Errorf("Parse(%q) expected *InvalidQuantityError, got %T", c, err)
		}
	}
}

func TestCompareIndependentOfSuffix(t *testing.T) {
	a := MustParse("1Gi")
	b := MustParse("1024Mi")
	if !a.Equal(b) {
		t.Fatalf("expected 1Gi == 1024Mi, got cmp=%d", a.Cmp(b))
	}
	c := MustParse("2000m")
	d := MustParse("2")
	if !c.Equal(d) {
		t.Fatalf("expected 2000m == 2, got cmp=%d", c.Cmp(d))
	}
}

func TestOrderingTotal(t *testing.T) {
	small := MustParse("500m")
	large := MustParse("2")
	if !small.LessThan(large) {
		t.Fatalf("expected 500m < 2")
	}
	if !large.GreaterThan(small) {
		t.Fatalf("expected 2 > 500m")
	}
}

func TestAddExact(t *testing.T) {
	a := MustParse("1500m")
	b := MustParse("500m")
	sum := a.Add(b)
	if !sum.Equal(MustParse("2")) {
		t.Fatalf("expected 1500m + 500m == 2, got %s", sum)
	}
}

func TestSubSaturatingAtZero(t *testing.T) {
	a := MustParse("1")
	b := MustParse("2")
	diff := a.SubSaturating(b)
	if !diff.Equal(Zero()) {
		t.Fatalf("expected 1 - 2 to saturate at zero, got %s", diff)
	}
}

func TestParseRoundTripIdempotent(t *testing.T) {
	for _, c := range []string{"2Gi", "4", "500m", "1k"} {
		q := MustParse(c)
		rendered := q.CanonicalRender()
		q2, err := Parse(rendered)
		if err != nil {
			t.Fatalf("re-parsing canonical render %q failed: %v", rendered, err)
		}
		if !q.Equal(q2) {
			t.Fatalf("parse/render round trip changed value: %s != %s", q, q2)
		}
		if q2.CanonicalRender() != rendered {
			t.Fatalf("canonical_render not idempotent: %q != %q", q2.CanonicalRender(), rendered)
		}
	}
}
