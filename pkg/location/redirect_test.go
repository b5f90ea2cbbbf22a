package location

import (
	"strings"
	"testing"

	"github.com/matzehuels/cpanmeta/pkg/search"
)

func TestRedirectTarget(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		typ    search.SearchType
		want   string
		wantOK bool
	}{
		{
			name:   "author with other authors flag",
			raw:    "#PERLANCAR+~Foo",
			typ:    search.Packages,
			want:   "/packages?author=PERLANCAR&module=Foo&match_mode=prefix&other_authors=1",
			wantOK: true,
		},
		{
			name:   "v1 exact",
			raw:    "#=Moose",
			typ:    search.Perms,
			want:   "/perms?author=&module=Moose&match_mode=exact",
			wantOK: true,
		},
		{
			name:   "authors page takes author from query segment",
			raw:    "#~DBOOK",
			typ:    search.Authors,
			want:   "/authors?author=DBOOK&module=&match_mode=prefix",
			wantOK: true,
		},
		{
			name:   "infix",
			raw:    "#*Base",
			typ:    search.Packages,
			want:   "/packages?author=&module=Base&match_mode=infix",
			wantOK: true,
		},
		{
			name:   "percent-encoded fragment",
			raw:    "https://cpanmeta.grinnz.com/packages#ETHER=Moose%3A%3AUtil",
			typ:    search.Packages,
			want:   "/packages?author=ETHER&module=Moose%253A%253AUtil&match_mode=exact",
			wantOK: true,
		},
		{name: "nothing to migrate", raw: "#+=", typ: search.Packages},
		{name: "no delimiter", raw: "#Moose", typ: search.Packages},
		{name: "no fragment", raw: "/packages?author=&module=Moose&match_mode=exact", typ: search.Packages},
		{name: "empty", raw: "", typ: search.Packages},
		{name: "bare hash", raw: "#", typ: search.Packages},
		{name: "authors page ignores leading segment", raw: "#DBOOK~", typ: search.Authors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RedirectTarget(tt.raw, tt.typ)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("RedirectTarget(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRedirectTargetIsCurrentVersion(t *testing.T) {
	target, ok := RedirectTarget("#PERLANCAR+~Foo", search.Packages)
	if !ok {
		t.Fatal("expected redirect")
	}
	if !strings.Contains(target, "author=PERLANCAR&module=Foo&match_mode=prefix&other_authors=1") {
		t.Errorf("target %q missing migrated parameters", target)
	}
	if strings.Contains(target, "#") {
		t.Errorf("target %q leaks a fragment", target)
	}
	d, ok := Decode(target)
	if !ok || d.Version != Current {
		t.Errorf("target %q decodes as %v, want %v", target, d.Version, Current)
	}
}

type fakeNavigator struct {
	current   string
	navigated []string
}

func (f *fakeNavigator) Current() string { return f.current }

func (f *fakeNavigator) Navigate(target string) {
	f.navigated = append(f.navigated, target)
	f.current = target
}

func TestRedirectorRunsOnce(t *testing.T) {
	nav := &fakeNavigator{current: "/packages#=Moose"}
	r := NewRedirector(nav, nil)

	target, ok := r.Run(search.Packages)
	if !ok || target != "/packages?author=&module=Moose&match_mode=exact" {
		t.Fatalf("Run() = %q, %v", target, ok)
	}

	nav.current = "/packages#=Other"
	if _, ok := r.Run(search.Packages); ok {
		t.Error("second Run() should not redirect")
	}
	if len(nav.navigated) != 1 {
		t.Errorf("navigations = %d, want 1", len(nav.navigated))
	}
}

func TestRedirectorNoLegacyFragment(t *testing.T) {
	nav := &fakeNavigator{current: "/packages?author=&module=Moose&match_mode=exact"}
	r := NewRedirector(nav, nil)
	if _, ok := r.Run(search.Packages); ok {
		t.Error("Run() should not redirect a current location")
	}
	if len(nav.navigated) != 0 {
		t.Errorf("unexpected navigation: %v", nav.navigated)
	}
}
