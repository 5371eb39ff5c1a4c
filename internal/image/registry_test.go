package image

import (
	"strings"
	"testing"
)

func TestGetKnownProviders(t *testing.T) {
	for _, id := range []ID{Ubuntu, Debian} {
		p, err := Get(id)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", id, err)
		}
		if p.ID() != id {
			t.Errorf("Get(%q).ID() = %q", id, p.ID())
		}
		if p.Filename() == "" || p.Name() == "" {
			t.Errorf("provider %q has empty metadata", id)
		}
		if !strings.HasPrefix(p.ImageURL(), "https://") {
			t.Errorf("provider %q image URL %q is not https", id, p.ImageURL())
		}
		if !strings.HasSuffix(p.ImageURL(), p.Filename()) {
			t.Errorf("provider %q URL %q does not end in filename %q", id, p.ImageURL(), p.Filename())
		}
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := Get("plan9"); err == nil {
		t.Error("Get() of unregistered image succeeded")
	}
}

func TestGetDefault(t *testing.T) {
	p, err := GetDefault()
	if err != nil {
		t.Fatalf("GetDefault() failed: %v", err)
	}
	if p.ID() != Ubuntu {
		t.Errorf("default image = %q, want %q", p.ID(), Ubuntu)
	}
}

func TestListSorted(t *testing.T) {
	ids := List()
	if len(ids) < 2 {
		t.Fatalf("List() = %v, want at least ubuntu and debian", ids)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("List() not sorted: %v", ids)
		}
	}
}
