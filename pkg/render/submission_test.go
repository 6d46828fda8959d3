package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-kctheme/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" session_code ": "abc",
		"":               "ignored",
	}

	merged := render.MergeHiddenFields(base,
		render.CredentialID("cred-1"),
		render.TryAnotherWay(),
		render.OAuthCode("xyz"),
		render.Hidden("  ", "skip"),
	)

	wantMerged := map[string]string{
		"session_code":  "abc",
		"credentialId":  "cred-1",
		"tryAnotherWay": "on",
		"code":          "xyz",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "code", Value: "xyz"},
		{Name: "credentialId", Value: "cred-1"},
		{Name: "session_code", Value: "abc"},
		{Name: "tryAnotherWay", Value: "on"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}
