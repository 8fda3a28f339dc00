package feed

import (
	"testing"

	"github.com/readnest/readnest/internal/models"
	"github.com/stretchr/testify/require"
)

func art(url string) *models.Article {
	return &models.Article{Title: "t", URL: url}
}

func TestMergeDropsKnownURLs(t *testing.T) {
	existing := []*models.Article{art("https://a.example/1"), art("https://a.example/2")}
	candidates := []*models.Article{art("https://a.example/2"), art("https://a.example/3"), art("")}

	fresh := Merge(existing, candidates)

	require.Len(t, fresh, 2)
	require.Equal(t, "https://a.example/3", fresh[0].URL)
	require.Equal(t, "", fresh[1].URL)
}

func TestMergeDedupsWithinBatch(t *testing.T) {
	candidates := []*models.Article{art("https://b.example/x"), art("https://b.example/x")}

	fresh := Merge(nil, candidates)

	require.Len(t, fresh, 1)
}

func TestMergeEmptyURLAlwaysAccepted(t *testing.T) {
	candidates := []*models.Article{art(""), art(""), art("")}

	fresh := Merge([]*models.Article{art("")}, candidates)

	require.Len(t, fresh, 3)
}

func TestMergeNoCandidates(t *testing.T) {
	require.Empty(t, Merge([]*models.Article{art("https://a.example/1")}, nil))
}
