package feed

import "github.com/readnest/readnest/internal/models"

// Merge returns the candidates that are not already present in existing,
// keyed by article URL. A candidate with an empty URL is always accepted,
// since it cannot be deduplicated; rejected candidates are dropped without
// being reported.
func Merge(existing, candidates []*models.Article) []*models.Article {
	seen := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		if a.URL != "" {
			seen[a.URL] = struct{}{}
		}
	}

	var fresh []*models.Article
	for _, c := range candidates {
		if c.URL != "" {
			if _, dup := seen[c.URL]; dup {
				continue
			}
			seen[c.URL] = struct{}{}
		}
		fresh = append(fresh, c)
	}
	return fresh
}
