// Package search ranks index documents against free-text queries and
// suggests query completions from tags and titles.
//
// Matching is case-insensitive substring counting. There is no tokenizing,
// stemming or fuzzy matching. Scores are integers:
//
//	score = 3*titleHits + 1*contentHits + 2*matchingTags
//
// where matchingTags counts every tag containing the query in each of the
// tags, top_tags and detail_tags lists, so a tag present in two lists counts
// twice.
package search
