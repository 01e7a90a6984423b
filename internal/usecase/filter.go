package usecase

import "QuotePress/internal/domain"

// SelectNew drops already processed and duplicate ids, keeps fetch order and
// cuts the result at limit. Items beyond the cap are returned as deferred; they
// stay unrecorded and come back on a later run. A limit of 0 means no cap.
func SelectNew(items []domain.CandidateItem, processed map[string]bool, limit int) (batch, deferred []domain.CandidateItem) {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ID == "" || processed[item.ID] || seen[item.ID] {
			continue
		}
		seen[item.ID] = true

		if limit > 0 && len(batch) >= limit {
			deferred = append(deferred, item)
			continue
		}
		batch = append(batch, item)
	}
	return batch, deferred
}
