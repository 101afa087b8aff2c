package services

import "github.com/nvraman/suraksha/core"

// Derived views are pure functions of the latest snapshot plus a
// predicate, recomputed on every emission. Nothing here caches
// incrementally - that would let the derived value drift from its source
// snapshot.

// PendingCount counts the documents whose status is "pending".
func PendingCount(snap core.Snapshot) int {
	count := 0
	for _, doc := range snap.Docs {
		if docStatus(doc) == string(core.StatusPending) {
			count++
		}
	}
	return count
}

// UnresolvedAlerts filters out resolved documents.
func UnresolvedAlerts(snap core.Snapshot) []core.Document {
	var out []core.Document
	for _, doc := range snap.Docs {
		if docStatus(doc) != string(core.StatusResolved) {
			out = append(out, doc)
		}
	}
	return out
}

// ActiveIncidents filters the documents whose status is "active".
func ActiveIncidents(snap core.Snapshot) []core.Document {
	var out []core.Document
	for _, doc := range snap.Docs {
		if docStatus(doc) == string(core.StatusActive) {
			out = append(out, doc)
		}
	}
	return out
}

// RegisteredUserCount is the size of the users collection.
func RegisteredUserCount(snap core.Snapshot) int {
	return len(snap.Docs)
}

func docStatus(doc core.Document) string {
	status, _ := doc.Fields["status"].(string)
	return status
}
